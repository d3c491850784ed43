package advisor

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Role of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is an append-only conversation log. It is only displayed and never
// sent back to the backend. The zero value is ready to use.
type History struct {
	mu       sync.Mutex
	messages []Message
}

func (h *History) Add(role Role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the log in order.
func (h *History) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Session is one interactive conversation. Nothing is persisted across sessions.
type Session struct {
	ID      string
	history History
	orch    *Orchestrator
}

func NewSession(o *Orchestrator) *Session {
	return &Session{ID: uuid.NewString(), orch: o}
}

// Ask runs question through the pipeline and records both sides in the history.
func (s *Session) Ask(ctx context.Context, question string) *Outcome {
	return s.orch.Handle(ctx, &s.history, question)
}

func (s *Session) History() []Message {
	return s.history.Messages()
}
