package advisor

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
)

// LangChainBackend adapts any langchaingo chat model.
type LangChainBackend struct {
	llm       llms.Model
	maxTokens int
}

func NewLangChainBackend(llm llms.Model, maxTokens int) *LangChainBackend {
	return &LangChainBackend{llm: llm, maxTokens: maxTokens}
}

// Generate sends System, User and Closing as system, human and system messages.
func (b *LangChainBackend) Generate(ctx context.Context, p Prompt) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, p.System),
		llms.TextParts(llms.ChatMessageTypeHuman, p.User),
	}
	if p.Closing != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, p.Closing))
	}

	var opts []llms.CallOption
	if b.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(b.maxTokens))
	}

	resp, err := b.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm returned no choices")
	}
	return resp.Choices[0].Content, nil
}
