package advisor

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

// scriptedBackend answers each Generate call with the next scripted reply and
// keeps every prompt it was given.
type scriptedBackend struct {
	mu      sync.Mutex
	replies []func(Prompt) (string, error)
	prompts []Prompt
}

func (b *scriptedBackend) Generate(_ context.Context, p Prompt) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prompts = append(b.prompts, p)
	if len(b.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	next := b.replies[0]
	b.replies = b.replies[1:]
	return next(p)
}

func (b *scriptedBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.prompts)
}

func reply(text string) func(Prompt) (string, error) {
	return func(Prompt) (string, error) { return text, nil }
}

func replyErr(err error) func(Prompt) (string, error) {
	return func(Prompt) (string, error) { return "", err }
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func populatedStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(context.Background(), store.SQLiteConfig{
		Path:   filepath.Join(t.TempDir(), "fpl.db"),
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Upsert(context.Background(), []models.Player{
		{ID: 1, Name: "William Saliba", Team: "Arsenal", Position: "Defender", Price: 6.0, TotalPoints: 120, Form: 5.1, SelectedByPercent: 35.2},
		{ID: 2, Name: "Pedro Porro", Team: "Spurs", Position: "Defender", Price: 5.5, TotalPoints: 130, Form: 6.0, SelectedByPercent: 20.1},
		{ID: 3, Name: "Cole Palmer", Team: "Chelsea", Position: "Midfielder", Price: 10.5, TotalPoints: 210, Form: 8.2, SelectedByPercent: 60.3},
		{ID: 4, Name: "Ollie Watkins", Team: "Aston Villa", Position: "Forward", Price: 9.0, TotalPoints: 180, Form: 4.4, SelectedByPercent: 40.0},
	}))
	return s
}

func testSchema() *store.Schema {
	return &store.Schema{
		Table: store.TableName,
		Columns: []store.Column{
			{Name: "name", Type: "TEXT"},
			{Name: "position", Type: "TEXT"},
			{Name: "price", Type: "REAL"},
			{Name: "total_points", Type: "INTEGER"},
		},
	}
}
