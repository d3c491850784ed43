package runs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	listKey = "fpl:refresh:runs"

	// DefaultMaxRuns bounds the stored history.
	DefaultMaxRuns = 50
)

// Store keeps the most recent refresh runs in a Redis list, newest first.
type Store struct {
	client redis.Cmdable
	max    int64
}

func NewStore(client redis.Cmdable, max int64) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if max <= 0 {
		max = DefaultMaxRuns
	}
	return &Store{client: client, max: max}, nil
}

func (s *Store) Record(ctx context.Context, run *models.RefreshRun) error {
	b, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, listKey, b)
	pipe.LTrim(ctx, listKey, 0, s.max-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func (s *Store) Latest(ctx context.Context) (*models.RefreshRun, error) {
	val, err := s.client.LIndex(ctx, listKey, 0).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest run: %w", err)
	}

	var r models.RefreshRun
	if err := json.Unmarshal([]byte(val), &r); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &r, nil
}

// List returns up to limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int64) ([]*models.RefreshRun, error) {
	if limit <= 0 || limit > s.max {
		limit = s.max
	}

	vals, err := s.client.LRange(ctx, listKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	out := make([]*models.RefreshRun, 0, len(vals))
	for _, v := range vals {
		var r models.RefreshRun
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			continue
		}
		out = append(out, &r)
	}
	return out, nil
}
