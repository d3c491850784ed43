// Package events distributes data refresh notifications over Redis Pub/Sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Channels a refresh run is published to.
const (
	RefreshChannel       = "fpl:refresh"
	RefreshStatusPattern = "fpl:refresh:*"
)

// RefreshHandler receives decoded refresh runs.
type RefreshHandler func(*models.RefreshRun)

type PubSub struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewPubSub(client *redis.Client, logger *logrus.Logger) *PubSub {
	if logger == nil {
		logger = logrus.New()
	}
	return &PubSub{client: client, logger: logger}
}

// StatusChannel returns the status-specific channel, e.g. "fpl:refresh:failed".
func StatusChannel(status string) string {
	return RefreshChannel + ":" + status
}

// PublishRefresh publishes a run to the shared channel and its status channel.
func (p *PubSub) PublishRefresh(ctx context.Context, run *models.RefreshRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal refresh run: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, RefreshChannel, data)
	pipe.Publish(ctx, StatusChannel(run.Status), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish refresh run: %w", err)
	}
	return nil
}

// Subscribe delivers runs from channel until ctx is cancelled.
func (p *PubSub) Subscribe(ctx context.Context, channel string, handler RefreshHandler) error {
	return p.consume(ctx, p.client.Subscribe(ctx, channel), handler)
}

// PSubscribe delivers runs from every channel matching pattern until ctx is cancelled.
func (p *PubSub) PSubscribe(ctx context.Context, pattern string, handler RefreshHandler) error {
	return p.consume(ctx, p.client.PSubscribe(ctx, pattern), handler)
}

func (p *PubSub) consume(ctx context.Context, sub *redis.PubSub, handler RefreshHandler) error {
	defer sub.Close()

	// Wait for the subscription confirmation so callers see errors early.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var run models.RefreshRun
			if err := json.Unmarshal([]byte(msg.Payload), &run); err != nil {
				p.logger.WithError(err).WithField("channel", msg.Channel).Warn("dropping malformed refresh event")
				continue
			}
			handler(&run)
		}
	}
}
