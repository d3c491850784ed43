package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/fpl-advisor/internal/advisor"
	"github.com/aman-zulfiqar/fpl-advisor/internal/config"
	"github.com/aman-zulfiqar/fpl-advisor/internal/events"
	"github.com/aman-zulfiqar/fpl-advisor/internal/fpl"
	"github.com/aman-zulfiqar/fpl-advisor/internal/ingest"
	"github.com/aman-zulfiqar/fpl-advisor/internal/metrics"
	"github.com/aman-zulfiqar/fpl-advisor/internal/runs"
	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	store   store.PlayerStore
	redis   *redis.Client // nil when REDIS_ADDR is unset or unreachable
	metrics *metrics.Manager
}

// newApp loads configuration and opens the store. Interactive commands pass
// quiet to keep pipeline logs out of the conversation unless --verbose is set.
func newApp(ctx context.Context, quiet bool) (*app, error) {
	boot := config.NewLogger("info", os.Stderr)
	config.LoadDotEnv(envFile, boot)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := config.NewLogger(cfg.LogLevel, os.Stderr)
	if quiet && !verbose {
		logger.SetLevel(logrus.WarnLevel)
	}

	st, err := store.Open(ctx, store.Config{
		Driver:     cfg.StoreDriver,
		SQLitePath: cfg.SQLitePath,
		ClickHouse: store.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	a := &app{cfg: cfg, logger: logger, store: st, metrics: metrics.NewManager()}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, refresh events and run log disabled")
			_ = client.Close()
		} else {
			a.redis = client
		}
	}
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := a.store.Close(); err != nil {
		a.logger.WithError(err).Warn("failed to close store")
	}
}

func (a *app) runStore() *runs.Store {
	if a.redis == nil {
		return nil
	}
	s, err := runs.NewStore(a.redis, 0)
	if err != nil {
		a.logger.WithError(err).Warn("run log disabled")
		return nil
	}
	return s
}

func (a *app) ingestor() (*ingest.Ingestor, error) {
	client := fpl.NewClient(a.cfg.FPLBaseURL, a.cfg.HTTPTimeout)
	client.Logger = a.logger

	cfg := ingest.Config{
		Source:  client,
		Store:   a.store,
		Metrics: a.metrics,
		Logger:  a.logger,
	}
	if rs := a.runStore(); rs != nil {
		cfg.Recorder = rs
	}
	if a.redis != nil {
		cfg.Notifier = events.NewPubSub(a.redis, a.logger)
	}
	return ingest.New(cfg)
}

func (a *app) orchestrator(ctx context.Context) (*advisor.Orchestrator, error) {
	if err := a.cfg.RequireLLM(); err != nil {
		return nil, err
	}

	backend, err := advisor.NewBackend(ctx, advisor.LLMConfig{
		Provider:  a.cfg.LLMProvider,
		APIKey:    a.cfg.LLMAPIKey(),
		Model:     a.cfg.LLMModel,
		MaxTokens: a.cfg.LLMMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	return advisor.NewOrchestrator(ctx, advisor.Config{
		Backend: backend,
		Store:   a.store,
		Dialect: store.Dialect(a.cfg.StoreDriver),
		Metrics: a.metrics,
		Logger:  a.logger,
	})
}

// warnIfEmpty nudges the user towards refresh before the first question.
func (a *app) warnIfEmpty(ctx context.Context) {
	n, err := a.store.Count(ctx)
	if err == nil && n == 0 {
		printWarning("The players table is empty. Run \"fplhelper refresh\" first.")
	}
}
