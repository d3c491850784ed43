package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aman-zulfiqar/fpl-advisor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `serve exposes the question pipeline, data refresh and metrics over HTTP on
API_ADDR. Without an LLM API key /v1/ask is disabled and everything else still works.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		ing, err := a.ingestor()
		if err != nil {
			return err
		}

		handlers := &server.Handlers{
			Store:   a.store,
			Ingest:  ing,
			DevMode: a.cfg.DevMode,
			Logger:  a.logger,
		}
		if rs := a.runStore(); rs != nil {
			handlers.Runs = rs
		}

		orch, err := a.orchestrator(ctx)
		if err != nil {
			a.logger.WithError(err).Warn("advisor disabled, /v1/ask will reject requests")
		} else {
			handlers.Advisor = orch
		}

		srv, err := server.NewServer(server.ServerDeps{
			Handlers: handlers,
			Config: server.ServerConfig{
				Addr:    a.cfg.APIAddr,
				DevMode: a.cfg.DevMode,
				APIKey:  a.cfg.APIKey,
				Metrics: a.metrics.Handler(),
			},
		})
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a.logger.WithField("addr", a.cfg.APIAddr).Info("API server listening")
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			a.logger.Info("shutting down API server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}
