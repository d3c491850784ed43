package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// DefaultWriteTimeout covers one /v1/ask round trip: two LLM calls plus the query.
const DefaultWriteTimeout = 75 * time.Second

// ServerConfig holds the listener and access settings for the advisor API.
type ServerConfig struct {
	Addr    string
	DevMode bool   // include error details in JSON responses
	APIKey  string // empty disables X-API-Key checks

	Metrics      http.Handler // served at /metrics when set
	WriteTimeout time.Duration
}

type ServerDeps struct {
	Handlers *Handlers
	Config   ServerConfig
}

// Server is the advisor API. Shutdown may be called more than once.
type Server struct {
	e      *echo.Echo
	cfg    ServerConfig
	once   sync.Once
	closed chan struct{}
}

func NewServer(deps ServerDeps) (*Server, error) {
	h := deps.Handlers
	if h == nil || h.Store == nil {
		return nil, errors.New("server needs handlers with a player store")
	}
	if h.Logger == nil {
		h.Logger = logrus.New()
	}
	cfg := deps.Config
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(h.Logger))

	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.Server.IdleTimeout = 60 * time.Second

	RegisterRoutes(e, h, cfg)

	return &Server{e: e, cfg: cfg, closed: make(chan struct{})}, nil
}

// requestLogger writes one logrus line per request, keyed by the X-Request-Id header.
func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"request_id": v.RequestID,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"took_ms":    v.Latency.Milliseconds(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	})
}

func (s *Server) Start() error {
	return s.e.Start(s.cfg.Addr)
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Shutdown drains in-flight requests, waiting at most 10s. An /v1/ask call
// still waiting on the model is cut off when that budget runs out.
func (s *Server) Shutdown(ctx context.Context) error {
	err := http.ErrServerClosed
	s.once.Do(func() {
		defer close(s.closed)
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		err = s.e.Shutdown(ctx)
	})
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) WaitClosed(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return nil
	}
}
