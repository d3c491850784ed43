package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/fpl-advisor/internal/advisor"
	"github.com/aman-zulfiqar/fpl-advisor/internal/ingest"
	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

// Asker answers one question end to end.
type Asker interface {
	Handle(ctx context.Context, history *advisor.History, question string) *advisor.Outcome
}

// Refresher runs a data ingest.
type Refresher interface {
	Refresh(ctx context.Context) (*models.RefreshRun, error)
}

// RunLister reads the refresh run log.
type RunLister interface {
	List(ctx context.Context, limit int64) ([]*models.RefreshRun, error)
}

// StoreInfo is the part of the player store the API reports on.
type StoreInfo interface {
	Describe(ctx context.Context) (*store.Schema, error)
	Count(ctx context.Context) (int64, error)
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Advisor Asker          // Question pipeline (optional, needs an LLM key)
	Store   StoreInfo      // Player store
	Ingest  Refresher      // Data ingestor
	Runs    RunLister      // Redis-backed run log (optional)
	DevMode bool           // Enable detailed error responses in development
	Logger  *logrus.Logger // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health reports liveness and the number of stored players
func (h *Handlers) Health(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	n, err := h.Store.Count(ctx)
	if err != nil {
		return h.err(c, http.StatusServiceUnavailable, "store unavailable", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, HealthResponse{OK: true, Players: n})
}

// Schema returns the introspected players table
func (h *Handlers) Schema(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	schema, err := h.Store.Describe(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to describe schema", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, schema)
}

// Ask runs a question through query synthesis, execution and advice.
// Backend failures map to 502, failed queries to 422.
func (h *Handlers) Ask(c echo.Context) error {
	if h.Advisor == nil {
		return h.err(c, http.StatusBadRequest, "advisor is not configured", nil)
	}

	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return h.err(c, http.StatusBadRequest, "question is required", map[string]any{"question": "required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	start := time.Now()
	out := h.Advisor.Handle(ctx, nil, req.Question)
	if out.Err != nil {
		details := map[string]any{"err": out.Err.Error(), "stage": out.Reached.String()}
		if out.Query != "" {
			details["sql"] = out.Query
		}

		var ge *advisor.GenerationError
		var qe *store.QueryError
		switch {
		case errors.As(out.Err, &ge):
			return h.err(c, http.StatusBadGateway, "text generation failed", details)
		case errors.As(out.Err, &qe):
			return h.err(c, http.StatusUnprocessableEntity, "query execution failed", details)
		default:
			return h.err(c, http.StatusInternalServerError, "ask failed", details)
		}
	}

	return c.JSON(http.StatusOK, AskResponse{
		ID:      out.ID,
		SQL:     out.Query,
		Columns: out.Results.Columns,
		Rows:    out.Results.Rows,
		Advice:  out.Advice,
		TookMs:  time.Since(start).Milliseconds(),
	})
}

// Refresh pulls the roster from the FPL API and upserts it
func (h *Handlers) Refresh(c echo.Context) error {
	if h.Ingest == nil {
		return h.err(c, http.StatusBadRequest, "ingest is not configured", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 2*time.Minute)
	defer cancel()

	run, err := h.Ingest.Refresh(ctx)
	if err != nil {
		details := map[string]any{"err": err.Error()}
		if run != nil {
			details["run_id"] = run.ID
		}
		var ie *ingest.IngestError
		if errors.As(err, &ie) {
			details["stage"] = ie.Stage
			return h.err(c, http.StatusBadGateway, "refresh failed", details)
		}
		return h.err(c, http.StatusInternalServerError, "refresh failed", details)
	}
	return c.JSON(http.StatusOK, run)
}

// RefreshRuns lists recent refresh runs
// Accepts limit query parameter (default: 20, range: 1-50)
func (h *Handlers) RefreshRuns(c echo.Context) error {
	if h.Runs == nil {
		return h.err(c, http.StatusBadRequest, "run log is not configured", nil)
	}

	limit := 20
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 50 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 50"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	items, err := h.Runs.List(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list runs", nil)
	}
	return c.JSON(http.StatusOK, RunsResponse{Items: items})
}
