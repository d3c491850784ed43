package server

import (
	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK      bool  `json:"ok"`      // Service health status
	Players int64 `json:"players"` // Rows in the players table
}

// AskRequest represents a natural language question about player data
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse carries the executed query, its rows and the generated advice
type AskResponse struct {
	ID      string      `json:"id"`
	SQL     string      `json:"sql"`
	Columns []string    `json:"columns"`
	Rows    []store.Row `json:"rows"`
	Advice  string      `json:"advice"`
	TookMs  int64       `json:"took_ms"`
}

// RunsResponse lists recent refresh runs, newest first
type RunsResponse struct {
	Items []*models.RefreshRun `json:"items"`
}
