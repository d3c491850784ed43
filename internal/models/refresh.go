package models

import "time"

// Refresh run statuses.
const (
	RefreshOK     = "ok"
	RefreshFailed = "failed"
)

// RefreshRun records one ingest cycle.
type RefreshRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Players    int       `json:"players"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r *RefreshRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
