// Package ingest refreshes the statistics store from the upstream FPL API.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/fpl-advisor/internal/metrics"
	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Ingest stages.
const (
	StageFetch  = "fetch"
	StageUpsert = "upsert"
)

// ErrEmptyRoster is returned when upstream answers successfully with no players.
var ErrEmptyRoster = errors.New("upstream returned no players")

// IngestError reports a failed refresh. The store is left as it was before the run.
type IngestError struct {
	Stage string
	Err   error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s failed: %v", e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Source yields the full current roster.
type Source interface {
	Players(ctx context.Context) ([]models.Player, error)
}

// Writer upserts players atomically.
type Writer interface {
	Upsert(ctx context.Context, players []models.Player) error
}

// Recorder keeps a log of refresh runs.
type Recorder interface {
	Record(ctx context.Context, run *models.RefreshRun) error
}

// Notifier announces finished refresh runs.
type Notifier interface {
	PublishRefresh(ctx context.Context, run *models.RefreshRun) error
}

// Config holds the Ingestor's collaborators. Recorder, Notifier and Metrics are optional.
type Config struct {
	Source   Source
	Store    Writer
	Recorder Recorder
	Notifier Notifier
	Metrics  *metrics.Manager
	Logger   *logrus.Logger
}

type Ingestor struct {
	source   Source
	store    Writer
	recorder Recorder
	notifier Notifier
	metrics  *metrics.Manager
	logger   *logrus.Logger
}

func New(cfg Config) (*Ingestor, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("ingest source is nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("ingest store is nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Ingestor{
		source:   cfg.Source,
		store:    cfg.Store,
		recorder: cfg.Recorder,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}, nil
}

// Refresh fetches the roster and upserts it in one write. Nothing is written
// unless the whole roster was fetched and mapped. The returned run is non-nil
// on failure too; the error is then an *IngestError.
func (i *Ingestor) Refresh(ctx context.Context) (*models.RefreshRun, error) {
	run := &models.RefreshRun{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	log := i.logger.WithField("run_id", run.ID)
	log.Info("starting player data refresh")

	err := i.refresh(ctx, run)

	run.FinishedAt = time.Now().UTC()
	if err != nil {
		run.Status = models.RefreshFailed
		run.Error = err.Error()
		log.WithError(err).Error("player data refresh failed")
	} else {
		run.Status = models.RefreshOK
		log.WithFields(logrus.Fields{
			"players":  run.Players,
			"duration": run.Duration(),
		}).Info("player data refresh finished")
	}

	i.metrics.ObserveIngest(run.Status, run.Players, run.Duration())
	i.announce(ctx, run)
	return run, err
}

func (i *Ingestor) refresh(ctx context.Context, run *models.RefreshRun) error {
	players, err := i.source.Players(ctx)
	if err != nil {
		return &IngestError{Stage: StageFetch, Err: err}
	}
	if len(players) == 0 {
		return &IngestError{Stage: StageFetch, Err: ErrEmptyRoster}
	}

	if err := i.store.Upsert(ctx, players); err != nil {
		return &IngestError{Stage: StageUpsert, Err: err}
	}
	run.Players = len(players)
	return nil
}

// announce records and publishes the run; failures here never fail the refresh.
func (i *Ingestor) announce(ctx context.Context, run *models.RefreshRun) {
	if i.recorder != nil {
		if err := i.recorder.Record(ctx, run); err != nil {
			i.logger.WithError(err).Warn("failed to record refresh run")
		}
	}
	if i.notifier != nil {
		if err := i.notifier.PublishRefresh(ctx, run); err != nil {
			i.logger.WithError(err).Warn("failed to publish refresh run")
		}
	}
}
