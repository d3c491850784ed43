package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/fpl-advisor/internal/metrics"
	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

// Stage is a step of the per-question pipeline.
type Stage int

const (
	StageReceived Stage = iota
	StageQuerySynthesized
	StageExecuted
	StageAdviceGenerated
	StageDelivered
	StageErrored
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageQuerySynthesized:
		return "query_synthesized"
	case StageExecuted:
		return "executed"
	case StageAdviceGenerated:
		return "advice_generated"
	case StageDelivered:
		return "delivered"
	case StageErrored:
		return "errored"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the result of one question. A delivered outcome carries Results
// and Advice; an errored one carries Err and neither of the others.
type Outcome struct {
	ID       string           `json:"id"`
	Question string           `json:"question"`
	Stage    Stage            `json:"stage"`
	Reached  Stage            `json:"reached"`
	Query    string           `json:"query,omitempty"`
	Results  *store.ResultSet `json:"results,omitempty"`
	Advice   string           `json:"advice,omitempty"`
	Err      error            `json:"-"`
	Duration time.Duration    `json:"duration"`
}

func (o *Outcome) Delivered() bool { return o.Stage == StageDelivered }

// Message is the text shown to the user for this outcome.
func (o *Outcome) Message() string {
	if o.Err != nil {
		return "An error occurred: " + o.Err.Error()
	}
	return o.Advice
}

// SchemaQuerier is the read side of the player store.
type SchemaQuerier interface {
	store.Querier
	Describe(ctx context.Context) (*store.Schema, error)
}

// Config wires an Orchestrator.
type Config struct {
	Backend Backend
	Store   SchemaQuerier
	// Dialect is the SQL dialect named in the query prompt.
	Dialect string
	Metrics *metrics.Manager
	Logger  *logrus.Logger
}

// Orchestrator drives a question through query synthesis, execution and advice.
type Orchestrator struct {
	schema  *store.Schema
	queries *QuerySynthesizer
	exec    *Executor
	advice  *AdviceSynthesizer
	metrics *metrics.Manager
	logger  *logrus.Logger
}

// NewOrchestrator introspects the store once; the schema is fixed for the
// lifetime of the process.
func NewOrchestrator(ctx context.Context, cfg Config) (*Orchestrator, error) {
	if cfg.Backend == nil {
		return nil, errors.New("advisor: backend is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("advisor: store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	schema, err := cfg.Store.Describe(ctx)
	if err != nil {
		return nil, fmt.Errorf("describe players table: %w", err)
	}

	return &Orchestrator{
		schema:  schema,
		queries: NewQuerySynthesizer(cfg.Backend, cfg.Dialect, cfg.Logger),
		exec:    NewExecutor(cfg.Store),
		advice:  NewAdviceSynthesizer(cfg.Backend, cfg.Logger),
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}, nil
}

// Schema returns the schema given to the query synthesizer.
func (o *Orchestrator) Schema() *store.Schema {
	return o.schema
}

// Handle runs one question to completion. It never panics on stage failure and
// always returns a terminal Outcome. When history is non-nil the question and
// the advice or error message are appended to it.
func (o *Orchestrator) Handle(ctx context.Context, history *History, question string) *Outcome {
	start := time.Now()
	out := &Outcome{
		ID:       uuid.NewString(),
		Question: strings.TrimSpace(question),
		Stage:    StageReceived,
		Reached:  StageReceived,
	}
	log := o.logger.WithField("question_id", out.ID)

	defer func() {
		out.Duration = time.Since(start)
		if history != nil && out.Question != "" {
			history.Add(RoleAssistant, out.Message())
		}
		if out.Delivered() {
			o.metrics.ObserveQuestion(metrics.OutcomeDelivered)
			log.WithFields(logrus.Fields{
				"rows":     out.Results.Len(),
				"duration": out.Duration,
			}).Info("Question answered")
		} else {
			o.metrics.ObserveQuestion(metrics.OutcomeErrored)
			log.WithFields(logrus.Fields{
				"reached": out.Reached.String(),
				"error":   out.Err,
			}).Warn("Question failed")
		}
	}()

	if out.Question == "" {
		o.fail(out, ErrEmptyQuestion)
		return out
	}
	if history != nil {
		history.Add(RoleUser, out.Question)
	}
	log.WithField("question", out.Question).Info("Question received")

	t := time.Now()
	query, err := o.queries.Synthesize(ctx, out.Question, o.schema)
	o.metrics.ObserveStage(metrics.StageQuery, time.Since(t), err)
	if err != nil {
		o.fail(out, err)
		return out
	}
	out.Query = query
	out.Reached = StageQuerySynthesized

	t = time.Now()
	results, err := o.exec.Execute(ctx, query)
	o.metrics.ObserveStage(metrics.StageExec, time.Since(t), err)
	if err != nil {
		o.fail(out, err)
		return out
	}
	out.Reached = StageExecuted
	log.WithField("rows", results.Len()).Debug("Query executed")

	t = time.Now()
	advice, err := o.advice.Synthesize(ctx, out.Question, results)
	o.metrics.ObserveStage(metrics.StageAdvice, time.Since(t), err)
	if err != nil {
		o.fail(out, err)
		return out
	}
	out.Reached = StageAdviceGenerated

	out.Results = results
	out.Advice = advice
	out.Stage = StageDelivered
	out.Reached = StageDelivered
	return out
}

func (o *Orchestrator) fail(out *Outcome, err error) {
	out.Stage = StageErrored
	out.Err = err
	out.Results = nil
	out.Advice = ""
}
