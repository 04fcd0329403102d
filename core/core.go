// Package core has the report pipeline: harvest, analyze and narrate over
// one state record per run.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/sirupsen/logrus"
)

// Pipeline runs reports against injected collaborators. A Pipeline holds no
// per-run state and may serve concurrent runs.
type Pipeline struct {
	harvester contract.Harvester
	narrator  contract.Narrator
	charts    contract.ChartRenderer
	store     contract.ReportStore
	observer  contract.RunObserver
	logger    *logrus.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithNarrator sets the text generator used in the narrate stage.
func WithNarrator(n contract.Narrator) Option {
	return func(p *Pipeline) { p.narrator = n }
}

// WithChartRenderer sets the chart renderer used in the narrate stage.
func WithChartRenderer(r contract.ChartRenderer) Option {
	return func(p *Pipeline) { p.charts = r }
}

// WithReportStore sets where snapshots and conversations are persisted.
func WithReportStore(s contract.ReportStore) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithObserver sets the receiver of stage and run events.
func WithObserver(o contract.RunObserver) Option {
	return func(p *Pipeline) { p.observer = o }
}

// WithLogger overrides the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithClock overrides the invocation clock.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithIDGenerator overrides how run identifiers are produced.
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// NewPipeline creates a pipeline around a harvester. Collaborators that are
// not configured are skipped.
func NewPipeline(h contract.Harvester, opts ...Option) *Pipeline {
	p := &Pipeline{
		harvester: h,
		logger:    contract.Logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type stage struct {
	name  schema.Stage
	phase schema.Phase
	run   func(ctx context.Context, state *schema.PipelineState) error
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{schema.StageHarvest, schema.PhaseHarvested, p.harvest},
		{schema.StageAnalyze, schema.PhaseAnalyzed, func(_ context.Context, s *schema.PipelineState) error { return analyze(s) }},
		{schema.StageNarrate, schema.PhaseNarrated, p.narrate},
	}
}

// Run executes every stage in order and always returns a state. Stage
// failures are recorded in state.Errors and never stop the run.
func (p *Pipeline) Run(ctx context.Context, command string, timeRange schema.TimeRange, targetUser string) *schema.PipelineState {
	started := time.Now()
	state := schema.NewPipelineState(p.newID(), command, timeRange, targetUser, p.now())
	ctx = withRunID(ctx, state.RunID)

	log := p.logger.WithFields(logrus.Fields{
		"run_id":     state.RunID,
		"command":    command,
		"time_range": timeRange,
	})
	log.WithFields(logrus.Fields{
		"window_start": state.WindowStart.Format(time.RFC3339),
		"window_end":   state.WindowEnd.Format(time.RFC3339),
	}).Info("Pipeline run started")

	for _, st := range p.stages() {
		stageStarted := time.Now()
		err := p.runStage(ctx, st, state)
		elapsed := time.Since(stageStarted)
		if p.observer != nil {
			p.observer.ObserveStage(st.name, elapsed, err)
		}
		for _, e := range flatten(err) {
			state.AddError(e)
			log.WithField("stage", st.name).WithError(e).Warn("Stage failed")
		}
		state.Phase = st.phase
		log.WithFields(logrus.Fields{"stage": st.name, "duration": elapsed}).Debug("Stage finished")
	}
	state.Phase = schema.PhaseDone

	elapsed := time.Since(started)
	if p.observer != nil {
		p.observer.ObserveRun(state, elapsed)
	}
	log.WithFields(logrus.Fields{
		"status":    state.Status(),
		"commits":   len(state.Commits),
		"anomalies": len(state.Anomalies),
		"duration":  elapsed,
	}).Info("Pipeline run finished")
	return state
}

// runStage invokes one stage and converts a panic into a stage error.
func (p *Pipeline) runStage(ctx context.Context, st stage, state *schema.PipelineState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newStageError(st.name, kindFor(st.name), fmt.Errorf("panic: %v", r))
		}
	}()
	return st.run(ctx, state)
}

// flatten splits accumulated stage failures into individual errors.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.WrappedErrors()
	}
	return []error{err}
}
