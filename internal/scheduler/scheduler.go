// Package scheduler runs reports on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RunFunc produces one report for a time range. Every call must build its
// own pipeline state.
type RunFunc func(ctx context.Context, timeRange schema.TimeRange) error

// Scheduler triggers RunFunc for each configured time range on a cron spec.
// Overlapping ticks are skipped while a previous tick is still running.
type Scheduler struct {
	spec     string
	ranges   []schema.TimeRange
	run      RunFunc
	schedule cron.Schedule
	logger   *logrus.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// New validates spec and ranges. An empty range list defaults to weekly.
func New(spec string, ranges []schema.TimeRange, run RunFunc) (*Scheduler, error) {
	if run == nil {
		return nil, fmt.Errorf("no run function configured")
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	if len(ranges) == 0 {
		ranges = []schema.TimeRange{schema.Weekly}
	}
	for _, tr := range ranges {
		if !tr.IsValid() {
			return nil, fmt.Errorf("invalid time range '%s'. must be daily, weekly, monthly", tr)
		}
	}
	return &Scheduler{
		spec:     spec,
		ranges:   ranges,
		run:      run,
		schedule: schedule,
		logger:   contract.Logger,
	}, nil
}

// Next returns the next activation time after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Ranges returns the time ranges run on every tick.
func (s *Scheduler) Ranges() []schema.TimeRange {
	return append([]schema.TimeRange(nil), s.ranges...)
}

// Trigger runs every configured time range once, in order. A failing range
// is logged and does not stop the rest.
func (s *Scheduler) Trigger(ctx context.Context) int {
	failures := 0
	for _, tr := range s.ranges {
		if ctx.Err() != nil {
			return failures
		}
		log := s.logger.WithFields(logrus.Fields{"cron": s.spec, "time_range": tr})
		started := time.Now()
		if err := s.run(ctx, tr); err != nil {
			failures++
			log.WithError(err).Error("Scheduled report failed")
			continue
		}
		log.WithField("duration", time.Since(started)).Info("Scheduled report finished")
	}
	return failures
}

// Run starts the cron loop and blocks until ctx is done. It waits for an
// in-flight tick to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(s.logger)),
		cron.SkipIfStillRunning(cron.PrintfLogger(s.logger)),
	))
	if _, err := c.AddFunc(s.spec, func() { s.Trigger(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule reports: %w", err)
	}

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	c.Start()
	s.logger.WithFields(logrus.Fields{
		"cron":   s.spec,
		"ranges": s.ranges,
		"next":   s.Next(time.Now()).Format(time.RFC3339),
	}).Info("Report scheduler started")

	<-ctx.Done()
	s.logger.Info("Stopping report scheduler...")
	<-c.Stop().Done()
	return nil
}
