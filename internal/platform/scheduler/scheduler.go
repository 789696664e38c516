// Package scheduler runs the periodic market data refresh.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"index_backend/internal/feature/indicators/usecase"
)

// Ingester fetches and stores the given targets.
type Ingester interface {
	IngestAll(ctx context.Context, targets []usecase.IngestTarget) error
}

// Scheduler manages the cron jobs of the server process.
type Scheduler struct {
	cron     *cron.Cron
	ingester Ingester
	targets  []usecase.IngestTarget
	ctx      context.Context
}

// NewScheduler creates a scheduler with a seconds field in its specs.
// A run still in progress causes the next tick to be skipped.
func NewScheduler(ctx context.Context, ingester Ingester, targets []usecase.IngestTarget) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ingester: ingester,
		targets:  targets,
		ctx:      ctx,
	}
}

// Register adds the refresh job under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register ingest job %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunNow executes the refresh immediately.
func (s *Scheduler) RunNow() {
	if err := s.ctx.Err(); err != nil {
		return
	}
	slog.Info("running scheduled ingest", "targets", len(s.targets))
	if err := s.ingester.IngestAll(s.ctx, s.targets); err != nil {
		slog.Error("scheduled ingest failed", "error", err)
	}
}
