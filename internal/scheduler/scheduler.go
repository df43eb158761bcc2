// Package scheduler runs the periodic report sync and the message-index
// retention cleanup. Both timers survive individual cycle failures; the
// process only stops them on shutdown.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mixelka/photoreport/internal/database"
	"github.com/mixelka/photoreport/internal/report"
)

// Sink receives assembled report tables. Implemented by the sheets
// client; faked in tests.
type Sink interface {
	Publish(ctx context.Context, table *report.Table) error
}

// Config scheduler settings
type Config struct {
	SyncInterval       time.Duration
	CleanupInterval    time.Duration
	MessageTopicMaxAge int // days
}

// Scheduler owns the sync and cleanup timers.
type Scheduler struct {
	db      *database.DB
	builder *report.Builder
	sink    Sink
	cfg     Config
	logger  *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler.
func New(db *database.DB, sink Sink, cfg Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:      db,
		builder: report.NewBuilder(db),
		sink:    sink,
		cfg:     cfg,
		logger:  logger.With("component", "scheduler"),
	}
}

// Start launches both timers. Cycles run immediately on start and then
// on every tick.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.runLoop(ctx, "sync", s.cfg.SyncInterval, s.syncCycle)
	go s.runLoop(ctx, "cleanup", s.cfg.CleanupInterval, s.cleanupCycle)

	s.logger.Info("scheduler started",
		"sync_interval", s.cfg.SyncInterval,
		"cleanup_interval", s.cfg.CleanupInterval,
	)
}

// Stop cancels both timers and waits for in-flight cycles to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// runLoop runs cycle on an interval until the context is cancelled.
// Cycle errors are logged and never stop the timer.
func (s *Scheduler) runLoop(ctx context.Context, name string, interval time.Duration, cycle func(context.Context) error) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := cycle(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("cycle failed", "cycle", name, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// syncCycle builds the report and hands it to the sink.
func (s *Scheduler) syncCycle(ctx context.Context) error {
	table, err := s.builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	if len(table.Rows) == 0 {
		s.logger.Info("no data to sync")
		return nil
	}

	if err := s.sink.Publish(ctx, table); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}

	s.logger.Info("sync completed", "rows", len(table.Rows))
	return nil
}

// cleanupCycle drops message-index rows older than the retention window.
func (s *Scheduler) cleanupCycle(ctx context.Context) error {
	deleted, err := s.db.CleanupOldMessageTopics(ctx, s.cfg.MessageTopicMaxAge)
	if err != nil {
		return fmt.Errorf("failed to cleanup message topics: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("message topics cleaned up", "deleted", deleted, "max_age_days", s.cfg.MessageTopicMaxAge)
	}
	return nil
}

// ForceSync runs one sync cycle outside the timer, sharing its execution
// path and failure policy.
func (s *Scheduler) ForceSync(ctx context.Context) error {
	s.logger.Info("forced sync requested")
	return s.syncCycle(ctx)
}
