package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arcollect/backend/internal/infrastructure/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepTimeout bounds a single sweep run
const sweepTimeout = 5 * time.Minute

// AutoApprovalSweeper processes change requests whose approval deadline passed
type AutoApprovalSweeper interface {
	ProcessAutoApprovals(ctx context.Context, now time.Time) (int, error)
}

// AgingSweeper recomputes aging for open collections
type AgingSweeper interface {
	RunAgingSweep(ctx context.Context, now time.Time) (int, error)
}

// SweepRunner drives the periodic background sweeps on cron schedules:
// change request auto-approval and collection aging.
type SweepRunner struct {
	cfg       config.SchedulerConfig
	approvals AutoApprovalSweeper
	aging     AgingSweeper
	logger    *zap.Logger

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewSweepRunner creates a new SweepRunner
func NewSweepRunner(
	cfg config.SchedulerConfig,
	approvals AutoApprovalSweeper,
	aging AgingSweeper,
	logger *zap.Logger,
) *SweepRunner {
	return &SweepRunner{
		cfg:       cfg,
		approvals: approvals,
		aging:     aging,
		logger:    logger.Named("sweep-runner"),
	}
}

// Start registers the sweeps and starts the cron loop.
// A disabled runner starts successfully and does nothing.
func (r *SweepRunner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return nil
	}
	if !r.cfg.Enabled {
		r.logger.Info("sweep runner disabled")
		return nil
	}

	c := cron.New()

	if _, err := c.AddFunc(r.cfg.AutoApproveSchedule, r.runAutoApprovalSweep); err != nil {
		return fmt.Errorf("%w: auto approve schedule %q: %v", ErrInvalidSchedule, r.cfg.AutoApproveSchedule, err)
	}
	if _, err := c.AddFunc(r.cfg.AgingSchedule, r.runAgingSweep); err != nil {
		return fmt.Errorf("%w: aging schedule %q: %v", ErrInvalidSchedule, r.cfg.AgingSchedule, err)
	}

	c.Start()
	r.cron = c
	r.isRunning = true

	r.logger.Info("sweep runner started",
		zap.String("auto_approve_schedule", r.cfg.AutoApproveSchedule),
		zap.String("aging_schedule", r.cfg.AgingSchedule),
	)
	return nil
}

// Stop stops the cron loop and waits for in-flight sweeps to finish,
// or until the context is done.
func (r *SweepRunner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	stopped := c.Stop()
	select {
	case <-stopped.Done():
		r.logger.Info("sweep runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("sweep runner stop timed out")
		return ctx.Err()
	}
}

// TriggerAutoApprovalSweep runs the auto-approval sweep immediately
func (r *SweepRunner) TriggerAutoApprovalSweep() error {
	r.mu.Lock()
	running := r.isRunning
	r.mu.Unlock()
	if !running {
		return ErrRunnerNotRunning
	}

	go r.runAutoApprovalSweep()
	return nil
}

// TriggerAgingSweep runs the aging sweep immediately
func (r *SweepRunner) TriggerAgingSweep() error {
	r.mu.Lock()
	running := r.isRunning
	r.mu.Unlock()
	if !running {
		return ErrRunnerNotRunning
	}

	go r.runAgingSweep()
	return nil
}

func (r *SweepRunner) runAutoApprovalSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	processed, err := r.approvals.ProcessAutoApprovals(ctx, time.Now())
	if err != nil {
		r.logger.Error("auto approval sweep failed", zap.Error(err))
		return
	}
	if processed > 0 {
		r.logger.Info("auto approval sweep finished", zap.Int("processed", processed))
	}
}

func (r *SweepRunner) runAgingSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	updated, err := r.aging.RunAgingSweep(ctx, time.Now())
	if err != nil {
		r.logger.Error("aging sweep failed", zap.Error(err))
		return
	}
	r.logger.Info("aging sweep finished", zap.Int("updated", updated))
}
