package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/arcollect/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSweeper struct {
	calls chan time.Time
	count int
	err   error
}

func newStubSweeper() *stubSweeper {
	return &stubSweeper{calls: make(chan time.Time, 16)}
}

func (s *stubSweeper) ProcessAutoApprovals(_ context.Context, now time.Time) (int, error) {
	s.calls <- now
	return s.count, s.err
}

func (s *stubSweeper) RunAgingSweep(_ context.Context, now time.Time) (int, error) {
	s.calls <- now
	return s.count, s.err
}

func waitForCall(t *testing.T, calls chan time.Time) {
	t.Helper()
	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a sweep run")
	}
}

func enabledConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:             true,
		AutoApproveSchedule: "@every 1h",
		AgingSchedule:       "0 2 * * *",
	}
}

func TestSweepRunner_StartStop(t *testing.T) {
	t.Run("starts and stops cleanly", func(t *testing.T) {
		runner := NewSweepRunner(enabledConfig(), newStubSweeper(), newStubSweeper(), zap.NewNop())

		require.NoError(t, runner.Start())
		require.NoError(t, runner.Stop(context.Background()))
	})

	t.Run("start is idempotent", func(t *testing.T) {
		runner := NewSweepRunner(enabledConfig(), newStubSweeper(), newStubSweeper(), zap.NewNop())

		require.NoError(t, runner.Start())
		require.NoError(t, runner.Start())
		require.NoError(t, runner.Stop(context.Background()))
	})

	t.Run("stop without start is a no-op", func(t *testing.T) {
		runner := NewSweepRunner(enabledConfig(), newStubSweeper(), newStubSweeper(), zap.NewNop())
		assert.NoError(t, runner.Stop(context.Background()))
	})

	t.Run("rejects an invalid auto approve schedule", func(t *testing.T) {
		cfg := enabledConfig()
		cfg.AutoApproveSchedule = "not a schedule"
		runner := NewSweepRunner(cfg, newStubSweeper(), newStubSweeper(), zap.NewNop())

		err := runner.Start()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
	})

	t.Run("rejects an invalid aging schedule", func(t *testing.T) {
		cfg := enabledConfig()
		cfg.AgingSchedule = "99 99 * * *"
		runner := NewSweepRunner(cfg, newStubSweeper(), newStubSweeper(), zap.NewNop())

		err := runner.Start()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
	})

	t.Run("disabled runner starts without scheduling", func(t *testing.T) {
		cfg := enabledConfig()
		cfg.Enabled = false
		runner := NewSweepRunner(cfg, newStubSweeper(), newStubSweeper(), zap.NewNop())

		require.NoError(t, runner.Start())
		assert.ErrorIs(t, runner.TriggerAutoApprovalSweep(), ErrRunnerNotRunning)
	})
}

func TestSweepRunner_Trigger(t *testing.T) {
	t.Run("manual auto approval trigger runs the sweep", func(t *testing.T) {
		approvals := newStubSweeper()
		approvals.count = 2
		runner := NewSweepRunner(enabledConfig(), approvals, newStubSweeper(), zap.NewNop())

		require.NoError(t, runner.Start())
		defer runner.Stop(context.Background())

		require.NoError(t, runner.TriggerAutoApprovalSweep())
		waitForCall(t, approvals.calls)
	})

	t.Run("manual aging trigger runs the sweep", func(t *testing.T) {
		aging := newStubSweeper()
		runner := NewSweepRunner(enabledConfig(), newStubSweeper(), aging, zap.NewNop())

		require.NoError(t, runner.Start())
		defer runner.Stop(context.Background())

		require.NoError(t, runner.TriggerAgingSweep())
		waitForCall(t, aging.calls)
	})

	t.Run("trigger on a stopped runner fails", func(t *testing.T) {
		runner := NewSweepRunner(enabledConfig(), newStubSweeper(), newStubSweeper(), zap.NewNop())

		require.NoError(t, runner.Start())
		require.NoError(t, runner.Stop(context.Background()))

		assert.ErrorIs(t, runner.TriggerAutoApprovalSweep(), ErrRunnerNotRunning)
		assert.ErrorIs(t, runner.TriggerAgingSweep(), ErrRunnerNotRunning)
	})

	t.Run("sweep errors do not crash the runner", func(t *testing.T) {
		approvals := newStubSweeper()
		approvals.err = assert.AnError
		runner := NewSweepRunner(enabledConfig(), approvals, newStubSweeper(), zap.NewNop())

		require.NoError(t, runner.Start())
		defer runner.Stop(context.Background())

		require.NoError(t, runner.TriggerAutoApprovalSweep())
		waitForCall(t, approvals.calls)
	})
}
