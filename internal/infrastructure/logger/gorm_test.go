package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func traceQuery(rows int64) func() (string, int64) {
	return func() (string, int64) {
		return "SELECT * FROM collections WHERE id = ?", rows
	}
}

func TestGormLogger_LogMode(t *testing.T) {
	l, _ := newObservedGormLogger(gormlogger.Info)

	quieter := l.LogMode(gormlogger.Warn)

	clone, ok := quieter.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, clone.level)
	assert.Equal(t, gormlogger.Info, l.level, "original keeps its level")
}

func TestGormLogger_Passthrough(t *testing.T) {
	t.Run("info formats arguments", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Info)

		l.Info(context.Background(), "migrating %d tables", 5)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "migrating 5 tables", logs[0].Message)
	})

	t.Run("silent suppresses everything", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Silent)

		l.Info(context.Background(), "hidden")
		l.Warn(context.Background(), "hidden")
		l.Error(context.Background(), "hidden")

		assert.Empty(t, recorded.All())
	})

	t.Run("warn and error respect the threshold", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Error)

		l.Warn(context.Background(), "hidden")
		l.Error(context.Background(), "shown")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("failed query logs at error with the statement", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Error)

		l.Trace(ctx, time.Now(), traceQuery(0), errors.New("connection reset"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "sql error", logs[0].Message)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)

		fields := logs[0].ContextMap()
		assert.Contains(t, fields["sql"], "SELECT")
	})

	t.Run("record not found is suppressed by default", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Error)

		l.Trace(ctx, time.Now(), traceQuery(0), gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("record not found surfaces when suppression is off", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))

		l.Trace(ctx, time.Now(), traceQuery(0), gormlogger.ErrRecordNotFound)

		require.Len(t, recorded.All(), 1)
	})

	t.Run("slow query logs at warn", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

		l.Trace(ctx, time.Now().Add(-time.Second), traceQuery(10), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "slow sql", logs[0].Message)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	})

	t.Run("ordinary query logs at debug", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Info, WithSlowThreshold(time.Hour))

		l.Trace(ctx, time.Now(), traceQuery(5), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "sql trace", logs[0].Message)
		assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
		assert.Equal(t, int64(5), logs[0].ContextMap()["rows"])
	})

	t.Run("silent emits nothing", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Silent)

		l.Trace(ctx, time.Now(), traceQuery(5), nil)

		assert.Empty(t, recorded.All())
	})

	t.Run("request id travels from context into the trace", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Info, WithSlowThreshold(time.Hour))
		reqCtx := context.WithValue(ctx, RequestIDKey, "req-42")

		l.Trace(reqCtx, time.Now(), traceQuery(1), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "req-42", logs[0].ContextMap()["request_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
