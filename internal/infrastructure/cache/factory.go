package cache

import (
	"fmt"

	appcollections "github.com/arcollect/backend/internal/application/collections"
	"github.com/arcollect/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReminderThrottleFactory creates reminder throttles based on configuration
type ReminderThrottleFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReminderThrottleFactoryOption is a functional option for configuring the factory
type ReminderThrottleFactoryOption func(*ReminderThrottleFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReminderThrottleFactoryOption {
	return func(f *ReminderThrottleFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory throttle
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ReminderThrottleFactoryOption {
	return func(f *ReminderThrottleFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReminderThrottleFactory creates a new factory
func NewReminderThrottleFactory(cfg config.RedisConfig, opts ...ReminderThrottleFactoryOption) *ReminderThrottleFactory {
	f := &ReminderThrottleFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateThrottle creates a reminder throttle. It tries Redis first and falls
// back to the in-memory throttle if Redis is unavailable and fallback is allowed.
func (f *ReminderThrottleFactory) CreateThrottle() (appcollections.ReminderThrottle, error) {
	throttle, err := NewRedisReminderThrottle(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis reminder throttle")
		return throttle, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for reminder throttling but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory reminder throttle. "+
		"This may cause duplicate reminders in distributed deployments.",
		zap.Error(err),
	)
	return NewInMemoryReminderThrottle(), nil
}
