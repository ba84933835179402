package cache

import (
	"context"
	"fmt"
	"time"

	appcollections "github.com/arcollect/backend/internal/application/collections"
	"github.com/arcollect/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisReminderThrottle implements ReminderThrottle using Redis.
// This is suitable for distributed deployments where multiple instances
// must share the suppression window.
type RedisReminderThrottle struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisReminderThrottle creates a new Redis-based reminder throttle
func NewRedisReminderThrottle(cfg config.RedisConfig) (*RedisReminderThrottle, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisReminderThrottle{
		client:    client,
		keyPrefix: "collections:reminder:",
	}, nil
}

// NewRedisReminderThrottleWithClient creates a throttle with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisReminderThrottleWithClient(client *redis.Client, keyPrefix string) *RedisReminderThrottle {
	if keyPrefix == "" {
		keyPrefix = "collections:reminder:"
	}
	return &RedisReminderThrottle{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Allow reports whether a reminder may be sent for the key. A positive answer
// atomically starts the suppression window via SETNX, so concurrent sweeps
// across instances send at most one reminder per window.
func (t *RedisReminderThrottle) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.keyPrefix+key, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve reminder slot: %w", err)
	}
	return ok, nil
}

// Close closes the Redis client
func (t *RedisReminderThrottle) Close() error {
	return t.client.Close()
}

// Ensure RedisReminderThrottle implements ReminderThrottle
var _ appcollections.ReminderThrottle = (*RedisReminderThrottle)(nil)
