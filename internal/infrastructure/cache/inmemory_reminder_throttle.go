package cache

import (
	"context"
	"sync"
	"time"

	appcollections "github.com/arcollect/backend/internal/application/collections"
)

// InMemoryReminderThrottle implements ReminderThrottle with a process-local
// map. Suitable for single-instance deployments and testing.
// WARNING: state is not shared across instances, so a distributed deployment
// may send duplicate reminders.
type InMemoryReminderThrottle struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewInMemoryReminderThrottle creates a new in-memory reminder throttle
func NewInMemoryReminderThrottle() *InMemoryReminderThrottle {
	return &InMemoryReminderThrottle{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Allow reports whether a reminder may be sent for the key. A positive answer
// starts the suppression window for that key.
func (t *InMemoryReminderThrottle) Allow(_ context.Context, key string, window time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if expiry, ok := t.expires[key]; ok && now.Before(expiry) {
		return false, nil
	}

	t.expires[key] = now.Add(window)
	t.sweepLocked(now)
	return true, nil
}

// sweepLocked drops expired entries so the map does not grow unbounded.
// Callers must hold the mutex.
func (t *InMemoryReminderThrottle) sweepLocked(now time.Time) {
	for key, expiry := range t.expires {
		if !now.Before(expiry) {
			delete(t.expires, key)
		}
	}
}

// Ensure InMemoryReminderThrottle implements ReminderThrottle
var _ appcollections.ReminderThrottle = (*InMemoryReminderThrottle)(nil)
