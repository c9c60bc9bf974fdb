// Package cooldown enforces a minimum interval between model calls per key.
package cooldown

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultInterval is the wait between two quiz generations by one user.
const DefaultInterval = 2 * time.Minute

// Store keeps the time of the last accepted call per key.
// *store.CooldownRepo, *MemoryStore and *RedisStore satisfy it.
type Store interface {
	Last(ctx context.Context, key string) (time.Time, error)

	// Reserve atomically stores t for key unless the stored time is after
	// cutoff. It reports whether t was stored.
	Reserve(ctx context.Context, key string, t, cutoff time.Time) (bool, error)

	// Release removes key if it still holds t.
	Release(ctx context.Context, key string, t time.Time) error
}

// Limiter answers how long a key must still wait.
type Limiter struct {
	store    Store
	interval time.Duration
	now      func() time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter. A non-positive interval disables the cooldown.
func New(s Store, interval time.Duration, opts ...Option) *Limiter {
	l := &Limiter{store: s, interval: interval, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the configured cooldown.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Remaining returns how long key must wait, or zero if it may proceed.
func (l *Limiter) Remaining(ctx context.Context, key string) (time.Duration, error) {
	if l.interval <= 0 {
		return 0, nil
	}
	last, err := l.store.Last(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read cooldown for %q: %w", key, err)
	}
	if last.IsZero() {
		return 0, nil
	}
	if wait := l.interval - l.now().Sub(last); wait > 0 {
		return wait, nil
	}
	return 0, nil
}

// Reserve claims a call for key. On success it returns the reservation
// time, which Release takes to hand the slot back, and a zero wait. When
// key is still cooling down it returns the remaining wait instead. Two
// callers racing for the same key never both succeed.
func (l *Limiter) Reserve(ctx context.Context, key string) (time.Time, time.Duration, error) {
	if l.interval <= 0 {
		return time.Time{}, 0, nil
	}
	now := l.now()
	ok, err := l.store.Reserve(ctx, key, now, now.Add(-l.interval))
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("reserve cooldown for %q: %w", key, err)
	}
	if ok {
		return now, 0, nil
	}

	wait, err := l.Remaining(ctx, key)
	if err != nil {
		return time.Time{}, 0, err
	}
	// The holder's slot may have lapsed between the two reads.
	return time.Time{}, max(wait, time.Second), nil
}

// Release undoes a reservation made at at, so a failed call does not
// cost the user a cooldown. A newer reservation is left alone.
func (l *Limiter) Release(ctx context.Context, key string, at time.Time) error {
	if at.IsZero() {
		return nil
	}
	if err := l.store.Release(ctx, key, at); err != nil {
		return fmt.Errorf("release cooldown for %q: %w", key, err)
	}
	return nil
}

// MemoryStore keeps timestamps in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{last: make(map[string]time.Time)}
}

func (m *MemoryStore) Last(_ context.Context, key string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last[key], nil
}

func (m *MemoryStore) Reserve(_ context.Context, key string, t, cutoff time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if last, ok := m.last[key]; ok && last.After(cutoff) {
		return false, nil
	}
	m.last[key] = t
	return true, nil
}

func (m *MemoryStore) Release(_ context.Context, key string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if last, ok := m.last[key]; ok && last.Equal(t) {
		delete(m.last, key)
	}
	return nil
}
