package cooldown_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/cadetcorps/cadet/internal/cooldown"
	"github.com/cadetcorps/cadet/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type storeCase struct {
	makeStore func(t *testing.T) cooldown.Store
}

func storeCases() map[string]storeCase {
	return map[string]storeCase{
		"memory": {
			makeStore: func(t *testing.T) cooldown.Store { return cooldown.NewMemoryStore() },
		},
		"redis": {
			makeStore: func(t *testing.T) cooldown.Store {
				return cooldown.NewRedisStore(makeRedis(t), "test:", time.Hour)
			},
		},
		"sql": {
			makeStore: func(t *testing.T) cooldown.Store {
				s, err := store.Open(context.Background(), store.DriverSQLite, "file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
				require.NoError(t, err)
				t.Cleanup(func() { s.Close() })
				return s.Cooldowns()
			},
		},
	}
}

func TestLimiter(t *testing.T) {
	tests := storeCases()

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
			l := cooldown.New(tt.makeStore(t), 2*time.Minute, cooldown.WithClock(c.now))

			remaining, err := l.Remaining(ctx, "cadet-1")
			require.NoError(t, err)
			require.Zero(t, remaining, "a fresh key should not wait")

			at, wait, err := l.Reserve(ctx, "cadet-1")
			require.NoError(t, err)
			require.Zero(t, wait)
			require.False(t, at.IsZero())

			c.advance(30 * time.Second)
			remaining, err = l.Remaining(ctx, "cadet-1")
			require.NoError(t, err)
			require.Equal(t, 90*time.Second, remaining)

			remaining, err = l.Remaining(ctx, "cadet-2")
			require.NoError(t, err)
			require.Zero(t, remaining, "keys should be independent")

			c.advance(90 * time.Second)
			remaining, err = l.Remaining(ctx, "cadet-1")
			require.NoError(t, err)
			require.Zero(t, remaining, "the cooldown should have elapsed")
		})
	}
}

func TestLimiter_Disabled(t *testing.T) {
	ctx := context.Background()
	l := cooldown.New(cooldown.NewMemoryStore(), 0)

	for range 2 {
		_, wait, err := l.Reserve(ctx, "k")
		require.NoError(t, err)
		require.Zero(t, wait)
	}
	remaining, err := l.Remaining(ctx, "k")
	require.NoError(t, err)
	require.Zero(t, remaining)
}

func TestLimiter_ReserveIsExclusive(t *testing.T) {
	for name, tt := range storeCases() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := cooldown.New(tt.makeStore(t), 2*time.Minute)

			const callers = 8
			var (
				wg      sync.WaitGroup
				granted atomic.Int32
			)
			for range callers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, wait, err := l.Reserve(ctx, "cadet-1")
					if err == nil && wait == 0 {
						granted.Add(1)
					}
				}()
			}
			wg.Wait()
			require.EqualValues(t, 1, granted.Load(), "exactly one caller should win the slot")

			_, wait, err := l.Reserve(ctx, "cadet-1")
			require.NoError(t, err)
			require.Positive(t, wait)
		})
	}
}

func TestLimiter_Release(t *testing.T) {
	for name, tt := range storeCases() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
			l := cooldown.New(tt.makeStore(t), 2*time.Minute, cooldown.WithClock(c.now))

			at, _, err := l.Reserve(ctx, "cadet-1")
			require.NoError(t, err)
			require.NoError(t, l.Release(ctx, "cadet-1", at))

			remaining, err := l.Remaining(ctx, "cadet-1")
			require.NoError(t, err)
			require.Zero(t, remaining, "a released slot should not wait")

			// A stale release must not drop a newer reservation.
			newer, _, err := l.Reserve(ctx, "cadet-1")
			require.NoError(t, err)
			require.NoError(t, l.Release(ctx, "cadet-1", newer.Add(-time.Minute)))
			_, wait, err := l.Reserve(ctx, "cadet-1")
			require.NoError(t, err)
			require.Equal(t, 2*time.Minute, wait)
		})
	}
}

func TestRedisStore_Expires(t *testing.T) {
	ctx := context.Background()
	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{rs.Addr()}})
	cooldown.LogCommands(rc)

	s := cooldown.NewRedisStore(rc, "cadet:", 2*time.Minute)
	now := time.Now().Truncate(time.Millisecond)
	ok, err := s.Reserve(ctx, "u1", now, now.Add(-2*time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, rs.Exists("cadet:cooldown:u1"))

	last, err := s.Last(ctx, "u1")
	require.NoError(t, err)
	require.True(t, last.Equal(now))

	rs.FastForward(3 * time.Minute)
	last, err = s.Last(ctx, "u1")
	require.NoError(t, err)
	require.True(t, last.IsZero(), "expired key should read as never used")
}

func makeRedis(t *testing.T) redis.UniversalClient {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{rs.Addr()},
	})
	require.NoError(t, rc.Ping(ctx).Err(), "should be able to ping redis")
	return rc
}
