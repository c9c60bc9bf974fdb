package cooldown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps timestamps in Redis so several processes share one
// cooldown. Keys expire after ttl since nothing older matters.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. The prefix namespaces keys.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(k string) string {
	return fmt.Sprintf("%scooldown:%s", r.prefix, k)
}

func (r *RedisStore) Last(ctx context.Context, key string) (time.Time, error) {
	ms, err := r.client.Get(ctx, r.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get cooldown: %w", err)
	}
	return time.UnixMilli(ms), nil
}

// reserveScript sets KEYS[1] to ARGV[1] unless it holds a time after
// ARGV[2]. ARGV[3] is the expiry in milliseconds, 0 for none.
var reserveScript = redis.NewScript(`
local last = redis.call('GET', KEYS[1])
if last and tonumber(last) > tonumber(ARGV[2]) then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// releaseScript deletes KEYS[1] if it still holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

func (r *RedisStore) Reserve(ctx context.Context, key string, t, cutoff time.Time) (bool, error) {
	n, err := reserveScript.Run(ctx, r.client, []string{r.key(key)},
		t.UnixMilli(), cutoff.UnixMilli(), r.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("reserve cooldown: %w", err)
	}
	return n == 1, nil
}

func (r *RedisStore) Release(ctx context.Context, key string, t time.Time) error {
	err := releaseScript.Run(ctx, r.client, []string{r.key(key)}, strconv.FormatInt(t.UnixMilli(), 10)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release cooldown: %w", err)
	}
	return nil
}

// LogCommands attaches a debug-level slog hook to the client.
func LogCommands(r redis.UniversalClient) {
	r.AddHook(redisLog{})
}

type redisLog struct{}

func (redisLog) DialHook(hook redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		slog.DebugContext(ctx, "redis: dialing", "network", network, "addr", addr)
		conn, err := hook(ctx, network, addr)
		if err != nil {
			slog.WarnContext(ctx, "redis: dial failed", "addr", addr, "error", err)
		}
		return conn, err
	}
}

func (redisLog) ProcessHook(hook redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := hook(ctx, cmd)
		slog.DebugContext(ctx, "redis: command", "cmd", cmd.Name(), "elapsed", time.Since(start), "error", err)
		return err
	}
}

func (redisLog) ProcessPipelineHook(hook redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := hook(ctx, cmds)
		slog.DebugContext(ctx, "redis: pipeline", "commands", len(cmds), "error", err)
		return err
	}
}
