package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript mirrors MemoryStore.Hit inside Redis so that concurrent
// instances share one counter per identifier. Window times are unix
// milliseconds from the caller's clock; the key TTL is relative so it does
// not depend on the Redis server clock agreeing with it.
var hitScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local window = tonumber(ARGV[3])
local reset = tonumber(redis.call('HGET', KEYS[1], 'reset') or '0')
if reset == 0 or now > reset then
  reset = now + window
  redis.call('HSET', KEYS[1], 'count', 1, 'reset', reset)
  redis.call('PEXPIRE', KEYS[1], window + 1000)
  return {1, 1, reset}
end
local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
if count >= limit then
  return {0, count, reset}
end
count = redis.call('HINCRBY', KEYS[1], 'count', 1)
return {1, count, reset}
`)

const redisKeyPrefix = "licensegate:ratelimit:"

// RedisStore keeps windows in Redis. Keys carry a TTL slightly past their
// window, so no sweeper is needed.
type RedisStore struct {
	client redis.Scripter
}

func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Hit(ctx context.Context, identifier string, limit int, window time.Duration, now time.Time) (Window, error) {
	vals, err := hitScript.Run(ctx, s.client,
		[]string{redisKeyPrefix + identifier},
		now.UnixMilli(), limit, window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Window{}, fmt.Errorf("redis rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Window{}, fmt.Errorf("redis rate limit script returned %d values", len(vals))
	}

	return Window{
		Allowed: vals[0] == 1,
		Count:   int(vals[1]),
		ResetAt: time.UnixMilli(vals[2]),
	}, nil
}
