package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vaibha-v7/SIH/internal/app"
)

// ThrottleStore keeps the login failure table in Redis so lockout state
// survives restarts and is shared across instances. Each throttle key maps
// to a hash {count, last} whose TTL equals the lockout window, so record
// expiry is handled by Redis itself.
type ThrottleStore struct {
	client *redis.Client
	window time.Duration
}

func NewThrottleStore(client *redis.Client, window time.Duration) *ThrottleStore {
	return &ThrottleStore{client: client, window: window}
}

func (s *ThrottleStore) Get(ctx context.Context, key string) (app.ThrottleRecord, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return app.ThrottleRecord{}, false, err
	}
	if len(fields) == 0 {
		return app.ThrottleRecord{}, false, nil
	}

	count, err := strconv.Atoi(fields["count"])
	if err != nil {
		return app.ThrottleRecord{}, false, err
	}
	lastNanos, err := strconv.ParseInt(fields["last"], 10, 64)
	if err != nil {
		return app.ThrottleRecord{}, false, err
	}
	return app.ThrottleRecord{
		FailureCount: count,
		LastFailure:  time.Unix(0, lastNanos),
	}, true, nil
}

func (s *ThrottleStore) Increment(ctx context.Context, key string, now time.Time) (app.ThrottleRecord, error) {
	k := s.key(key)
	pipe := s.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, k, "count", 1)
	pipe.HSet(ctx, k, "last", now.UnixNano())
	pipe.Expire(ctx, k, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return app.ThrottleRecord{}, err
	}
	return app.ThrottleRecord{
		FailureCount: int(incr.Val()),
		LastFailure:  now,
	}, nil
}

func (s *ThrottleStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *ThrottleStore) key(key string) string {
	return "login:attempts:" + key
}
