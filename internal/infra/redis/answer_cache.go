package redis

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/vaibha-v7/SIH/internal/app"
)

// AnswerCache caches quiz scoring keys in Redis (one hash per quiz) and
// falls back to the source on cache miss. The hash stores:
//
//	HSET quiz:{quizID}:key title {title} n {questionCount} a{i} {answer} o{i} {optionCount}
//
// Attempt data is never cached; attempt counting always goes to the
// durable store.
type AnswerCache struct {
	client *redis.Client
	source app.AnswerKeySource
	ttl    time.Duration
	sf     singleflight.Group
}

func NewAnswerCache(client *redis.Client, source app.AnswerKeySource, ttl time.Duration) *AnswerCache {
	return &AnswerCache{
		client: client,
		source: source,
		ttl:    ttl,
	}
}

func (c *AnswerCache) AnswerKey(ctx context.Context, quizID string) (app.AnswerKey, error) {
	k := c.cacheKey(quizID)

	fields, err := c.client.HGetAll(ctx, k).Result()
	if err == nil && len(fields) > 0 {
		if key, ok := parseKey(fields); ok {
			return key, nil
		}
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		fields, err := c.client.HGetAll(ctx, k).Result()
		if err == nil && len(fields) > 0 {
			if key, ok := parseKey(fields); ok {
				return key, nil
			}
		}

		key, err := c.source.AnswerKey(ctx, quizID)
		if err != nil {
			return app.AnswerKey{}, err
		}

		values := map[string]interface{}{
			"title": key.Title,
			"n":     len(key.Answers),
		}
		for i := range key.Answers {
			values["a"+strconv.Itoa(i)] = key.Answers[i]
			values["o"+strconv.Itoa(i)] = key.OptionCounts[i]
		}

		pipe := c.client.Pipeline()
		pipe.HSet(ctx, k, values)
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, k, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return key, nil
	})
	if err != nil {
		return app.AnswerKey{}, err
	}
	return result.(app.AnswerKey), nil
}

func (c *AnswerCache) cacheKey(quizID string) string {
	return "quiz:" + quizID + ":key"
}

func parseKey(fields map[string]string) (app.AnswerKey, bool) {
	n, err := strconv.Atoi(fields["n"])
	if err != nil || n <= 0 {
		return app.AnswerKey{}, false
	}
	key := app.AnswerKey{
		Title:        fields["title"],
		Answers:      make([]int, n),
		OptionCounts: make([]int, n),
	}
	for i := 0; i < n; i++ {
		a, err := strconv.Atoi(fields["a"+strconv.Itoa(i)])
		if err != nil {
			return app.AnswerKey{}, false
		}
		o, err := strconv.Atoi(fields["o"+strconv.Itoa(i)])
		if err != nil {
			return app.AnswerKey{}, false
		}
		key.Answers[i] = a
		key.OptionCounts[i] = o
	}
	return key, true
}

// ttlWithJitter may be called from concurrent singleflight fills for
// distinct quiz IDs, so it uses the lock-protected global rand.
func (c *AnswerCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
