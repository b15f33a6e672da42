package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vaibha-v7/SIH/internal/app"
)

// AnswerCache caches scoring keys with TTL to avoid re-reading quiz
// documents on every submission. Attempt data never passes through here.
type AnswerCache struct {
	source app.AnswerKeySource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedKey
}

type cachedKey struct {
	key       app.AnswerKey
	expiresAt time.Time
}

func NewAnswerCache(source app.AnswerKeySource, ttl time.Duration) *AnswerCache {
	return &AnswerCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		cache:  make(map[string]cachedKey),
	}
}

func (c *AnswerCache) AnswerKey(ctx context.Context, quizID string) (app.AnswerKey, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.key, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.key, nil
		}
		c.mu.RUnlock()

		key, err := c.source.AnswerKey(ctx, quizID)
		if err != nil {
			return app.AnswerKey{}, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedKey{
			key:       key,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return app.AnswerKey{}, err
	}
	return result.(app.AnswerKey), nil
}

// ttlWithJitter adds up to 10% jitter to spread expirations. It uses the
// lock-protected global rand so concurrent fills stay safe.
func (c *AnswerCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
