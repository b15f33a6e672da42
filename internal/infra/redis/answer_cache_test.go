package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/vaibha-v7/SIH/internal/app"
)

type staticKeySource struct {
	key app.AnswerKey
}

func (s staticKeySource) AnswerKey(_ context.Context, _ string) (app.AnswerKey, error) {
	return s.key, nil
}

type countingKeySource struct {
	calls int
	key   app.AnswerKey
}

func (s *countingKeySource) AnswerKey(_ context.Context, _ string) (app.AnswerKey, error) {
	s.calls++
	return s.key, nil
}

func TestAnswerCacheFillsAndServesHash(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := &countingKeySource{key: app.AnswerKey{
		Title:        "Go Basics",
		Answers:      []int{1, 0, 2},
		OptionCounts: []int{3, 3, 3},
	}}
	cache := NewAnswerCache(client, source, 10*time.Minute)

	key, err := cache.AnswerKey(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if key.Title != "Go Basics" || len(key.Answers) != 3 || key.Answers[2] != 2 {
		t.Fatalf("unexpected key: %+v", key)
	}
	if !mr.Exists("quiz:quiz-1:key") {
		t.Fatalf("expected cache hash to be written")
	}

	for i := 0; i < 3; i++ {
		if _, err := cache.AnswerKey(ctx, "quiz-1"); err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
	}
	if source.calls != 1 {
		t.Fatalf("expected a single source read, got %d", source.calls)
	}
}

func TestAnswerCacheRefillsAfterExpiry(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := &countingKeySource{key: app.AnswerKey{
		Title:        "Go Basics",
		Answers:      []int{1},
		OptionCounts: []int{2},
	}}
	cache := NewAnswerCache(client, source, 10*time.Minute)

	if _, err := cache.AnswerKey(ctx, "quiz-1"); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	// TTL is at most ttl plus 10% jitter.
	mr.FastForward(12 * time.Minute)
	if mr.Exists("quiz:quiz-1:key") {
		t.Fatalf("expected cache hash to expire")
	}

	if _, err := cache.AnswerKey(ctx, "quiz-1"); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected refill after expiry, got %d source reads", source.calls)
	}
}

func TestAnswerCacheConcurrentFills(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewAnswerCache(client, staticKeySource{key: app.AnswerKey{
		Title:        "Go Basics",
		Answers:      []int{1},
		OptionCounts: []int{2},
	}}, 10*time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := cache.AnswerKey(ctx, fmt.Sprintf("quiz-%d", i)); err != nil {
				t.Errorf("lookup failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 32; i++ {
		if !mr.Exists(fmt.Sprintf("quiz:quiz-%d:key", i)) {
			t.Fatalf("expected cache hash for quiz-%d", i)
		}
	}
}
