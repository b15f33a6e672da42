package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vaibha-v7/SIH/internal/app"
)

// ThrottleStore is the in-memory implementation of app.ThrottleStore: a
// mutex-guarded map suited to single-instance deployments and tests. State
// is lost on process restart. Records whose lockout window has elapsed are
// dropped lazily on access; there is no background sweeper.
type ThrottleStore struct {
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	records map[string]app.ThrottleRecord
}

func NewThrottleStore(window time.Duration) *ThrottleStore {
	return &ThrottleStore{
		window:  window,
		clock:   time.Now,
		records: make(map[string]app.ThrottleRecord),
	}
}

// NewThrottleStoreWithClock is test-only for deterministic expiry.
func NewThrottleStoreWithClock(window time.Duration, clock func() time.Time) *ThrottleStore {
	store := NewThrottleStore(window)
	store.clock = clock
	return store
}

func (s *ThrottleStore) Get(_ context.Context, key string) (app.ThrottleRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return app.ThrottleRecord{}, false, nil
	}
	if s.expired(rec) {
		delete(s.records, key)
		return app.ThrottleRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *ThrottleStore) Increment(_ context.Context, key string, now time.Time) (app.ThrottleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || s.expired(rec) {
		rec = app.ThrottleRecord{}
	}
	rec.FailureCount++
	rec.LastFailure = now
	s.records[key] = rec
	return rec, nil
}

func (s *ThrottleStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func (s *ThrottleStore) expired(rec app.ThrottleRecord) bool {
	return s.clock().Sub(rec.LastFailure) >= s.window
}
