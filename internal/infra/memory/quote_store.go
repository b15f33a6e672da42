package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vaibha-v7/SIH/internal/domain"
)

// QuoteStore is an in-memory implementation of app.QuoteStore.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes []domain.Quote
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{}
}

func (s *QuoteStore) Add(_ context.Context, quote *domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append(s.quotes, *quote)
	return nil
}

// ByDay returns the most recently added quote dated within the same UTC
// calendar day as day.
func (s *QuoteStore) ByDay(_ context.Context, day time.Time) (domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	y, m, d := day.UTC().Date()
	for i := len(s.quotes) - 1; i >= 0; i-- {
		qy, qm, qd := s.quotes[i].Date.UTC().Date()
		if qy == y && qm == m && qd == d {
			return s.quotes[i], nil
		}
	}
	return domain.Quote{}, domain.ErrQuoteNotFound
}
