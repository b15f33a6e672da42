package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vaibha-v7/SIH/internal/domain"
)

// QuoteStore persists quote-of-the-day entries.
type QuoteStore interface {
	Add(ctx context.Context, quote *domain.Quote) error
	// ByDay returns the quote dated within the calendar day containing day.
	ByDay(ctx context.Context, day time.Time) (domain.Quote, error)
}

// QuoteService serves the quote of the day.
type QuoteService struct {
	quotes QuoteStore
	now    func() time.Time
}

func NewQuoteService(quotes QuoteStore) *QuoteService {
	return &QuoteService{quotes: quotes, now: time.Now}
}

// QuoteOfTheDay returns today's quote, or domain.ErrQuoteNotFound.
func (s *QuoteService) QuoteOfTheDay(ctx context.Context) (domain.Quote, error) {
	return s.quotes.ByDay(ctx, s.now())
}

// AddQuote stores a quote. Date defaults to now when unset.
func (s *QuoteService) AddQuote(ctx context.Context, text, author string, date time.Time) (domain.Quote, error) {
	if date.IsZero() {
		date = s.now()
	}
	quote := domain.Quote{
		ID:     uuid.NewString(),
		Text:   text,
		Author: author,
		Date:   date,
	}
	if err := s.quotes.Add(ctx, &quote); err != nil {
		return domain.Quote{}, err
	}
	return quote, nil
}
