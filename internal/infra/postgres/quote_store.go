package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/vaibha-v7/SIH/internal/domain"
)

// QuoteStore persists quote-of-the-day entries.
type QuoteStore struct {
	pool *pgxpool.Pool
}

func NewQuoteStore(pool *pgxpool.Pool) *QuoteStore {
	return &QuoteStore{pool: pool}
}

func (s *QuoteStore) Add(ctx context.Context, quote *domain.Quote) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quotes (id, text, author, quote_date) VALUES ($1, $2, $3, $4)`,
		quote.ID, quote.Text, quote.Author, quote.Date)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (s *QuoteStore) ByDay(ctx context.Context, day time.Time) (domain.Quote, error) {
	var quote domain.Quote
	err := s.pool.QueryRow(ctx,
		`SELECT id, text, author, quote_date FROM quotes
		 WHERE quote_date::date = $1::date
		 ORDER BY quote_date DESC LIMIT 1`,
		day.UTC()).Scan(&quote.ID, &quote.Text, &quote.Author, &quote.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	if err != nil {
		return domain.Quote{}, fmt.Errorf("load quote: %w", err)
	}
	return quote, nil
}
