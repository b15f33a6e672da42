package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vaibha-v7/SIH/internal/domain"
)

func TestQuoteStoreByDay(t *testing.T) {
	ctx := context.Background()
	store := NewQuoteStore()

	day := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)
	quotes := []domain.Quote{
		{ID: "q1", Text: "old", Date: day.AddDate(0, 0, -1)},
		{ID: "q2", Text: "morning", Date: day},
		{ID: "q3", Text: "evening", Date: day.Add(8 * time.Hour)},
	}
	for i := range quotes {
		if err := store.Add(ctx, &quotes[i]); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	got, err := store.ByDay(ctx, day.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.ID != "q3" {
		t.Fatalf("expected most recently added quote for the day, got %+v", got)
	}

	if _, err := store.ByDay(ctx, day.AddDate(0, 0, 5)); !errors.Is(err, domain.ErrQuoteNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
