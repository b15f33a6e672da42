package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/vaibha-v7/SIH/internal/domain"
)

func TestUserStoreEnforcesUniqueEmail(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	alice := domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	if err := store.Create(ctx, &alice); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	dup := domain.User{ID: "u2", Username: "alice2", Email: "alice@example.com"}
	if err := store.Create(ctx, &dup); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email conflict, got %v", err)
	}
}

func TestUserStoreLookups(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	alice := domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	if err := store.Create(ctx, &alice); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byEmail, err := store.ByEmail(ctx, "alice@example.com")
	if err != nil || byEmail.ID != "u1" {
		t.Fatalf("unexpected lookup result: %+v err=%v", byEmail, err)
	}
	byID, err := store.ByID(ctx, "u1")
	if err != nil || byID.Email != "alice@example.com" {
		t.Fatalf("unexpected lookup result: %+v err=%v", byID, err)
	}

	if _, err := store.ByEmail(ctx, "ghost@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.ByID(ctx, "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserStoreUpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	alice := domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	if err := store.Create(ctx, &alice); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := store.UpdateProfile(ctx, "u1", domain.Profile{Name: "Alice", Bio: "Learner"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Profile.Name != "Alice" {
		t.Fatalf("unexpected profile: %+v", updated.Profile)
	}

	if _, err := store.UpdateProfile(ctx, "ghost", domain.Profile{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
