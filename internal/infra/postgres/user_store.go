package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/vaibha-v7/SIH/internal/domain"
)

// UserStore persists user accounts.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`, user.Email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.ErrEmailTaken
	}

	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, profile, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role, profile, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.one(ctx, `SELECT id, username, email, password_hash, role, profile, created_at FROM users WHERE email=$1`, email)
}

func (s *UserStore) ByID(ctx context.Context, id string) (domain.User, error) {
	return s.one(ctx, `SELECT id, username, email, password_hash, role, profile, created_at FROM users WHERE id=$1`, id)
}

func (s *UserStore) UpdateProfile(ctx context.Context, id string, profile domain.Profile) (domain.User, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal profile: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `UPDATE users SET profile=$2 WHERE id=$1`, id, data)
	if err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.ByID(ctx, id)
}

func (s *UserStore) one(ctx context.Context, query string, arg interface{}) (domain.User, error) {
	var user domain.User
	var profile []byte
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &profile, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &user.Profile); err != nil {
			return domain.User{}, fmt.Errorf("unmarshal profile: %w", err)
		}
	}
	return user, nil
}
