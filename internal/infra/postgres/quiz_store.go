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

// QuizStore persists quiz documents as JSONB rows.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) Create(ctx context.Context, quiz *domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO quizzes (id, data) VALUES ($1, $2)`, quiz.ID, data); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) Get(ctx context.Context, id string) (domain.Quiz, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return unmarshalQuiz(raw)
}

func (s *QuizStore) List(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM quizzes ORDER BY data->>'createdAt', id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.Quiz
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quiz, err := unmarshalQuiz(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, quiz)
	}
	return out, rows.Err()
}

// AppendAttempt performs the check-and-append inside one transaction. The
// row lock serializes concurrent submissions for the same quiz, so two
// near-simultaneous submissions can never both pass the limit check.
func (s *QuizStore) AppendAttempt(ctx context.Context, quizID string, attempt domain.AttemptRecord, maxPerUser int) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1 FOR UPDATE`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrQuizNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lock quiz: %w", err)
	}

	quiz, err := unmarshalQuiz(raw)
	if err != nil {
		return 0, err
	}

	used := 0
	for _, a := range quiz.Attempts {
		if a.UserID == attempt.UserID {
			used++
		}
	}
	if used >= maxPerUser {
		return 0, &domain.AttemptLimitError{AttemptsUsed: used, MaxAttempts: maxPerUser}
	}

	quiz.Attempts = append(quiz.Attempts, attempt)
	data, err := json.Marshal(quiz)
	if err != nil {
		return 0, fmt.Errorf("marshal quiz: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE quizzes SET data=$2 WHERE id=$1`, quizID, data); err != nil {
		return 0, fmt.Errorf("update quiz: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return used + 1, nil
}

func unmarshalQuiz(raw []byte) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}
