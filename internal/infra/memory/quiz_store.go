package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vaibha-v7/SIH/internal/app"
	"github.com/vaibha-v7/SIH/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore. The store
// mutex serializes AppendAttempt, so the attempt-limit check and the append
// are atomic with respect to concurrent submissions.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

var _ app.QuizStore = (*QuizStore)(nil)

func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]domain.Quiz)}
}

func (s *QuizStore) Create(_ context.Context, quiz *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = cloneQuiz(*quiz)
	return nil
}

func (s *QuizStore) Get(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (s *QuizStore) List(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		out = append(out, cloneQuiz(quiz))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *QuizStore) AppendAttempt(_ context.Context, quizID string, attempt domain.AttemptRecord, maxPerUser int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[quizID]
	if !ok {
		return 0, domain.ErrQuizNotFound
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
	s.quizzes[quizID] = quiz
	return used + 1, nil
}

func cloneQuiz(quiz domain.Quiz) domain.Quiz {
	out := quiz
	out.Questions = append([]domain.Question(nil), quiz.Questions...)
	out.Attempts = append([]domain.AttemptRecord(nil), quiz.Attempts...)
	return out
}
