package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vaibha-v7/SIH/internal/domain"
)

// QuizStore persists quiz documents. AppendAttempt must be atomic with the
// per-user attempt-count check: two concurrent submissions for the same
// (user, quiz) can never both pass the limit.
type QuizStore interface {
	Create(ctx context.Context, quiz *domain.Quiz) error
	Get(ctx context.Context, id string) (domain.Quiz, error)
	List(ctx context.Context) ([]domain.Quiz, error)
	// AppendAttempt appends the record and returns its 1-based attempt
	// number for that user, or *domain.AttemptLimitError when the user has
	// already used maxPerUser attempts.
	AppendAttempt(ctx context.Context, quizID string, attempt domain.AttemptRecord, maxPerUser int) (int, error)
}

// AnswerKey is the scoring key for one quiz: the correct option index and
// option count per question, in question order. Attempt data is never part
// of the key, so it is safe to cache.
type AnswerKey struct {
	Title        string
	Answers      []int
	OptionCounts []int
}

// AnswerKeySource resolves the scoring key for a quiz. Implementations may
// cache (memory or Redis) in front of the durable store.
type AnswerKeySource interface {
	AnswerKey(ctx context.Context, quizID string) (AnswerKey, error)
}

// AnswerKeyFromQuiz derives the scoring key from a quiz document.
func AnswerKeyFromQuiz(quiz domain.Quiz) AnswerKey {
	key := AnswerKey{
		Title:        quiz.Title,
		Answers:      make([]int, len(quiz.Questions)),
		OptionCounts: make([]int, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		key.Answers[i] = q.Answer
		key.OptionCounts[i] = len(q.Options)
	}
	return key
}

// StoreAnswerKeys is the uncached AnswerKeySource reading straight from the
// quiz store.
type StoreAnswerKeys struct {
	Store QuizStore
}

func (s StoreAnswerKeys) AnswerKey(ctx context.Context, quizID string) (AnswerKey, error) {
	quiz, err := s.Store.Get(ctx, quizID)
	if err != nil {
		return AnswerKey{}, err
	}
	return AnswerKeyFromQuiz(quiz), nil
}

// QuizService contains the quiz authoring, attempt, and reporting use cases.
type QuizService struct {
	quizzes QuizStore
	users   UserStore
	answers AnswerKeySource
	feed    *ProgressFeed
	now     func() time.Time
}

func NewQuizService(quizzes QuizStore, users UserStore, answers AnswerKeySource, feed *ProgressFeed) *QuizService {
	if answers == nil {
		answers = StoreAnswerKeys{Store: quizzes}
	}
	return &QuizService{
		quizzes: quizzes,
		users:   users,
		answers: answers,
		feed:    feed,
		now:     time.Now,
	}
}

// CreateQuiz validates and stores a new quiz owned by createdBy.
func (s *QuizService) CreateQuiz(ctx context.Context, title string, questions []domain.Question, createdBy string) (domain.Quiz, error) {
	if len(questions) == 0 {
		return domain.Quiz{}, domain.ErrEmptyQuiz
	}
	for _, q := range questions {
		if len(q.Options) < 2 || q.Answer < 0 || q.Answer >= len(q.Options) {
			return domain.Quiz{}, domain.ErrInvalidQuestion
		}
	}

	quiz := domain.Quiz{
		ID:        uuid.NewString(),
		Title:     title,
		Questions: questions,
		CreatedBy: createdBy,
		Attempts:  []domain.AttemptRecord{},
		CreatedAt: s.now(),
	}
	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// GetQuiz returns the full quiz document.
func (s *QuizService) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	return s.quizzes.Get(ctx, id)
}

// ListQuizzes returns all quizzes.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.List(ctx)
}

// SubmitAttempt validates, scores, and records one submission. The attempt
// limit is checked before the answer set; a full answer set is required:
// one answer per question, each within the option range of its question.
// The final limit check and the append happen as one atomic store
// operation.
func (s *QuizService) SubmitAttempt(ctx context.Context, quizID, userID string, answers []int) (domain.AttemptResult, error) {
	// The attempt limit is checked before the answer set is even looked at:
	// a maxed-out user is told the limit is exhausted, not that the
	// submission is malformed. AppendAttempt re-checks authoritatively.
	status, err := s.AttemptStatus(ctx, quizID, userID)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	if status.AttemptsRemaining == 0 {
		return domain.AttemptResult{}, &domain.AttemptLimitError{
			AttemptsUsed: status.AttemptsUsed,
			MaxAttempts:  domain.MaxAttemptsPerQuiz,
		}
	}

	key, err := s.answers.AnswerKey(ctx, quizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	if len(answers) != len(key.Answers) {
		return domain.AttemptResult{}, &domain.InvalidAnswerSetError{
			Reason: fmt.Sprintf("expected %d answers, got %d", len(key.Answers), len(answers)),
		}
	}
	for i, a := range answers {
		if a < 0 || a >= key.OptionCounts[i] {
			return domain.AttemptResult{}, &domain.InvalidAnswerSetError{
				Reason: fmt.Sprintf("answer %d is out of range for question %d", a, i+1),
			}
		}
	}

	score := 0
	for i, a := range answers {
		if a == key.Answers[i] {
			score++
		}
	}

	attempt := domain.AttemptRecord{
		UserID:         userID,
		Score:          score,
		TotalQuestions: len(key.Answers),
		Answers:        answers,
		AttemptedAt:    s.now(),
	}
	attemptNumber, err := s.quizzes.AppendAttempt(ctx, quizID, attempt, domain.MaxAttemptsPerQuiz)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	result := domain.AttemptResult{
		Score:             score,
		TotalQuestions:    attempt.TotalQuestions,
		Percentage:        percentage(score, attempt.TotalQuestions),
		AttemptNumber:     attemptNumber,
		AttemptsRemaining: domain.MaxAttemptsPerQuiz - attemptNumber,
	}

	if s.feed != nil {
		s.feed.Publish(domain.AttemptEvent{
			QuizID:         quizID,
			QuizTitle:      key.Title,
			UserID:         userID,
			Score:          score,
			TotalQuestions: result.TotalQuestions,
			Percentage:     result.Percentage,
			AttemptNumber:  attemptNumber,
			AttemptedAt:    attempt.AttemptedAt,
		})
	}
	return result, nil
}

// AttemptStatus reports the user's attempts on a quiz and how many remain.
func (s *QuizService) AttemptStatus(ctx context.Context, quizID, userID string) (domain.AttemptStatus, error) {
	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return domain.AttemptStatus{}, err
	}

	attempts := quiz.AttemptsBy(userID)
	remaining := domain.MaxAttemptsPerQuiz - len(attempts)
	if remaining < 0 {
		remaining = 0
	}
	if attempts == nil {
		attempts = []domain.AttemptRecord{}
	}
	return domain.AttemptStatus{
		Attempts:          attempts,
		AttemptsUsed:      len(attempts),
		AttemptsRemaining: remaining,
	}, nil
}

// QuizStats aggregates attempt data across all quizzes for teachers.
// AverageScore is the mean score ratio over all attempts, as a rounded
// percentage, and 0 when a quiz has no attempts.
func (s *QuizService) QuizStats(ctx context.Context) ([]domain.QuizStats, error) {
	quizzes, err := s.quizzes.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]domain.QuizStats, 0, len(quizzes))
	for _, quiz := range quizzes {
		unique := make(map[string]struct{})
		ratioSum := 0.0
		for _, a := range quiz.Attempts {
			unique[a.UserID] = struct{}{}
			if a.TotalQuestions > 0 {
				ratioSum += float64(a.Score) / float64(a.TotalQuestions)
			}
		}
		avg := 0
		if len(quiz.Attempts) > 0 {
			avg = int(math.Round(ratioSum / float64(len(quiz.Attempts)) * 100))
		}
		stats = append(stats, domain.QuizStats{
			QuizID:         quiz.ID,
			Title:          quiz.Title,
			TotalQuestions: len(quiz.Questions),
			TotalAttempts:  len(quiz.Attempts),
			UniqueStudents: len(unique),
			AverageScore:   avg,
			CreatedBy:      quiz.CreatedBy,
			CreatedAt:      quiz.CreatedAt,
		})
	}
	return stats, nil
}

// StudentProgress flattens every attempt across all quizzes for the teacher
// dashboard, newest first. Attempt numbers are the 1-based position within
// the user's chronological attempts on that quiz.
func (s *QuizService) StudentProgress(ctx context.Context) ([]domain.ProgressEntry, error) {
	quizzes, err := s.quizzes.List(ctx)
	if err != nil {
		return nil, err
	}

	var entries []domain.ProgressEntry
	for _, quiz := range quizzes {
		perUser := make(map[string]int)
		for _, a := range quiz.Attempts {
			perUser[a.UserID]++
			entry := domain.ProgressEntry{
				QuizID:         quiz.ID,
				QuizTitle:      quiz.Title,
				UserID:         a.UserID,
				StudentName:    "Unknown",
				StudentEmail:   "Unknown",
				Score:          a.Score,
				TotalQuestions: a.TotalQuestions,
				Percentage:     percentage(a.Score, a.TotalQuestions),
				AttemptNumber:  perUser[a.UserID],
				AttemptedAt:    a.AttemptedAt,
			}
			if user, err := s.users.ByID(ctx, a.UserID); err == nil {
				entry.StudentName = user.Username
				entry.StudentEmail = user.Email
			} else if !errors.Is(err, domain.ErrUserNotFound) {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AttemptedAt.After(entries[j].AttemptedAt)
	})
	return entries, nil
}

func percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
