package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vaibha-v7/SIH/internal/app"
	"github.com/vaibha-v7/SIH/internal/domain"
	"github.com/vaibha-v7/SIH/internal/infra/memory"
)

func newTestQuizService() (*app.QuizService, app.UserStore, *app.ProgressFeed) {
	users := memory.NewUserStore()
	feed := app.NewProgressFeed()
	service := app.NewQuizService(memory.NewQuizStore(), users, nil, feed)
	return service, users, feed
}

func threeQuestionQuiz(t *testing.T, service *app.QuizService) domain.Quiz {
	t.Helper()
	quiz, err := service.CreateQuiz(context.Background(), "Go Basics", []domain.Question{
		{Text: "Which keyword declares a variable?", Options: []string{"let", "var", "def"}, Answer: 1},
		{Text: "Which type holds text?", Options: []string{"string", "rune", "byte"}, Answer: 0},
		{Text: "Which builtin grows a slice?", Options: []string{"push", "add", "append"}, Answer: 2},
	}, "teacher-1")
	if err != nil {
		t.Fatalf("create quiz failed: %v", err)
	}
	return quiz
}

func TestCreateQuizValidation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestQuizService()

	if _, err := service.CreateQuiz(ctx, "Empty", nil, "teacher-1"); !errors.Is(err, domain.ErrEmptyQuiz) {
		t.Fatalf("expected empty quiz error, got %v", err)
	}

	bad := []domain.Question{{Text: "q", Options: []string{"only one"}, Answer: 0}}
	if _, err := service.CreateQuiz(ctx, "Bad", bad, "teacher-1"); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question error, got %v", err)
	}

	bad = []domain.Question{{Text: "q", Options: []string{"a", "b"}, Answer: 2}}
	if _, err := service.CreateQuiz(ctx, "Bad", bad, "teacher-1"); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected out-of-range answer to be rejected, got %v", err)
	}
}

func TestSubmitAttemptScoresStrictly(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestQuizService()
	quiz := threeQuestionQuiz(t, service)

	result, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{1, 0, 2})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 3 || result.Percentage != 100 {
		t.Fatalf("expected perfect score, got %+v", result)
	}
	if result.AttemptNumber != 1 || result.AttemptsRemaining != 1 {
		t.Fatalf("expected first attempt with one remaining, got %+v", result)
	}

	result, err = service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{0, 0, 0})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 1 || result.Percentage != 33 {
		t.Fatalf("expected 1/3 scored as 33%%, got %+v", result)
	}
	if result.AttemptNumber != 2 || result.AttemptsRemaining != 0 {
		t.Fatalf("expected second attempt with none remaining, got %+v", result)
	}

	_, err = service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{1, 0, 2})
	var limitErr *domain.AttemptLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected attempt limit error, got %v", err)
	}
	if limitErr.AttemptsUsed != 2 || limitErr.MaxAttempts != 2 {
		t.Fatalf("unexpected limit error: %+v", limitErr)
	}

	// Another student is unaffected by the first student's limit.
	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-2", []int{1, 0, 0}); err != nil {
		t.Fatalf("submit for second student failed: %v", err)
	}
}

func TestAttemptLimitCheckedBeforeAnswerValidation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestQuizService()
	quiz := threeQuestionQuiz(t, service)

	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{1, 0, 2}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{0, 0, 0}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// A maxed-out user gets the limit error even for a malformed answer
	// set: the limit is decided before the submission is inspected.
	_, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{0, 0})
	var limitErr *domain.AttemptLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected attempt limit error for malformed set, got %v", err)
	}
	if limitErr.AttemptsUsed != 2 || limitErr.MaxAttempts != 2 {
		t.Fatalf("unexpected limit error: %+v", limitErr)
	}

	_, err = service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{1, 0, 2, 2})
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected attempt limit error for oversized set, got %v", err)
	}
}

func TestSubmitAttemptRejectsInvalidAnswerSets(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestQuizService()
	quiz := threeQuestionQuiz(t, service)

	var invalidErr *domain.InvalidAnswerSetError

	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{1, 0}); !errors.As(err, &invalidErr) {
		t.Fatalf("expected short answer set to be rejected, got %v", err)
	}
	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{1, 0, 3}); !errors.As(err, &invalidErr) {
		t.Fatalf("expected out-of-range answer to be rejected, got %v", err)
	}
	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{1, -1, 2}); !errors.As(err, &invalidErr) {
		t.Fatalf("expected negative answer to be rejected, got %v", err)
	}

	// Rejected submissions never consume an attempt.
	status, err := service.AttemptStatus(ctx, quiz.ID, "student-1")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.AttemptsUsed != 0 || status.AttemptsRemaining != 2 {
		t.Fatalf("expected no attempts consumed, got %+v", status)
	}

	if _, err := service.SubmitAttempt(ctx, "missing", "student-1", []int{0}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestAttemptStatusTracksUsage(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestQuizService()
	quiz := threeQuestionQuiz(t, service)

	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{1, 0, 2}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	status, err := service.AttemptStatus(ctx, quiz.ID, "student-1")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.AttemptsUsed != 1 || status.AttemptsRemaining != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if len(status.Attempts) != 1 || status.Attempts[0].Score != 3 {
		t.Fatalf("unexpected attempts: %+v", status.Attempts)
	}
}

func TestQuizStatsAggregatesAttempts(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestQuizService()
	quiz := threeQuestionQuiz(t, service)

	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{1, 0, 2}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{0, 0, 0}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-2", []int{1, 0, 0}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	stats, err := service.QuizStats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected stats for 1 quiz, got %d", len(stats))
	}
	s := stats[0]
	if s.TotalAttempts != 3 || s.UniqueStudents != 2 || s.TotalQuestions != 3 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	// Mean of 100%, 33.3% and 66.7% is 66.67, rounded to 67.
	if s.AverageScore != 67 {
		t.Fatalf("expected average 67, got %d", s.AverageScore)
	}

	empty, err := service.CreateQuiz(ctx, "Untouched", []domain.Question{
		{Text: "q", Options: []string{"a", "b"}, Answer: 0},
	}, "teacher-1")
	if err != nil {
		t.Fatalf("create quiz failed: %v", err)
	}
	stats, err = service.QuizStats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	for _, s := range stats {
		if s.QuizID == empty.ID && s.AverageScore != 0 {
			t.Fatalf("expected zero average for quiz with no attempts, got %d", s.AverageScore)
		}
	}
}

func TestStudentProgressResolvesNames(t *testing.T) {
	ctx := context.Background()
	service, users, _ := newTestQuizService()
	quiz := threeQuestionQuiz(t, service)

	student := domain.User{ID: "student-1", Username: "alice", Email: "alice@example.com", Role: domain.RoleStudent}
	if err := users.Create(ctx, &student); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{1, 0, 2}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{0, 0, 0}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := service.SubmitAttempt(ctx, quiz.ID, "ghost", []int{0, 0, 0}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	entries, err := service.StudentProgress(ctx)
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	byUser := map[string][]domain.ProgressEntry{}
	for _, e := range entries {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}
	for _, e := range byUser["student-1"] {
		if e.StudentName != "alice" || e.StudentEmail != "alice@example.com" {
			t.Fatalf("expected resolved student identity, got %+v", e)
		}
	}
	if byUser["ghost"][0].StudentName != "Unknown" {
		t.Fatalf("expected unknown student fallback, got %+v", byUser["ghost"][0])
	}

	nums := map[int]bool{}
	for _, e := range byUser["student-1"] {
		nums[e.AttemptNumber] = true
	}
	if !nums[1] || !nums[2] {
		t.Fatalf("expected attempt numbers 1 and 2, got %+v", byUser["student-1"])
	}
}

func TestSubmitAttemptPublishesProgressEvent(t *testing.T) {
	ctx := context.Background()
	service, _, feed := newTestQuizService()
	quiz := threeQuestionQuiz(t, service)

	ch, cancel := feed.Subscribe()
	defer cancel()

	if _, err := service.SubmitAttempt(ctx, quiz.ID, "student-1", []int{1, 0, 2}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	event := <-ch
	if event.QuizID != quiz.ID || event.UserID != "student-1" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Score != 3 || event.Percentage != 100 || event.AttemptNumber != 1 {
		t.Fatalf("unexpected event payload: %+v", event)
	}
	if event.QuizTitle != "Go Basics" {
		t.Fatalf("expected quiz title in event, got %q", event.QuizTitle)
	}
}
