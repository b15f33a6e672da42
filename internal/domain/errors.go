package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrQuizNotFound indicates the quiz document could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuoteNotFound indicates no quote is stored for the requested day.
	ErrQuoteNotFound = errors.New("quote not found")
	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidRole is returned for roles outside {teacher, student}.
	ErrInvalidRole = errors.New("invalid role: must be either teacher or student")
	// ErrEmptyQuiz rejects quiz creation without questions.
	ErrEmptyQuiz = errors.New("quiz must contain at least one question")
	// ErrInvalidQuestion rejects questions with fewer than two options or an
	// out-of-range correct answer index.
	ErrInvalidQuestion = errors.New("question must have at least two options and a valid answer index")
)

// LockedOutError rejects a login while the throttle key is locked.
// The caller can render the remaining wait without further lookups.
type LockedOutError struct {
	RemainingMinutes int
	LockedUntil      time.Time
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("too many failed attempts, try again in %d minutes", e.RemainingMinutes)
}

// CredentialError reports a failed identity or password check together with
// how many attempts remain before lockout.
type CredentialError struct {
	Reason       string
	AttemptsLeft int
}

func (e *CredentialError) Error() string { return e.Reason }

// AttemptLimitError is terminal for a (user, quiz) pair: the attempt ceiling
// has been reached.
type AttemptLimitError struct {
	AttemptsUsed int
	MaxAttempts  int
}

func (e *AttemptLimitError) Error() string {
	return fmt.Sprintf("all %d attempts for this quiz have been used", e.MaxAttempts)
}

// InvalidAnswerSetError rejects a malformed submission: wrong answer count
// or an answer index outside the question's option range.
type InvalidAnswerSetError struct {
	Reason string
}

func (e *InvalidAnswerSetError) Error() string { return e.Reason }
