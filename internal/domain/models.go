package domain

import "time"

// Roles recognized by the platform.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// MaxAttemptsPerQuiz caps accepted attempts per (user, quiz).
const MaxAttemptsPerQuiz = 2

// ValidRole reports whether role is one of the recognized roles.
func ValidRole(role string) bool {
	return role == RoleTeacher || role == RoleStudent
}

// Profile holds the editable part of a user account.
type Profile struct {
	Name   string `json:"name"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

// User is a platform identity. PasswordHash is a bcrypt hash and is never
// serialized to clients.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Question models an MCQ question. Answer is the index of the correct
// option and must stay within range of Options.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// AttemptRecord is the immutable stored outcome of one scored submission.
// Records are appended in submission order and never mutated afterwards.
type AttemptRecord struct {
	UserID         string    `json:"userId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Answers        []int     `json:"answers"`
	AttemptedAt    time.Time `json:"attemptedAt"`
}

// Quiz is the stored quiz document, attempts included.
type Quiz struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Questions []Question      `json:"questions"`
	CreatedBy string          `json:"createdBy"`
	Attempts  []AttemptRecord `json:"attempts"`
	CreatedAt time.Time       `json:"createdAt"`
}

// AttemptsBy returns the user's attempts in submission order.
func (q Quiz) AttemptsBy(userID string) []AttemptRecord {
	var out []AttemptRecord
	for _, a := range q.Attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

// AttemptResult summarizes one accepted submission.
type AttemptResult struct {
	Score             int `json:"score"`
	TotalQuestions    int `json:"totalQuestions"`
	Percentage        int `json:"percentage"`
	AttemptNumber     int `json:"attemptNumber"`
	AttemptsRemaining int `json:"attemptsRemaining"`
}

// AttemptStatus is the read-only view of a user's standing on a quiz.
type AttemptStatus struct {
	Attempts          []AttemptRecord `json:"attempts"`
	AttemptsUsed      int             `json:"attemptsUsed"`
	AttemptsRemaining int             `json:"attemptsRemaining"`
}

// LockoutStatus is the outcome of checking the throttle before a login.
type LockoutStatus struct {
	Locked           bool
	AttemptsLeft     int
	RemainingMinutes int
	LockedUntil      time.Time
}

// FailureOutcome is the outcome of recording a failed login.
type FailureOutcome struct {
	Locked       bool
	AttemptsLeft int
	LockedUntil  time.Time
}

// QuizStats aggregates attempt data for one quiz.
type QuizStats struct {
	QuizID         string    `json:"quizId"`
	Title          string    `json:"quizTitle"`
	TotalQuestions int       `json:"totalQuestions"`
	TotalAttempts  int       `json:"totalAttempts"`
	UniqueStudents int       `json:"uniqueStudents"`
	AverageScore   int       `json:"averageScore"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ProgressEntry is one attempt flattened for teacher-facing reporting.
type ProgressEntry struct {
	QuizID         string    `json:"quizId"`
	QuizTitle      string    `json:"quizTitle"`
	UserID         string    `json:"userId"`
	StudentName    string    `json:"studentName"`
	StudentEmail   string    `json:"studentEmail"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	AttemptNumber  int       `json:"attemptNumber"`
	AttemptedAt    time.Time `json:"attemptedAt"`
}

// AttemptEvent is published on the progress feed after each accepted
// submission.
type AttemptEvent struct {
	QuizID         string    `json:"quizId"`
	QuizTitle      string    `json:"quizTitle"`
	UserID         string    `json:"userId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	AttemptNumber  int       `json:"attemptNumber"`
	AttemptedAt    time.Time `json:"attemptedAt"`
}

// Quote is a quote-of-the-day entry.
type Quote struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Author string    `json:"author"`
	Date   time.Time `json:"date"`
}
