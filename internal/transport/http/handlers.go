package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/vaibha-v7/SIH/internal/app"
	"github.com/vaibha-v7/SIH/internal/domain"
)

// Handler exposes the application use cases over HTTP.
type Handler struct {
	auth    *app.AuthService
	quizzes *app.QuizService
	quotes  *app.QuoteService
	feed    *app.ProgressFeed
}

func NewHandler(auth *app.AuthService, quizzes *app.QuizService, quotes *app.QuoteService, feed *app.ProgressFeed) *Handler {
	return &Handler{auth: auth, quizzes: quizzes, quotes: quotes, feed: feed}
}

// Routes builds the service mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)

	mux.HandleFunc("GET /profile", withAuth(h.auth, h.getProfile))
	mux.HandleFunc("PUT /profile", withAuth(h.auth, h.updateProfile))

	mux.HandleFunc("POST /quiz", withRole(h.auth, domain.RoleTeacher, h.createQuiz))
	mux.HandleFunc("GET /quiz", h.listQuizzes)
	mux.HandleFunc("GET /quiz/{id}", h.getQuiz)
	mux.HandleFunc("POST /quiz/{id}/attempt", withAuth(h.auth, h.submitAttempt))
	mux.HandleFunc("GET /quiz/{id}/attempts", withAuth(h.auth, h.attemptStatus))

	mux.HandleFunc("GET /admin/student-progress", withRole(h.auth, domain.RoleTeacher, h.studentProgress))
	mux.HandleFunc("GET /admin/quiz-stats", withRole(h.auth, domain.RoleTeacher, h.quizStats))

	mux.HandleFunc("GET /quote", h.quoteOfTheDay)
	mux.HandleFunc("POST /quote", h.addQuote)

	mux.HandleFunc("GET /ws/progress", withRole(h.auth, domain.RoleTeacher, h.progressWS))

	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !decode(w, r, &body) {
		return
	}
	user, err := h.auth.Register(r.Context(), body.Username, body.Email, body.Password, body.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "user registered successfully",
		"role":    user.Role,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	token, user, err := h.auth.Login(r.Context(), body.Email, body.Password, clientOrigin(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"role":  user.Role,
	})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Profile(r.Context(), callerID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"name":     user.Profile.Name,
		"bio":      user.Profile.Bio,
		"avatar":   user.Profile.Avatar,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var profile domain.Profile
	if !decode(w, r, &profile) {
		return
	}
	user, err := h.auth.UpdateProfile(r.Context(), callerID(r.Context()), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Profile)
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title     string            `json:"title"`
		Questions []domain.Question `json:"questions"`
	}
	if !decode(w, r, &body) {
		return
	}
	quiz, err := h.quizzes.CreateQuiz(r.Context(), body.Title, body.Questions, callerID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// quizView is the public shape of a quiz: correct answer indices and other
// students' attempts are not exposed.
type quizView struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Questions []questionView `json:"questions"`
	CreatedBy string         `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
}

type questionView struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

func viewOf(quiz domain.Quiz) quizView {
	view := quizView{
		ID:        quiz.ID,
		Title:     quiz.Title,
		Questions: make([]questionView, len(quiz.Questions)),
		CreatedBy: quiz.CreatedBy,
		CreatedAt: quiz.CreatedAt,
	}
	for i, q := range quiz.Questions {
		view.Questions[i] = questionView{Text: q.Text, Options: q.Options}
	}
	return view
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]quizView, 0, len(quizzes))
	for _, quiz := range quizzes {
		views = append(views, viewOf(quiz))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.GetQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(quiz))
}

func (h *Handler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Answers []int `json:"answers"`
	}
	if !decode(w, r, &body) {
		return
	}
	result, err := h.quizzes.SubmitAttempt(r.Context(), r.PathValue("id"), callerID(r.Context()), body.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) attemptStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.quizzes.AttemptStatus(r.Context(), r.PathValue("id"), callerID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) studentProgress(w http.ResponseWriter, r *http.Request) {
	entries, err := h.quizzes.StudentProgress(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.ProgressEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) quizStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.quizzes.QuizStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) quoteOfTheDay(w http.ResponseWriter, r *http.Request) {
	quote, err := h.quotes.QuoteOfTheDay(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) addQuote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text   string    `json:"text"`
		Author string    `json:"author"`
		Date   time.Time `json:"date"`
	}
	if !decode(w, r, &body) {
		return
	}
	quote, err := h.quotes.AddQuote(r.Context(), body.Text, body.Author, body.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quote)
}

type errorBody struct {
	Error            string     `json:"error"`
	AttemptsLeft     *int       `json:"attemptsLeft,omitempty"`
	LockedUntil      *time.Time `json:"lockedUntil,omitempty"`
	RemainingMinutes int        `json:"remainingMinutes,omitempty"`
	AttemptsUsed     int        `json:"attemptsUsed,omitempty"`
	MaxAttempts      int        `json:"maxAttempts,omitempty"`
}

// writeError maps the domain error taxonomy onto HTTP statuses, always
// carrying the structured fields the caller needs to render a precise
// message.
func writeError(w http.ResponseWriter, err error) {
	var locked *domain.LockedOutError
	if errors.As(err, &locked) {
		zero := 0
		writeJSON(w, http.StatusTooManyRequests, errorBody{
			Error:            locked.Error(),
			AttemptsLeft:     &zero,
			LockedUntil:      &locked.LockedUntil,
			RemainingMinutes: locked.RemainingMinutes,
		})
		return
	}
	var cred *domain.CredentialError
	if errors.As(err, &cred) {
		left := cred.AttemptsLeft
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:        cred.Error(),
			AttemptsLeft: &left,
		})
		return
	}
	var limit *domain.AttemptLimitError
	if errors.As(err, &limit) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{
			Error:        limit.Error(),
			AttemptsUsed: limit.AttemptsUsed,
			MaxAttempts:  limit.MaxAttempts,
		})
		return
	}
	var invalid *domain.InvalidAnswerSetError
	if errors.As(err, &invalid) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: invalid.Error()})
		return
	}

	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrQuoteNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrEmptyQuiz),
		errors.Is(err, domain.ErrInvalidQuestion):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "cannot parse request body"})
		return false
	}
	return true
}
