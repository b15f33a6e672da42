package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaibha-v7/SIH/internal/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	ByEmail(ctx context.Context, email string) (domain.User, error)
	ByID(ctx context.Context, id string) (domain.User, error)
	UpdateProfile(ctx context.Context, id string, profile domain.Profile) (domain.User, error)
}

// AuthService implements registration, throttled login, and profile CRUD.
type AuthService struct {
	users    UserStore
	throttle *LoginThrottle
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(users UserStore, throttle *LoginThrottle, secret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		throttle: throttle,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Register creates a new account. Role defaults to student when empty.
func (s *AuthService) Register(ctx context.Context, username, email, password, role string) (domain.User, error) {
	if role == "" {
		role = domain.RoleStudent
	}
	if !domain.ValidRole(role) {
		return domain.User{}, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login authenticates a user. The throttle is consulted before any
// credential check: a locked key is rejected outright and does not count as
// another failure. Both unknown-identity and wrong-password failures feed
// the same counter.
func (s *AuthService) Login(ctx context.Context, email, password, origin string) (string, domain.User, error) {
	status, err := s.throttle.CheckLockout(ctx, email, origin)
	if err != nil {
		return "", domain.User{}, err
	}
	if status.Locked {
		return "", domain.User{}, &domain.LockedOutError{
			RemainingMinutes: status.RemainingMinutes,
			LockedUntil:      status.LockedUntil,
		}
	}

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.User{}, s.failedAttempt(ctx, email, origin, "user not found")
		}
		return "", domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, s.failedAttempt(ctx, email, origin, "invalid credentials")
	}

	if err := s.throttle.RecordSuccess(ctx, email, origin); err != nil {
		return "", domain.User{}, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

// failedAttempt records the failure and maps the outcome to the error the
// caller renders: CredentialFailure while attempts remain, LockedOut when
// this failure exhausts them.
func (s *AuthService) failedAttempt(ctx context.Context, email, origin, reason string) error {
	out, err := s.throttle.RecordFailure(ctx, email, origin)
	if err != nil {
		return err
	}
	if out.Locked {
		return &domain.LockedOutError{
			RemainingMinutes: ceilMinutes(s.throttle.LockoutWindow()),
			LockedUntil:      out.LockedUntil,
		}
	}
	return &domain.CredentialError{Reason: reason, AttemptsLeft: out.AttemptsLeft}
}

// Profile returns the account for the given user ID.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.users.ByID(ctx, userID)
}

// UpdateProfile replaces the editable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, profile domain.Profile) (domain.User, error) {
	return s.users.UpdateProfile(ctx, userID, profile)
}

// Claims carried by issued tokens.
type tokenClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) issueToken(user domain.User) (string, error) {
	claims := tokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken validates a bearer token and returns the embedded user ID and
// role.
func (s *AuthService) VerifyToken(tokenString string) (string, string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", err
	}
	if !token.Valid {
		return "", "", errors.New("token is not valid")
	}
	return claims.UserID, claims.Role, nil
}
