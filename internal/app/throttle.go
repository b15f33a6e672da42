package app

import (
	"context"
	"time"

	"github.com/vaibha-v7/SIH/internal/domain"
)

// ThrottleRecord tracks consecutive login failures for one throttle key.
type ThrottleRecord struct {
	FailureCount int
	LastFailure  time.Time
}

// ThrottleStore abstracts how failure records are kept (in-memory map for a
// single instance, Redis for multi-instance deployments). Implementations
// own record expiry: a record whose lockout window has elapsed is reported
// as absent.
type ThrottleStore interface {
	Get(ctx context.Context, key string) (ThrottleRecord, bool, error)
	// Increment bumps the failure count and refreshes the failure timestamp,
	// creating the record (or restarting an expired one) at count 1.
	Increment(ctx context.Context, key string, now time.Time) (ThrottleRecord, error)
	Clear(ctx context.Context, key string) error
}

const (
	// DefaultMaxAttempts is the number of failed logins tolerated per key.
	DefaultMaxAttempts = 2
	// DefaultLockoutDuration is how long a maxed-out key stays locked.
	DefaultLockoutDuration = 15 * time.Minute
)

// LoginThrottle decides whether a login attempt for an (identity, origin)
// pair may proceed, and records attempt outcomes. Expiry is evaluated
// lazily on access; there is no background sweeper.
type LoginThrottle struct {
	store       ThrottleStore
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
}

func NewLoginThrottle(store ThrottleStore, maxAttempts int, lockout time.Duration) *LoginThrottle {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = DefaultLockoutDuration
	}
	return &LoginThrottle{
		store:       store,
		maxAttempts: maxAttempts,
		lockout:     lockout,
		now:         time.Now,
	}
}

// ThrottleKey builds the composite key for one lockout counter.
func ThrottleKey(identity, origin string) string {
	return identity + "|" + origin
}

// CheckLockout reports whether the key is currently locked. Must be called
// before any credential verification; a rejected-while-locked attempt never
// counts as an additional failure.
func (t *LoginThrottle) CheckLockout(ctx context.Context, identity, origin string) (domain.LockoutStatus, error) {
	key := ThrottleKey(identity, origin)
	rec, ok, err := t.store.Get(ctx, key)
	if err != nil {
		return domain.LockoutStatus{}, err
	}
	if !ok {
		return domain.LockoutStatus{AttemptsLeft: t.maxAttempts}, nil
	}

	now := t.now()
	elapsed := now.Sub(rec.LastFailure)
	if elapsed >= t.lockout {
		// Stale record: discard lazily and treat as absent.
		if err := t.store.Clear(ctx, key); err != nil {
			return domain.LockoutStatus{}, err
		}
		return domain.LockoutStatus{AttemptsLeft: t.maxAttempts}, nil
	}

	if rec.FailureCount >= t.maxAttempts {
		return domain.LockoutStatus{
			Locked:           true,
			RemainingMinutes: ceilMinutes(t.lockout - elapsed),
			LockedUntil:      rec.LastFailure.Add(t.lockout),
		}, nil
	}

	return domain.LockoutStatus{AttemptsLeft: t.maxAttempts - rec.FailureCount}, nil
}

// RecordFailure registers one failed login and reports whether the key just
// became locked.
func (t *LoginThrottle) RecordFailure(ctx context.Context, identity, origin string) (domain.FailureOutcome, error) {
	now := t.now()
	rec, err := t.store.Increment(ctx, ThrottleKey(identity, origin), now)
	if err != nil {
		return domain.FailureOutcome{}, err
	}

	left := t.maxAttempts - rec.FailureCount
	if left < 0 {
		left = 0
	}
	out := domain.FailureOutcome{AttemptsLeft: left}
	if left == 0 {
		out.Locked = true
		out.LockedUntil = now.Add(t.lockout)
	}
	return out, nil
}

// RecordSuccess resets the key after a successful login. No-op when no
// record exists.
func (t *LoginThrottle) RecordSuccess(ctx context.Context, identity, origin string) error {
	return t.store.Clear(ctx, ThrottleKey(identity, origin))
}

// LockoutWindow exposes the configured lockout duration.
func (t *LoginThrottle) LockoutWindow() time.Duration { return t.lockout }

func ceilMinutes(d time.Duration) int {
	mins := int(d / time.Minute)
	if d%time.Minute != 0 {
		mins++
	}
	return mins
}
