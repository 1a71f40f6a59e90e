package lock_service

import (
	"context"
	"fmt"
	"time"

	"github.com/hmcts/fact-admin/internal/lock_store"
	"github.com/hmcts/fact-admin/internal/service/user_service"
)

const (
	DefaultLockTimeout = 2 * time.Minute

	// number of times a lost insert race is re-decided before giving up
	maxAcquireAttempts = 3

	denialMessageFormat = "%s is currently in use by %s. Please contact them to finish their changes, or try again later."
)

// LockStore persists court locks. AddCourtLock must fail with
// fact_errors.ErrEntityAlreadyExist when the court already has a lock.
type LockStore interface {
	GetCourtLocks(ctx context.Context, courtSlug string) ([]lock_store.CourtLock, error)
	AddCourtLock(ctx context.Context, lock lock_store.CourtLock) error
	DeleteCourtLocks(ctx context.Context, courtSlug, userEmail string) error
}

// ExpiredLockReaper is implemented by stores that can bulk delete old locks.
type ExpiredLockReaper interface {
	DeleteCourtLocksAcquiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TakeoverNotifier tells the previous holder that their expired lock was taken.
type TakeoverNotifier interface {
	NotifyTakeover(ctx context.Context, previous, current lock_store.CourtLock) error
}

type LockService struct {
	Store             LockStore
	Timeout           time.Duration
	Clock             func() time.Time
	Notifier          TakeoverNotifier
	UserServiceConfig *user_service.UserService
}

type LockOutcome string

const (
	LockGranted     LockOutcome = "granted"
	LockTakenOver   LockOutcome = "taken_over"
	LockDenied      LockOutcome = "denied"
	LockAlreadyHeld LockOutcome = "already_held"
)

// LockDecision is the result of an edit request. Lock is the lock now governing
// the court, which is the other user's lock when the outcome is LockDenied.
type LockDecision struct {
	Outcome  LockOutcome           `json:"outcome"`
	Lock     lock_store.CourtLock  `json:"lock"`
	Previous *lock_store.CourtLock `json:"previous,omitempty"`
}

func (d LockDecision) Granted() bool {
	return d.Outcome != LockDenied
}

func (d LockDecision) DenialMessage() string {
	if d.Outcome != LockDenied {
		return ""
	}
	return denialMessage(d.Lock)
}

// LockView is a lock as shown to super admins.
type LockView struct {
	lock_store.CourtLock
	ExpiresAt time.Time `json:"expires_at"`
	Expired   bool      `json:"expired"`
}

type lockRequest struct {
	CourtSlug string `json:"court_slug" validate:"required,slug"`
	UserEmail string `json:"user_email" validate:"required,email"`
}

func denialMessage(lock lock_store.CourtLock) string {
	return fmt.Sprintf(denialMessageFormat, lock.CourtSlug, lock.UserEmail)
}
