package lock_service

import (
	"strings"
	"time"

	"github.com/hmcts/fact-admin/internal/lock_store"
	"github.com/hmcts/fact-admin/internal/service"
)

func (l *LockService) now() time.Time {
	if l.Clock != nil {
		return l.Clock().UTC()
	}
	return time.Now().UTC()
}

func (l *LockService) timeout() time.Duration {
	if l.Timeout > 0 {
		return l.Timeout
	}
	return DefaultLockTimeout
}

// IsLockExpired reports whether now is strictly past the lock's expiry.
// A lock is still live at the exact expiry instant.
func (l *LockService) IsLockExpired(lock lock_store.CourtLock, now time.Time) bool {
	return now.After(l.ExpiresAt(lock))
}

func (l *LockService) ExpiresAt(lock lock_store.CourtLock) time.Time {
	return lock.AcquiredAt.Add(l.timeout())
}

func (l *LockService) toLockView(lock lock_store.CourtLock, now time.Time) LockView {
	return LockView{
		CourtLock: lock,
		ExpiresAt: l.ExpiresAt(lock),
		Expired:   l.IsLockExpired(lock, now),
	}
}

// currentLock picks the lock governing a court: the most recently acquired one,
// keeping store order on ties.
func currentLock(locks []lock_store.CourtLock) (lock_store.CourtLock, bool) {
	if len(locks) == 0 {
		return lock_store.CourtLock{}, false
	}
	current := locks[0]
	for _, lock := range locks[1:] {
		if lock.AcquiredAt.After(current.AcquiredAt) {
			current = lock
		}
	}
	return current, true
}

func sameHolder(lock lock_store.CourtLock, userEmail string) bool {
	return strings.EqualFold(lock.UserEmail, userEmail)
}

func validateLockRequest(courtSlug, userEmail string) (lockRequest, error) {
	req := lockRequest{
		CourtSlug: strings.TrimSpace(courtSlug),
		UserEmail: userEmail,
	}
	if err := service.ValidateInput(req); err != nil {
		return lockRequest{}, err
	}
	return req, nil
}
