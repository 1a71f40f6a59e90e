package lock_store

import (
	"time"

	"github.com/google/uuid"
)

// CourtLock marks a court as being edited by one user since AcquiredAt.
type CourtLock struct {
	ID         uuid.UUID `json:"id"`
	CourtSlug  string    `json:"court_slug"`
	UserEmail  string    `json:"user_email"`
	AcquiredAt time.Time `json:"lock_acquired"`
}

// NewCourtLock builds a lock for userEmail on courtSlug acquired at now.
func NewCourtLock(courtSlug, userEmail string, now time.Time) CourtLock {
	return CourtLock{
		ID:         uuid.New(),
		CourtSlug:  courtSlug,
		UserEmail:  userEmail,
		AcquiredAt: now.UTC(),
	}
}
