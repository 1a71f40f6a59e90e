package api

import (
	"github.com/hmcts/fact-admin/internal/lock_store"
	"github.com/hmcts/fact-admin/internal/service/court_service"
	"github.com/hmcts/fact-admin/internal/service/lock_service"
	"github.com/hmcts/fact-admin/internal/service/user_service"
)

type Api struct {
	CourtServiceConfig *court_service.CourtService
	LockServiceConfig  *lock_service.LockService
	UserServiceConfig  *user_service.UserService
	SessionCookieName  string
}

type ErrorEntry struct {
	Text string `json:"text"`
}

// CourtsView backs the court listing page.
type CourtsView struct {
	Courts []court_service.Court `json:"courts"`
	Errors []ErrorEntry          `json:"errors"`
}

// EditCourtView backs the edit court page once the edit lock is granted.
type EditCourtView struct {
	Court         court_service.Court      `json:"court"`
	Lock          lock_store.CourtLock     `json:"lock"`
	Outcome       lock_service.LockOutcome `json:"outcome"`
	TakenOverFrom *string                  `json:"taken_over_from,omitempty"`
}
