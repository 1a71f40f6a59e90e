package court_service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/hmcts/fact-admin/internal/database"
	"github.com/hmcts/fact-admin/internal/service/lock_service"
	"github.com/hmcts/fact-admin/internal/service/user_service"
)

type CourtService struct {
	DB                *database.Queries
	Cache             *expirable.LRU[string, Court]
	LockServiceConfig *lock_service.LockService
	UserServiceConfig *user_service.UserService
}

// NewCourtCache returns the cache used for single court reads.
func NewCourtCache(size int, ttl time.Duration) *expirable.LRU[string, Court] {
	return expirable.NewLRU[string, Court](size, nil, ttl)
}

type Court struct {
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Open          bool      `json:"open"`
	Info          *string   `json:"info"`
	Alert         *string   `json:"alert"`
	UpdatedAt     time.Time `json:"updated_at"`
	LastUpdatedBy *string   `json:"last_updated_by"`
}

// CourtGeneralInfo is the editable part of a court shown on the general tab.
type CourtGeneralInfo struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Open  bool    `json:"open"`
	Info  *string `json:"info" validate:"omitempty,max=2000"`
	Alert *string `json:"alert" validate:"omitempty,max=250"`
}

type courtSlugRequest struct {
	Slug string `json:"slug" validate:"required,slug"`
}

type getCourtsRequest struct {
	Name string `json:"name" validate:"max=200"`
}
