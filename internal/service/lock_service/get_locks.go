package lock_service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hmcts/fact-admin/internal/fact_errors"
	"github.com/hmcts/fact-admin/internal/service"
	"github.com/hmcts/fact-admin/internal/service/user_service"
)

type courtSlugRequest struct {
	CourtSlug string `json:"court_slug" validate:"required,slug"`
}

// GetCourtLocks lists the locks stored for a court. Super admins only.
func (l *LockService) GetCourtLocks(ctx context.Context, courtSlug string) ([]LockView, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	err = l.UserServiceConfig.AuthorizeUserRole(
		ctx,
		user_service.RoleSuperAdmin,
		fmt.Sprintf("user %s tried to view the locks of court %s", claims.Email, courtSlug),
	)
	if err != nil {
		return nil, err
	}

	req := courtSlugRequest{CourtSlug: strings.TrimSpace(courtSlug)}
	if err = service.ValidateInput(req); err != nil {
		return nil, err
	}

	locks, err := l.Store.GetCourtLocks(ctx, req.CourtSlug)
	if err != nil {
		return nil, err
	}

	now := l.now()
	views := make([]LockView, 0, len(locks))
	for _, lock := range locks {
		views = append(views, l.toLockView(lock, now))
	}
	return views, nil
}

// EnsureCourtEditable fails with ErrConflict while another user holds a live
// lock on the court. It never changes the lock store.
func (l *LockService) EnsureCourtEditable(
	ctx context.Context,
	courtSlug string,
	userEmail string,
) error {
	req, err := validateLockRequest(courtSlug, userEmail)
	if err != nil {
		return err
	}

	locks, err := l.Store.GetCourtLocks(ctx, req.CourtSlug)
	if err != nil {
		return err
	}

	current, locked := currentLock(locks)
	if !locked || sameHolder(current, req.UserEmail) || l.IsLockExpired(current, l.now()) {
		return nil
	}

	return fmt.Errorf("%w, %s", fact_errors.ErrConflict, denialMessage(current))
}
