package lock_service

import (
	"context"
	"fmt"

	"github.com/hmcts/fact-admin/internal/service"
	"github.com/hmcts/fact-admin/internal/service/user_service"
	log "github.com/sirupsen/logrus"
)

// ReleaseCourtLocks removes the lock userEmail holds on courtSlug. Super admins only.
func (l *LockService) ReleaseCourtLocks(
	ctx context.Context,
	courtSlug string,
	userEmail string,
) error {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	err = l.UserServiceConfig.AuthorizeUserRole(
		ctx,
		user_service.RoleSuperAdmin,
		fmt.Sprintf("user %s tried to release the lock of %s on court %s", claims.Email, userEmail, courtSlug),
	)
	if err != nil {
		return err
	}

	req, err := validateLockRequest(courtSlug, userEmail)
	if err != nil {
		return err
	}

	if err = l.Store.DeleteCourtLocks(ctx, req.CourtSlug, req.UserEmail); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"court_slug":  req.CourtSlug,
		"user_email":  req.UserEmail,
		"released_by": claims.Email,
	}).Info("court lock released")
	return nil
}
