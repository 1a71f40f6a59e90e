package user_service

import (
	"context"

	"github.com/hmcts/fact-admin/internal/fact_errors"
	"github.com/hmcts/fact-admin/internal/service"
	log "github.com/sirupsen/logrus"
)

// GetMe returns the identity of the acting user.
func (u *UserService) GetMe(ctx context.Context) (User, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return User{}, err
	}

	return User{
		Email:        claims.Email,
		Name:         claims.Name,
		Roles:        claims.Roles,
		IsSuperAdmin: claims.HasRole(string(RoleSuperAdmin)),
	}, nil
}

// AuthorizeUserRole checks the acting user holds role. A super admin holds every role.
func (u *UserService) AuthorizeUserRole(
	ctx context.Context,
	role UserRole,
	warnMessage string,
) error {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	return AuthorizeClaims(claims, role, warnMessage)
}

func AuthorizeClaims(claims service.SessionClaims, role UserRole, warnMessage string) error {
	if claims.HasRole(string(RoleSuperAdmin)) || claims.HasRole(string(role)) {
		return nil
	}
	if warnMessage != "" {
		log.WithField("email", claims.Email).Warn(warnMessage)
	}
	return fact_errors.ErrUnAuthorized
}

// CurrentUserEmail returns the email of the acting user.
func (u *UserService) CurrentUserEmail(ctx context.Context) (string, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}
