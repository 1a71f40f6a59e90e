package court_service

import (
	"context"
	"fmt"

	"github.com/hmcts/fact-admin/internal/database"
	"github.com/hmcts/fact-admin/internal/fact_errors"
	"github.com/hmcts/fact-admin/internal/service"
	"github.com/hmcts/fact-admin/internal/service/user_service"
	log "github.com/sirupsen/logrus"
)

var (
	msgUnique = map[string]string{
		"uq_courts_name": "a court with that name already exist",
	}

	errMsgs = map[string]map[string]string{
		fact_errors.CodeUniqueConstraint: msgUnique,
	}
)

// UpdateCourtGeneralInfo saves the general tab of a court. The save is refused
// while another user holds a live edit lock on the court.
func (c *CourtService) UpdateCourtGeneralInfo(
	ctx context.Context,
	slug string,
	info CourtGeneralInfo,
) (Court, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return Court{}, err
	}

	err = c.UserServiceConfig.AuthorizeUserRole(
		ctx,
		user_service.RoleAdmin,
		fmt.Sprintf("user %s tried to update court %s", claims.Email, slug),
	)
	if err != nil {
		return Court{}, err
	}

	slug, err = validateSlug(slug)
	if err != nil {
		return Court{}, err
	}
	info.Info = trimOptional(info.Info)
	info.Alert = trimOptional(info.Alert)
	if err = service.ValidateInput(info); err != nil {
		return Court{}, err
	}

	if err = c.LockServiceConfig.EnsureCourtEditable(ctx, slug, claims.Email); err != nil {
		log.WithFields(log.Fields{
			"court_slug": slug,
			"user_email": claims.Email,
		}).Warn(err)
		return Court{}, err
	}

	dbCourt, err := c.DB.UpdateCourtGeneralInfo(ctx, database.UpdateCourtGeneralInfoParams{
		Slug:          slug,
		Name:          info.Name,
		Open:          info.Open,
		Info:          info.Info,
		Alert:         info.Alert,
		LastUpdatedBy: &claims.Email,
	})
	if err != nil {
		return Court{}, fact_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot update court %s", slug),
		)
	}

	court := dbCourtToCourt(dbCourt)
	if c.Cache != nil {
		c.Cache.Remove(slug)
	}

	log.WithFields(log.Fields{
		"court_slug": slug,
		"user_email": claims.Email,
	}).Info("court general info updated")
	return court, nil
}
