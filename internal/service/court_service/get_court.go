package court_service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hmcts/fact-admin/internal/fact_errors"
	"github.com/hmcts/fact-admin/internal/service"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

func (c *CourtService) GetCourt(ctx context.Context, slug string) (Court, error) {
	slug, err := validateSlug(slug)
	if err != nil {
		return Court{}, err
	}

	if c.Cache != nil {
		if court, ok := c.Cache.Get(slug); ok {
			return court, nil
		}
	}

	dbCourt, err := c.DB.GetCourtBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Court{}, fmt.Errorf(
				"%w, no court exist with the slug %s",
				fact_errors.ErrNotFound,
				slug,
			)
		}
		err = fmt.Errorf(
			"%w, cannot fetch court with slug %s, %w",
			fact_errors.ErrInternal,
			slug,
			err,
		)
		log.Error(err)
		return Court{}, err
	}

	court := dbCourtToCourt(dbCourt)
	if c.Cache != nil {
		c.Cache.Add(slug, court)
	}
	return court, nil
}

// GetCourts lists courts ordered by name. A non-empty nameFilter keeps the courts
// whose name contains it, ignoring case.
func (c *CourtService) GetCourts(ctx context.Context, nameFilter string) ([]Court, error) {
	req := getCourtsRequest{Name: strings.TrimSpace(nameFilter)}
	if err := service.ValidateInput(req); err != nil {
		return nil, err
	}

	dbCourts, err := c.DB.GetCourts(ctx, req.Name)
	if err != nil {
		err = fmt.Errorf(
			"%w, cannot fetch courts, %w",
			fact_errors.ErrInternal,
			err,
		)
		log.WithField("name_filter", req.Name).Error(err)
		return nil, err
	}

	courts := make([]Court, 0, len(dbCourts))
	for _, dbCourt := range dbCourts {
		courts = append(courts, dbCourtToCourt(dbCourt))
	}
	return courts, nil
}
