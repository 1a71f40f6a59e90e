package court_service

import (
	"strings"

	"github.com/hmcts/fact-admin/internal/database"
	"github.com/hmcts/fact-admin/internal/service"
)

func dbCourtToCourt(dbCourt database.Court) Court {
	return Court{
		Slug:          dbCourt.Slug,
		Name:          dbCourt.Name,
		Open:          dbCourt.Open,
		Info:          dbCourt.Info,
		Alert:         dbCourt.Alert,
		UpdatedAt:     dbCourt.UpdatedAt.UTC(),
		LastUpdatedBy: dbCourt.LastUpdatedBy,
	}
}

func validateSlug(slug string) (string, error) {
	req := courtSlugRequest{Slug: strings.TrimSpace(slug)}
	if err := service.ValidateInput(req); err != nil {
		return "", err
	}
	return req.Slug, nil
}

// blank optional text is stored as NULL
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
