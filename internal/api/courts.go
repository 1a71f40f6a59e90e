package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hmcts/fact-admin/internal/fact_errors"
	log "github.com/sirupsen/logrus"
)

func (a *Api) HandlerGetCourts(w http.ResponseWriter, r *http.Request) {
	a.renderCourts(r.Context(), w, r.URL.Query().Get("name"))
}

// renderCourts writes the listing view carrying the given user facing errors.
func (a *Api) renderCourts(ctx context.Context, w http.ResponseWriter, nameFilter string, errorTexts ...string) {
	courts, err := a.CourtServiceConfig.GetCourts(ctx, nameFilter)
	if err != nil {
		handlerError(err, w)
		return
	}

	view := CourtsView{
		Courts: courts,
		Errors: make([]ErrorEntry, 0, len(errorTexts)),
	}
	for _, text := range errorTexts {
		view.Errors = append(view.Errors, ErrorEntry{Text: text})
	}

	bytes, err := json.Marshal(view)
	if err != nil {
		log.Errorf("failed to marshal courts view, %v", err)
		http.Error(w, fact_errors.ErrInternal.Error(), http.StatusInternalServerError)
		return
	}

	respondWithJson(w, http.StatusOK, bytes)
}
