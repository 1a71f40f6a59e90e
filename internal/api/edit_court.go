package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hmcts/fact-admin/internal/service/court_service"
	"github.com/hmcts/fact-admin/internal/service/lock_service"
	log "github.com/sirupsen/logrus"
)

// HandlerEditCourt serves the edit view of a court when its edit lock is granted
// to the requester. Otherwise it serves the court listing with the denial message.
func (a *Api) HandlerEditCourt(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	email, err := a.UserServiceConfig.CurrentUserEmail(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}

	court, err := a.CourtServiceConfig.GetCourt(r.Context(), slug)
	if err != nil {
		handlerError(err, w)
		return
	}

	decision, err := a.LockServiceConfig.AcquireCourtLock(r.Context(), court.Slug, email)
	if err != nil {
		handlerError(err, w)
		return
	}

	if !decision.Granted() {
		a.renderCourts(r.Context(), w, "", decision.DenialMessage())
		return
	}

	view := EditCourtView{
		Court:   court,
		Lock:    decision.Lock,
		Outcome: decision.Outcome,
	}
	if decision.Outcome == lock_service.LockTakenOver {
		view.TakenOverFrom = &decision.Previous.UserEmail
	}

	bytes, err := json.Marshal(view)
	if err != nil {
		log.Errorf("failed to marshal edit view of %s, %v", court.Slug, err)
		http.Error(
			w,
			fmt.Sprintf("court %s is locked for you, but there was an error preparing response", court.Slug),
			http.StatusInternalServerError,
		)
		return
	}

	respondWithJson(w, http.StatusOK, bytes)
}

func (a *Api) HandlerUpdateCourt(w http.ResponseWriter, r *http.Request) {
	var info court_service.CourtGeneralInfo
	err := decodeJsonBody(r.Body, &info)
	if err != nil {
		errorMessage := fmt.Sprintf("invalid request payload, %s", err.Error())
		http.Error(w, errorMessage, http.StatusBadRequest)
		return
	}

	court, err := a.CourtServiceConfig.UpdateCourtGeneralInfo(r.Context(), chi.URLParam(r, "slug"), info)
	if err != nil {
		handlerError(err, w)
		return
	}

	bytes, err := json.Marshal(court)
	if err != nil {
		log.Errorf("unable to marshal %v, %v", court, err)
		http.Error(
			w,
			"court updated successfully, but there was an error preparing response",
			http.StatusInternalServerError,
		)
		return
	}

	respondWithJson(w, http.StatusOK, bytes)
}
