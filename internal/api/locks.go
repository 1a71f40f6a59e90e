package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hmcts/fact-admin/internal/fact_errors"
	log "github.com/sirupsen/logrus"
)

func (a *Api) HandlerGetCourtLocks(w http.ResponseWriter, r *http.Request) {
	locks, err := a.LockServiceConfig.GetCourtLocks(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handlerError(err, w)
		return
	}

	// marshal
	bytes, err := json.Marshal(locks)
	if err != nil {
		log.Errorf("failed to marshal %v, %v", locks, err)
		http.Error(w, fact_errors.ErrInternal.Error(), http.StatusInternalServerError)
		return
	}

	respondWithJson(w, http.StatusOK, bytes)
}

func (a *Api) HandlerReleaseCourtLocks(w http.ResponseWriter, r *http.Request) {
	userEmail := r.URL.Query().Get("user_email")
	if userEmail == "" {
		http.Error(w, "user_email is required", http.StatusBadRequest)
		return
	}

	err := a.LockServiceConfig.ReleaseCourtLocks(r.Context(), chi.URLParam(r, "slug"), userEmail)
	if err != nil {
		handlerError(err, w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
