package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hmcts/fact-admin/internal/fact_errors"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// handlerError writes the status matching the sentinel wrapped by err.
// Internal errors never leak their cause to the client.
func handlerError(err error, w http.ResponseWriter) {
	switch {
	case errors.Is(err, fact_errors.ErrInvalidInput),
		errors.Is(err, fact_errors.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, fact_errors.ErrUnauthenticated):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, fact_errors.ErrUnAuthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, fact_errors.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, fact_errors.ErrConflict),
		errors.Is(err, fact_errors.ErrEntityAlreadyExist):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, fact_errors.ErrEmailServiceStopped):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		if !errors.Is(err, fact_errors.ErrInternal) {
			log.Errorf("unexpected error reached handler, %v", err)
		}
		http.Error(w, fact_errors.ErrInternal.Error(), http.StatusInternalServerError)
	}
}

func respondWithJson(w http.ResponseWriter, status int, response []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		log.Errorf("cannot write response, %v", err)
	}
}

func decodeJsonBody(body io.ReadCloser, v any) error {
	defer body.Close()
	decoder := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("cannot decode body, %w", err)
	}
	return nil
}
