package api

import (
	"encoding/json"
	"net/http"

	"github.com/hmcts/fact-admin/internal/fact_errors"
	log "github.com/sirupsen/logrus"
)

func (a *Api) HandlerGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := a.UserServiceConfig.GetMe(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}

	// marshal
	response, err := json.Marshal(user)
	if err != nil {
		log.Errorf("cannot marshal %v, %v", user, err)
		http.Error(w, fact_errors.ErrInternal.Error(), http.StatusInternalServerError)
		return
	}

	respondWithJson(w, http.StatusOK, response)
}
