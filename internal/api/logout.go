package api

import (
	"net/http"
	"time"
)

func (a *Api) HandlerLogout(w http.ResponseWriter, r *http.Request) {
	expiredCookie := &http.Cookie{
		Name:     a.SessionCookieName, // must match the session cookie name
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0), // expire immediately
		MaxAge:   -1,              // remove cookie right now
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, expiredCookie)

	respondWithJson(w, http.StatusOK, []byte(`{"message": "logged out successfully"}`))
}
