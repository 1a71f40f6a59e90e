package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hmcts/fact-admin/internal/fact_errors"
	"github.com/hmcts/fact-admin/internal/service"
	"github.com/hmcts/fact-admin/internal/service/user_service"
	log "github.com/sirupsen/logrus"
)

// Sessions authenticates requests carrying a signed session token, either in
// the session cookie or as a bearer token.
type Sessions struct {
	Secret     []byte
	CookieName string
}

func (s *Sessions) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := s.sessionToken(r)
		if err != nil {
			log.WithField("path", r.URL.Path).Debug(err)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		claims, err := service.ParseSessionToken(s.Secret, token)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(service.WithClaims(r.Context(), claims)))
	}
}

// RequireRole authenticates the request and rejects users without role.
func (s *Sessions) RequireRole(role user_service.UserRole, next http.HandlerFunc) http.HandlerFunc {
	return s.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		claims, err := service.GetClaimsFromContext(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		err = user_service.AuthorizeClaims(
			claims,
			role,
			fmt.Sprintf("%s %s requires role %s", r.Method, r.URL.Path, role),
		)
		if err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}

		next(w, r)
	})
}

func (s *Sessions) sessionToken(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(s.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	header := r.Header.Get(KeyAuthorizationHeader)
	if strings.HasPrefix(header, bearerPrefix) {
		if token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)); token != "" {
			return token, nil
		}
	}

	return "", fmt.Errorf("%w, no session token in request", fact_errors.ErrUnauthenticated)
}
