package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hmcts/fact-admin/internal/fact_errors"
)

// NewSessionToken signs claims into an HS256 session token valid for ttl.
func NewSessionToken(secret []byte, claims SessionClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.Subject == "" {
		claims.Subject = claims.Email
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%w, cannot sign session token, %w", fact_errors.ErrInternal, err)
	}
	return token, nil
}

// ParseSessionToken verifies the signature and expiry of a session token.
func ParseSessionToken(secret []byte, tokenString string) (SessionClaims, error) {
	var claims SessionClaims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		},
	)
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return SessionClaims{}, fmt.Errorf("%w, session expired", fact_errors.ErrUnauthenticated)
		}
		return SessionClaims{}, fmt.Errorf("%w, %w", fact_errors.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return SessionClaims{}, fact_errors.ErrUnauthenticated
	}

	if claims.Email == "" {
		return SessionClaims{}, fmt.Errorf("%w, session has no email", fact_errors.ErrUnauthenticated)
	}

	return claims, nil
}
