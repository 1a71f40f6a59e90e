package service

import (
	"slices"

	"github.com/golang-jwt/jwt/v4"
)

// SessionClaims identify the staff member behind a request.
type SessionClaims struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c SessionClaims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}
