package main

import (
	"github.com/go-chi/chi/v5"
	"github.com/hmcts/fact-admin/internal/service/user_service"
)

func NewV1Router() *chi.Mux {
	v1 := chi.NewRouter()

	// configure all endpoints
	v1.Get("/healthz", apiConfig.HandlerReadiness)

	// session layer
	v1.Get("/me", sessions.Authenticate(apiConfig.HandlerGetMe))
	v1.Post("/logout", apiConfig.HandlerLogout)

	// courts layer
	v1.Get("/courts", sessions.RequireRole(user_service.RoleAdmin, apiConfig.HandlerGetCourts))
	// edit court, decides the edit lock
	v1.Get("/courts/{slug}/edit", sessions.RequireRole(user_service.RoleAdmin, apiConfig.HandlerEditCourt))
	// save court
	v1.Put("/courts/{slug}", sessions.RequireRole(user_service.RoleAdmin, apiConfig.HandlerUpdateCourt))

	// locks layer
	v1.Get("/courts/{slug}/locks", sessions.RequireRole(user_service.RoleSuperAdmin, apiConfig.HandlerGetCourtLocks))
	v1.Delete("/courts/{slug}/locks", sessions.RequireRole(user_service.RoleSuperAdmin, apiConfig.HandlerReleaseCourtLocks))

	return v1
}
