package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hmcts/fact-admin/internal/api"
	"github.com/hmcts/fact-admin/internal/config"
	"github.com/hmcts/fact-admin/internal/database"
	"github.com/hmcts/fact-admin/internal/lock_store"
	"github.com/hmcts/fact-admin/internal/service"
	"github.com/hmcts/fact-admin/internal/service/court_service"
	"github.com/hmcts/fact-admin/internal/service/lock_service"
	"github.com/hmcts/fact-admin/internal/service/user_service"
	"github.com/hmcts/fact-admin/middleware"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	us := &user_service.UserService{}
	ls := &lock_service.LockService{
		Store:             lock_store.NewMemoryStore(),
		Timeout:           2 * time.Minute,
		UserServiceConfig: us,
	}
	cs := &court_service.CourtService{
		DB:                database.New(mock),
		Cache:             court_service.NewCourtCache(16, time.Minute),
		LockServiceConfig: ls,
		UserServiceConfig: us,
	}
	cs.Cache.Add("leeds", court_service.Court{Slug: "leeds", Name: "Leeds Combined Court", Open: true})

	apiConfig = &api.Api{
		CourtServiceConfig: cs,
		LockServiceConfig:  ls,
		UserServiceConfig:  us,
		SessionCookieName:  config.DefaultSessionCookieName,
	}
	sessions = &middleware.Sessions{Secret: testSecret, CookieName: config.DefaultSessionCookieName}

	srv := httptest.NewServer(newRouter(&config.Config{RequestTimeout: 5 * time.Second}))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url, email string, roles ...user_service.UserRole) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	if email != "" {
		names := make([]string, 0, len(roles))
		for _, r := range roles {
			names = append(names, string(r))
		}
		token, err := service.NewSessionToken(testSecret, service.SessionClaims{Email: email, Roles: names}, time.Hour)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: config.DefaultSessionCookieName, Value: token})
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestV1Router(t *testing.T) {
	srv := setupTestServer(t)

	resp := get(t, srv.URL+"/v1/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, srv.URL+"/v1/courts/leeds/edit", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = get(t, srv.URL+"/v1/courts/leeds/edit", "a@x.com")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = get(t, srv.URL+"/v1/courts/leeds/edit", "a@x.com", user_service.RoleAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view api.EditCourtView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, lock_service.LockGranted, view.Outcome)

	// same user again keeps the lock
	resp = get(t, srv.URL+"/v1/courts/leeds/edit", "A@x.com", user_service.RoleAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, lock_service.LockAlreadyHeld, view.Outcome)

	resp = get(t, srv.URL+"/v1/courts/leeds/locks", "a@x.com", user_service.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = get(t, srv.URL+"/v1/courts/leeds/locks", "boss@x.com", user_service.RoleSuperAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var locks []lock_service.LockView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&locks))
	require.Len(t, locks, 1)
	assert.Equal(t, "a@x.com", locks[0].UserEmail)
}
