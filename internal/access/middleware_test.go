package access

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfold/rentfold/internal/shared"
)

func newGuard(store GrantStore) Guard {
	return Guard{Resolver: NewResolver(store, nil, time.Minute, nil)}
}

func requestWithSession(t *testing.T, method, target, identityID, impersonation string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	sess, err := shared.NewSessionManager(nil, "test_session", "secret", time.Hour, false).Load(context.Background(), req)
	require.NoError(t, err)
	if identityID != "" {
		sess.SetIdentity(identityID)
	}
	if impersonation != "" {
		sess.SetImpersonation(impersonation)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func testRouter(guard Guard) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(guard.Protect())
			r.Get("/billing", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
			r.Get("/tenant/maintenance", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
			r.Get("/admin/users", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
		})
	})
	return r
}

func TestProtectUnauthenticated(t *testing.T) {
	router := testRouter(newGuard(&stubGrantStore{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestWithSession(t, http.MethodGet, "/api/billing", "", ""))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "redirect_auth", body["decision"])
}

func TestProtectTenantCrossNamespace(t *testing.T) {
	store := &stubGrantStore{grants: map[string][]Role{"t-1": {RoleTenant}}}
	router := testRouter(newGuard(store))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestWithSession(t, http.MethodGet, "/api/tenant/maintenance", "t-1", ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, requestWithSession(t, http.MethodGet, "/api/billing", "t-1", ""))
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/tenant", rec.Header().Get("Location"))
}

func TestProtectOperatorBlockedFromAdmin(t *testing.T) {
	store := &stubGrantStore{grants: map[string][]Role{"l-1": {RoleLandlord}}}
	router := testRouter(newGuard(store))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestWithSession(t, http.MethodGet, "/api/admin/users", "l-1", ""))
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestProtectImpersonatedAdmin(t *testing.T) {
	store := &stubGrantStore{grants: map[string][]Role{"a-1": {RoleAdmin}}}
	router := testRouter(newGuard(store))

	// Impersonating a tenant, the admin loses operator access and gains the tenant area.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestWithSession(t, http.MethodGet, "/api/tenant/maintenance", "a-1", "tenant"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, requestWithSession(t, http.MethodGet, "/api/admin/users", "a-1", "tenant"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProtectLookupFailureDeniesPrivileged(t *testing.T) {
	store := &stubGrantStore{err: assert.AnError}
	router := testRouter(newGuard(store))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestWithSession(t, http.MethodGet, "/api/admin/users", "u-1", ""))
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestDecisionEndpoint(t *testing.T) {
	store := &stubGrantStore{grants: map[string][]Role{"l-1": {RoleLandlord}}}
	handler := NewHandler(nil, newGuard(store))
	r := chi.NewRouter()
	r.Route("/access", handler.MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithSession(t, http.MethodGet, "/access/decision?path=/admin/users", "l-1", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var body decisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "redirect_home", body.Decision)
	assert.Equal(t, "/", body.Location)

	// Aliased paths are resolved to their canonical target before deciding.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithSession(t, http.MethodGet, "/access/decision?path=/email-templates", "l-1", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "allow", body.Decision)
}

func TestMeEndpoint(t *testing.T) {
	store := &stubGrantStore{grants: map[string][]Role{"a-1": {RoleAdmin}}}
	handler := NewHandler(nil, newGuard(store))
	r := chi.NewRouter()
	r.Route("/access", handler.MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithSession(t, http.MethodGet, "/access/me", "a-1", "tenant"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body meResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a-1", body.IdentityID)
	assert.Equal(t, "tenant", body.Role)
	assert.True(t, body.Impersonated)
	assert.Equal(t, "tenant", body.Namespace)
}
