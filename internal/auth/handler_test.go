package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentfold/rentfold/internal/auth"
	"github.com/rentfold/rentfold/internal/shared"
)

type stubRepo struct {
	identity   *auth.Identity
	sessionErr error
	created    []auth.Identity
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	if s.identity == nil || !strings.EqualFold(s.identity.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.identity, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*auth.Identity, error) {
	if s.identity == nil || s.identity.ID.String() != id {
		return nil, shared.ErrNotFound
	}
	return s.identity, nil
}

func (s *stubRepo) Create(ctx context.Context, identity auth.Identity) error {
	s.created = append(s.created, identity)
	return nil
}

func (s *stubRepo) RecordSession(ctx context.Context, id, identityID string, expiresAt time.Time, ip, ua string) error {
	return s.sessionErr
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return s.sessionErr
}

func (s *stubRepo) DeleteSessionsFor(ctx context.Context, identityID string) error {
	return s.sessionErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeIdentity(t *testing.T, email, password string) *auth.Identity {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.Identity{ID: uuid.New(), Email: email, PasswordHash: string(hash), IsActive: true}
}

func newHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	handler := auth.NewHandler(discardLogger(), auth.NewService(repo), sessions, shared.NewCSRFManager("csrfsecret"))
	return handler, sessions
}

func withSession(t *testing.T, sessions *shared.SessionManager, req *http.Request) (*http.Request, *shared.Session) {
	t.Helper()
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func TestLoginSuccess(t *testing.T) {
	identity := activeIdentity(t, "owner@rentfold.test", "correct horse")
	handler, sessions := newHandler(t, &stubRepo{identity: identity})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"owner@rentfold.test","password":"correct horse"}`))
	req, sess := withSession(t, sessions, req)
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, identity.ID.String(), sess.IdentityID())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])
	assert.NotEmpty(t, body["csrf_token"])
}

func TestLoginWrongPassword(t *testing.T) {
	identity := activeIdentity(t, "owner@rentfold.test", "correct horse")
	handler, sessions := newHandler(t, &stubRepo{identity: identity})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"owner@rentfold.test","password":"wrong password"}`))
	req, sess := withSession(t, sessions, req)
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, sess.IdentityID())
}

func TestLoginInactiveIdentity(t *testing.T) {
	identity := activeIdentity(t, "owner@rentfold.test", "correct horse")
	identity.IsActive = false
	handler, sessions := newHandler(t, &stubRepo{identity: identity})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"owner@rentfold.test","password":"correct horse"}`))
	req, _ = withSession(t, sessions, req)
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginClearsStaleImpersonation(t *testing.T) {
	identity := activeIdentity(t, "admin@rentfold.test", "correct horse")
	handler, sessions := newHandler(t, &stubRepo{identity: identity})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"admin@rentfold.test","password":"correct horse"}`))
	req, sess := withSession(t, sessions, req)
	sess.SetImpersonation("tenant")
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sess.Impersonation())
}

func TestLogoutSurvivesBackendFailure(t *testing.T) {
	identity := activeIdentity(t, "owner@rentfold.test", "correct horse")
	repo := &stubRepo{identity: identity, sessionErr: errors.New("backend down")}
	handler, sessions := newHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader(`{"global":true}`))
	req, sess := withSession(t, sessions, req)
	sess.SetIdentity(identity.ID.String())
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	// Sign-out is irreversible regardless of remote failures.
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/auth", body["location"])

	rec2 := httptest.NewRecorder()
	require.NoError(t, sessions.Commit(context.Background(), rec2, sess))
	cookies := rec2.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestReadSessionAnonymous(t *testing.T) {
	handler, sessions := newHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req, _ = withSession(t, sessions, req)
	rec := httptest.NewRecorder()
	handler.ReadSession(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	identity := activeIdentity(t, "owner@rentfold.test", "correct horse")
	handler, sessions := newHandler(t, &stubRepo{identity: identity})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"email":"owner@rentfold.test","password":"correct horse"}`))
	req, _ = withSession(t, sessions, req)
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
