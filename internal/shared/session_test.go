package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "rentfold_session", "test-secret", time.Hour, false), mr
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no %s cookie written", name)
	return nil
}

func TestSessionCommitAndLoadRoundtrip(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	ctx := context.Background()

	sess := &Session{isNew: true, dirty: true, values: map[string]string{}}
	sess.SetIdentity("user-1")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookie := sessionCookie(t, rec, sm.CookieName())
	require.NotEmpty(t, cookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "user-1", loaded.IdentityID())
}

func TestSignOutExpiresCookieWhenRedisIsDown(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	sess := &Session{isNew: true, dirty: true, values: map[string]string{}}
	sess.SetIdentity("user-1")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookie := sessionCookie(t, rec, sm.CookieName())

	mr.Close()

	sm.Destroy(sess)
	rec = httptest.NewRecorder()
	err := sm.Commit(ctx, rec, sess)
	require.Error(t, err)

	// The browser-side artifact is cleared even though revocation failed:
	// sign-out stays irreversible from the user's perspective.
	expired := sessionCookie(t, rec, sm.CookieName())
	require.Empty(t, expired.Value)
	require.Equal(t, -1, expired.MaxAge)

	require.NoError(t, mr.Restart())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "user-1", loaded.IdentityID(),
		"orphaned record survives until its TTL; the expired cookie is what keeps the browser signed out")
}

func TestSignOutDeletesRemoteSession(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	ctx := context.Background()

	sess := &Session{isNew: true, dirty: true, values: map[string]string{}}
	sess.SetIdentity("user-1")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookie := sessionCookie(t, rec, sm.CookieName())

	sm.Destroy(sess)
	rec = httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	require.Equal(t, -1, sessionCookie(t, rec, sm.CookieName()).MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.Empty(t, loaded.IdentityID())
}
