package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager orchestrates cookie based sessions backed by Redis.
//
// Every session is additionally indexed under its identity so a global
// sign-out can revoke all devices at once.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data.
type Session struct {
	ID          string
	values      map[string]string
	identityID  string
	impersonate string
	isNew       bool
	dirty       bool
	destroyed   bool
}

type sessionPayload struct {
	Values      map[string]string `json:"values"`
	IdentityID  string            `json:"identity_id"`
	Impersonate string            `json:"impersonate,omitempty"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load loads the session referenced by the request cookie, or creates a fresh
// anonymous one. A failed remote read degrades to "no session" so the access
// guard redirects to the auth path instead of surfacing an error.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	payload, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if err != nil {
		// Expired, revoked or unreachable: treat as logged out.
		sess := sm.newSession()
		sess.ID = cookie.Value
		return sess, nil
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		sess := sm.newSession()
		sess.ID = cookie.Value
		return sess, nil
	}

	sess := &Session{
		ID:          cookie.Value,
		values:      stored.Values,
		identityID:  stored.IdentityID,
		impersonate: stored.Impersonate,
	}
	return sess, nil
}

// Commit persists the session and writes cookie headers as needed.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		// The expiring cookie goes out no matter what happens to the remote
		// state: sign-out must stick for the browser even when Redis is down.
		// The orphaned record ages out through its TTL.
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return sm.deleteSession(ctx, sess)
	}

	if sess.isNew && sess.ID == "" {
		sess.ID = sm.generateSessionID()
	}

	if sess.dirty || sess.isNew {
		payload := sessionPayload{Values: sess.values, IdentityID: sess.identityID, Impersonate: sess.impersonate}
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.ttl).Err(); err != nil {
			return err
		}
		if sess.identityID != "" {
			pipe := sm.client.Pipeline()
			pipe.SAdd(ctx, sm.indexKey(sess.identityID), sess.ID)
			pipe.Expire(ctx, sm.indexKey(sess.identityID), sm.ttl)
			_, _ = pipe.Exec(ctx)
		}
		sess.dirty = false
	}

	if sess.ID != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
			Expires:  time.Now().Add(sm.ttl),
		})
	}

	return nil
}

// Destroy marks the session for deletion on the next Commit.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// RevokeAll deletes every session belonging to the identity, covering the
// "global" sign-out scope. Best effort: a failed revocation never blocks the
// local sign-out.
func (sm *SessionManager) RevokeAll(ctx context.Context, identityID string) error {
	ids, err := sm.client.SMembers(ctx, sm.indexKey(identityID)).Result()
	if err != nil {
		return err
	}
	pipe := sm.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, sm.redisKey(id))
	}
	pipe.Del(ctx, sm.indexKey(identityID))
	_, err = pipe.Exec(ctx)
	return err
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// Session helpers

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	if s.values == nil {
		return ""
	}
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if s.values == nil {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// SetIdentity associates the session with an identity.
func (s *Session) SetIdentity(id string) {
	s.identityID = id
	s.dirty = true
}

// IdentityID returns the authenticated identity id, empty when anonymous.
func (s *Session) IdentityID() string {
	return s.identityID
}

// SetImpersonation records the impersonated role tag on the session.
func (s *Session) SetImpersonation(role string) {
	s.impersonate = role
	s.dirty = true
}

// ClearImpersonation removes the impersonation marker.
func (s *Session) ClearImpersonation() {
	if s.impersonate == "" {
		return
	}
	s.impersonate = ""
	s.dirty = true
}

// Impersonation returns the impersonated role tag, empty when none.
func (s *Session) Impersonation() string {
	return s.impersonate
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:     sm.generateSessionID(),
		values: make(map[string]string),
		isNew:  true,
		dirty:  true,
	}
}

func (sm *SessionManager) deleteSession(ctx context.Context, sess *Session) error {
	pipe := sm.client.Pipeline()
	pipe.Del(ctx, sm.redisKey(sess.ID))
	if sess.identityID != "" {
		pipe.SRem(ctx, sm.indexKey(sess.identityID), sess.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (sm *SessionManager) redisKey(id string) string {
	return "session:" + id
}

func (sm *SessionManager) indexKey(identityID string) string {
	return "identity_sessions:" + identityID
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	if len(sm.secret) > 0 {
		for i := range b {
			b[i] ^= sm.secret[i%len(sm.secret)]
		}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
