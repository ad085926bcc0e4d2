package access

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGrantStore struct {
	grants map[string][]Role
	err    error
	calls  atomic.Int64
}

func (s *stubGrantStore) GrantsFor(ctx context.Context, identityID string) ([]Role, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.grants[identityID], nil
}

func (s *stubGrantStore) HasRole(ctx context.Context, identityID string, role Role) (bool, error) {
	for _, g := range s.grants[identityID] {
		if g == role {
			return true, nil
		}
	}
	return false, nil
}

func TestResolveCollapsesGrants(t *testing.T) {
	store := &stubGrantStore{grants: map[string][]Role{"u1": {RoleTenant, RoleManager}}}
	resolver := NewResolver(store, nil, time.Minute, nil)

	effective, known, err := resolver.Resolve(context.Background(), "u1", "")
	require.NoError(t, err)
	require.True(t, known)
	assert.Equal(t, Real(RoleManager), effective)
}

func TestResolveImpersonationWins(t *testing.T) {
	store := &stubGrantStore{grants: map[string][]Role{"admin-1": {RoleAdmin}}}
	resolver := NewResolver(store, nil, time.Minute, nil)

	effective, known, err := resolver.Resolve(context.Background(), "admin-1", "tenant")
	require.NoError(t, err)
	require.True(t, known)
	assert.Equal(t, Impersonated(RoleTenant), effective)
	// The real grants are still fetched so revoked identities cannot ride a marker.
	assert.Equal(t, int64(1), store.calls.Load())
}

func TestResolveInvalidMarkerFallsBack(t *testing.T) {
	store := &stubGrantStore{grants: map[string][]Role{"admin-1": {RoleAdmin}}}
	resolver := NewResolver(store, nil, time.Minute, nil)

	effective, known, err := resolver.Resolve(context.Background(), "admin-1", "root")
	require.NoError(t, err)
	require.True(t, known)
	assert.Equal(t, Real(RoleAdmin), effective)
}

func TestResolveMarkerWithoutAdminGrant(t *testing.T) {
	// A marker left over from a revoked admin must not elevate: the identity
	// routes on whatever grants the store still holds.
	store := &stubGrantStore{grants: map[string][]Role{"u1": {RoleTenant}}}
	resolver := NewResolver(store, nil, time.Minute, nil)

	effective, known, err := resolver.Resolve(context.Background(), "u1", "manager")
	require.NoError(t, err)
	require.True(t, known)
	assert.Equal(t, Real(RoleTenant), effective)
}

func TestResolveMarkerWithZeroGrants(t *testing.T) {
	store := &stubGrantStore{grants: map[string][]Role{}}
	resolver := NewResolver(store, nil, time.Minute, nil)

	_, known, err := resolver.Resolve(context.Background(), "u1", "tenant")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestResolveLookupFailure(t *testing.T) {
	store := &stubGrantStore{err: errors.New("connection refused")}
	resolver := NewResolver(store, nil, time.Minute, nil)

	_, known, err := resolver.Resolve(context.Background(), "u1", "")
	assert.ErrorIs(t, err, ErrRoleLookup)
	assert.False(t, known)
}

func TestResolveNoIdentity(t *testing.T) {
	resolver := NewResolver(&stubGrantStore{}, nil, time.Minute, nil)
	_, known, err := resolver.Resolve(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestResolveNoGrants(t *testing.T) {
	resolver := NewResolver(&stubGrantStore{grants: map[string][]Role{}}, nil, time.Minute, nil)
	_, known, err := resolver.Resolve(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestResolveCachesGrants(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := &stubGrantStore{grants: map[string][]Role{"u1": {RoleLandlord}}}
	resolver := NewResolver(store, client, time.Minute, nil)

	for i := 0; i < 3; i++ {
		effective, known, err := resolver.Resolve(context.Background(), "u1", "")
		require.NoError(t, err)
		require.True(t, known)
		assert.Equal(t, Real(RoleLandlord), effective)
	}
	assert.Equal(t, int64(1), store.calls.Load())

	resolver.Invalidate(context.Background(), "u1")
	_, _, err := resolver.Resolve(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), store.calls.Load())
}
