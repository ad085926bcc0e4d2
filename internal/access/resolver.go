package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrRoleLookup indicates the upstream grant fetch failed. Callers must treat
// the role as unknown and deny privileged namespaces without failing the app
// shell.
var ErrRoleLookup = errors.New("access: role lookup failed")

// GrantStore answers role-grant queries for an identity.
type GrantStore interface {
	GrantsFor(ctx context.Context, identityID string) ([]Role, error)
	HasRole(ctx context.Context, identityID string, role Role) (bool, error)
}

// Resolver derives the effective role for an identity. Concurrent lookups
// for the same identity are collapsed with singleflight, and results are
// cached briefly in Redis so per-request resolution does not hammer the
// grant store.
type Resolver struct {
	store  GrantStore
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewResolver constructs a Resolver. cache may be nil in tests.
func NewResolver(store GrantStore, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Resolver {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Resolver{store: store, cache: cache, ttl: ttl, logger: logger}
}

// Resolve returns the effective role for the identity. When the session
// carries an impersonation marker the impersonated role wins; otherwise the
// grants collapse by precedence. The boolean is false when the identity
// holds no grants.
//
// The grant fetch always runs, even under impersonation, and the marker is
// honored only while the fetched grants still include an admin role. An
// identity whose admin grant was revoked mid-session routes on its real
// grants from the next resolve.
func (r *Resolver) Resolve(ctx context.Context, identityID, impersonation string) (EffectiveRole, bool, error) {
	if identityID == "" {
		return EffectiveRole{}, false, nil
	}

	grants, err := r.grantsFor(ctx, identityID)
	if err != nil {
		return EffectiveRole{}, false, fmt.Errorf("%w: %w", ErrRoleLookup, err)
	}

	if impersonation != "" {
		role, err := ParseRole(impersonation)
		switch {
		case err != nil:
			// Corrupt marker: fall back to the real grants.
			if r.logger != nil {
				r.logger.Warn("invalid impersonation marker", slog.String("identity", identityID), slog.String("marker", impersonation))
			}
		case !holdsAdminGrant(grants):
			if r.logger != nil {
				r.logger.Warn("impersonation marker without admin grant", slog.String("identity", identityID))
			}
		default:
			return Impersonated(role), true, nil
		}
	}

	role, ok := Collapse(grants)
	if !ok {
		return EffectiveRole{}, false, nil
	}
	return Real(role), true, nil
}

// Invalidate drops the cached grants for an identity. Called whenever grants
// change so the next navigation sees the new role.
func (r *Resolver) Invalidate(ctx context.Context, identityID string) {
	if r.cache == nil || identityID == "" {
		return
	}
	if err := r.cache.Del(ctx, r.cacheKey(identityID)).Err(); err != nil && r.logger != nil {
		r.logger.Warn("invalidate grants cache", slog.Any("error", err))
	}
}

func holdsAdminGrant(grants []Role) bool {
	for _, g := range grants {
		if g.IsAdmin() {
			return true
		}
	}
	return false
}

func (r *Resolver) grantsFor(ctx context.Context, identityID string) ([]Role, error) {
	if r.cache != nil {
		if data, err := r.cache.Get(ctx, r.cacheKey(identityID)).Bytes(); err == nil {
			var cached []Role
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	// Singleflight keys in-flight fetches by identity: a result can only
	// ever be shared with callers asking about the same identity, so a
	// lookup started for a previous user is never applied to the next one.
	result, err, _ := r.group.Do(identityID, func() (any, error) {
		grants, err := r.store.GrantsFor(ctx, identityID)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			if data, err := json.Marshal(grants); err == nil {
				if err := r.cache.Set(ctx, r.cacheKey(identityID), data, r.ttl).Err(); err != nil && r.logger != nil {
					r.logger.Warn("cache grants", slog.Any("error", err))
				}
			}
		}
		return grants, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Role), nil
}

func (r *Resolver) cacheKey(identityID string) string {
	return "role_grants:" + identityID
}
