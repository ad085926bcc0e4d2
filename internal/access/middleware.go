package access

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
)

// Guard enforces the route decision table on the server side. The SPA mirrors
// the same decisions client-side for instant navigation; the middleware is
// what actually keeps a forged navigation out of a namespace.
type Guard struct {
	Resolver *Resolver
	Logger   *slog.Logger
	Metrics  DenialCounter
}

// DenialCounter records rejected requests. Satisfied by observability.Metrics.
type DenialCounter interface {
	CountGuardDenial(decision string)
}

// apiPrefix is stripped from request paths so API routes are authorized
// under the UI namespace they serve.
const apiPrefix = "/api"

// Protect authorizes every request in a route group against the guard
// decision table. Anything but Allow is rejected with the redirect target the
// SPA must apply as a replace navigation.
func (g Guard) Protect() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := g.SnapshotFromRequest(r)
			decision := Decide(uiPath(r.URL.Path), snap)
			if decision == DecisionAllow {
				next.ServeHTTP(w, r)
				return
			}

			if g.Metrics != nil {
				g.Metrics.CountGuardDenial(decision.String())
			}
			status := http.StatusForbidden
			if decision == DecisionRedirectAuth {
				status = http.StatusUnauthorized
			}
			if target := decision.Target(); target != "" {
				w.Header().Set("Location", target)
			}
			httpx.JSON(w, status, map[string]string{
				"decision": decision.String(),
				"location": decision.Target(),
			})
		})
	}
}

// SnapshotFromRequest assembles the immutable guard input for one request.
// Role resolution failures degrade to "role unknown"; they never propagate.
func (g Guard) SnapshotFromRequest(r *http.Request) Snapshot {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.IdentityID() == "" {
		return Snapshot{}
	}

	identityID := sess.IdentityID()
	effective, known, err := g.Resolver.Resolve(r.Context(), identityID, sess.Impersonation())
	if err != nil {
		if g.Logger != nil {
			g.Logger.Warn("role resolution failed", slog.String("identity", identityID), slog.Any("error", err))
		}
		return Snapshot{IdentityID: identityID}
	}

	// Discard the resolution if the session identity changed underneath the
	// fetch; the next request resolves the new identity from scratch.
	if current := sess.IdentityID(); current != identityID {
		return Snapshot{IdentityID: current}
	}

	return Snapshot{IdentityID: identityID, Role: effective, RoleKnown: known}
}

func uiPath(path string) string {
	if strings.HasPrefix(path, apiPrefix+"/") {
		path = strings.TrimPrefix(path, apiPrefix)
	}
	if path == "" || path == apiPrefix {
		return PathRoot
	}
	return path
}
