package access

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
)

// Handler exposes the guard to the SPA: a decision endpoint the client router
// consults, and a snapshot endpoint describing the current principal.
type Handler struct {
	logger *slog.Logger
	guard  Guard
}

// NewHandler constructs the access handler.
func NewHandler(logger *slog.Logger, guard Guard) *Handler {
	return &Handler{logger: logger, guard: guard}
}

// MountRoutes registers access endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/decision", h.Decision)
	r.Get("/me", h.Me)
}

type decisionResponse struct {
	Decision string `json:"decision"`
	Location string `json:"location,omitempty"`
}

// Decision evaluates the guard for an arbitrary path. The SPA calls this on
// navigation and applies redirects with a replace, not a push.
func (h *Handler) Decision(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "path query parameter required")
		return
	}
	if canonical, ok := CanonicalFor(path); ok {
		// Aliased paths resolve like their canonical target.
		path = canonical
	}
	decision := Decide(path, h.guard.SnapshotFromRequest(r))
	httpx.JSON(w, http.StatusOK, decisionResponse{
		Decision: decision.String(),
		Location: decision.Target(),
	})
}

type meResponse struct {
	IdentityID   string `json:"identity_id,omitempty"`
	Role         string `json:"role,omitempty"`
	Impersonated bool   `json:"impersonated,omitempty"`
	Namespace    string `json:"namespace,omitempty"`
}

// Me describes the current principal's effective role.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	snap := h.guard.SnapshotFromRequest(r)
	resp := meResponse{IdentityID: snap.IdentityID}
	if snap.RoleKnown {
		resp.Role = string(snap.Role.Role)
		resp.Impersonated = snap.Role.Impersonated
		switch {
		case snap.Role.Role == RoleTenant:
			resp.Namespace = NamespaceTenant.String()
		case snap.Role.Role.IsAdmin():
			resp.Namespace = NamespaceAdmin.String()
		default:
			resp.Namespace = NamespaceOperator.String()
		}
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// MountAliases registers permanent redirects for every legacy alias path.
// These must stay literal 1:1 redirects so bookmarks keep working.
func MountAliases(r chi.Router) {
	for legacy, canonical := range Aliases() {
		target := canonical
		r.Get(legacy, func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, target, http.StatusMovedPermanently)
		})
	}
}

// SessionIdentity is a convenience for handlers needing the current identity.
func SessionIdentity(r *http.Request) string {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return ""
	}
	return sess.IdentityID()
}
