package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rentfold/rentfold/internal/access"
	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
)

// RoleChecker verifies real role grants, bypassing any impersonation marker.
// Satisfied by access.PGGrantStore.
type RoleChecker interface {
	HasRole(ctx context.Context, identityID string, role access.Role) (bool, error)
}

type Handler struct {
	logger    *slog.Logger
	service   *Service
	audit     *shared.AuditLogger
	roles     RoleChecker
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, audit *shared.AuditLogger, roles RoleChecker) *Handler {
	return &Handler{logger: logger, service: service, audit: audit, roles: roles, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users", h.List)
	r.Get("/users/{id}", h.Show)
	r.Post("/users/{id}/activate", h.Activate)
	r.Post("/users/{id}/deactivate", h.Deactivate)
	r.Post("/users/{id}/roles", h.Grant)
	r.Delete("/users/{id}/roles/{role}", h.Revoke)
	r.Post("/impersonate", h.StartImpersonation)
}

// MountImpersonationExit registers the stop endpoint outside the guarded API
// tree. An impersonating admin is routed as the impersonated role, so the way
// back must not sit behind the admin namespace.
func (h *Handler) MountImpersonationExit(r chi.Router) {
	r.Post("/impersonate/stop", h.StopImpersonation)
}

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

type impersonateRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	items, total, err := h.service.List(r.Context(), r.URL.Query().Get("search"), page, perPage)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{Items: items, Total: total, Page: page})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := userID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	u, err := h.service.SetActive(r.Context(), id, active, access.SessionIdentity(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := access.ParseRole(req.Role)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
		return
	}
	u, err := h.service.Grant(r.Context(), id, role, access.SessionIdentity(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	role, err := access.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
		return
	}
	u, err := h.service.Revoke(r.Context(), id, role, access.SessionIdentity(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// StartImpersonation stores the impersonated role on the admin's session.
// The guard routes subsequent requests as that role while the audit trail
// keeps pointing at the real identity.
func (h *Handler) StartImpersonation(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.IdentityID() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no identity on session")
		return
	}
	var req impersonateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := access.ParseRole(req.Role)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
		return
	}
	if role.IsAdmin() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "cannot impersonate an admin role")
		return
	}
	if h.roles != nil {
		isAdmin, err := h.roles.HasRole(r.Context(), sess.IdentityID(), access.RoleAdmin)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		if !isAdmin {
			isSystem, err := h.roles.HasRole(r.Context(), sess.IdentityID(), access.RoleSystem)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			if !isSystem {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "impersonation requires an admin grant")
				return
			}
		}
	}

	sess.SetImpersonation(string(role))
	if h.audit != nil {
		_ = h.audit.Record(r.Context(), shared.AuditLog{
			ActorID:  sess.IdentityID(),
			Action:   "impersonation.start",
			Entity:   "identity",
			EntityID: sess.IdentityID(),
			Meta:     map[string]any{"role": string(role)},
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"role": string(role), "location": access.PathRoot})
}

// StopImpersonation clears the marker and restores the admin's real role.
func (h *Handler) StopImpersonation(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.IdentityID() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no identity on session")
		return
	}
	sess.ClearImpersonation()
	if h.audit != nil {
		_ = h.audit.Record(r.Context(), shared.AuditLog{
			ActorID:  sess.IdentityID(),
			Action:   "impersonation.stop",
			Entity:   "identity",
			EntityID: sess.IdentityID(),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"location": access.PathAdminHome})
}

func userID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
