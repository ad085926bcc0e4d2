package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
)

// Handler wires JSON endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/register", h.Register)
	r.Post("/logout", h.Logout)
	r.Get("/session", h.ReadSession)
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	IdentityID    string `json:"identity_id,omitempty"`
	Email         string `json:"email,omitempty"`
	CSRFToken     string `json:"csrf_token,omitempty"`
}

// Login authenticates credentials and binds the session to the identity.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	identity, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetIdentity(identity.ID.String())
	sess.ClearImpersonation()
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, identity.ID.String(), expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	httpx.JSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		IdentityID:    identity.ID.String(),
		Email:         identity.Email,
		CSRFToken:     csrfToken,
	})
}

// Register creates a new identity. Role grants are assigned separately by an
// admin; a fresh signup has no role and lands on the neutral dashboard.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	identity, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == ErrEmailTaken {
			httpx.Problem(w, http.StatusConflict, "Duplicate", "email already registered")
			return
		}
		h.logger.Error("register identity", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	httpx.JSON(w, http.StatusCreated, sessionResponse{IdentityID: identity.ID.String(), Email: identity.Email})
}

type logoutRequest struct {
	Global bool `json:"global"`
}

// Logout destroys the session. The local session always dies, even when the
// remote revocation fails: sign-out must be irreversible from the user's
// perspective under any network condition. The response always points the
// client at the auth path.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	_ = httpx.DecodeJSON(r, &req)

	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		identityID := sess.IdentityID()
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session record", slog.Any("error", err))
		}
		if req.Global && identityID != "" {
			if err := h.sessionManager.RevokeAll(r.Context(), identityID); err != nil {
				h.logger.Warn("global sign-out revocation", slog.Any("error", err))
			}
			if err := h.service.RemoveAllSessions(r.Context(), identityID); err != nil {
				h.logger.Warn("remove session records", slog.Any("error", err))
			}
		}
		h.sessionManager.Destroy(sess)
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"location": "/auth"})
}

// ReadSession reports the current session, mirroring the auth provider's
// session-read call: identity when present, an unauthenticated marker
// otherwise, never an error.
func (h *Handler) ReadSession(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.IdentityID() == "" {
		httpx.JSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}

	resp := sessionResponse{Authenticated: true, IdentityID: sess.IdentityID()}
	if identity, err := h.service.Lookup(r.Context(), sess.IdentityID()); err == nil {
		resp.Email = identity.Email
	}
	if token, err := h.csrfManager.EnsureToken(r.Context(), sess); err == nil {
		resp.CSRFToken = token
	}
	httpx.JSON(w, http.StatusOK, resp)
}
