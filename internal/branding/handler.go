package branding

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rentfold/rentfold/internal/access"
	"github.com/rentfold/rentfold/internal/platform/httpx"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers branding routes. The profile is keyed by the signed-in
// landlord's identity.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Show)
	r.Put("/", h.Upsert)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	landlordID, err := uuid.Parse(access.SessionIdentity(r))
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no identity on session")
		return
	}
	p, err := h.service.Get(r.Context(), landlordID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	landlordID, err := uuid.Parse(access.SessionIdentity(r))
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no identity on session")
		return
	}
	var req UpsertProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.Upsert(r.Context(), landlordID, req, landlordID.String())
	if err != nil {
		h.logger.Error("upsert branding", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
