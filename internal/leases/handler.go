package leases

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rentfold/rentfold/internal/access"
	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Patch("/{id}", h.Update)
	r.Post("/{id}/activate", h.Activate)
	r.Post("/{id}/end", h.End)
	r.Post("/{id}/terminate", h.Terminate)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	filter := ListLeasesFilter{Page: page, PerPage: perPage}
	if raw := r.URL.Query().Get("unit_id"); raw != "" {
		filter.UnitID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := r.URL.Query().Get("tenant_id"); raw != "" {
		filter.TenantID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		filter.Status = LeaseStatus(raw)
	}
	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list leases", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{Items: items, Total: total, Page: page})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	l, err := h.service.Create(r.Context(), req, access.SessionIdentity(r))
	if err != nil {
		h.logger.Error("create lease", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, l)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := leaseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid lease id")
		return
	}
	l, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, l)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := leaseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid lease id")
		return
	}
	var req UpdateLeaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	l, err := h.service.Update(r.Context(), id, req, access.SessionIdentity(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, l)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Activate)
}

func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.End)
}

func (h *Handler) Terminate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Terminate)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64, actorID string) (*Lease, error)) {
	id, err := leaseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid lease id")
		return
	}
	l, err := fn(r.Context(), id, access.SessionIdentity(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, l)
}

func leaseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
