package billing

import (
	"errors"
	"fmt"
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
	renderer  DocumentRenderer
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, renderer DocumentRenderer) *Handler {
	return &Handler{logger: logger, service: service, renderer: renderer, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/overdue", h.Overdue)
	r.Get("/aging", h.Aging)
	r.Get("/{id}", h.Show)
	r.Post("/{id}/issue", h.Issue)
	r.Post("/{id}/void", h.Void)
	r.Get("/{id}/payments", h.Payments)
	r.Post("/{id}/payments", h.RecordPayment)
	r.Get("/{id}/pdf", h.PDF)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	filter := ListInvoicesFilter{Page: page, PerPage: perPage}
	if raw := r.URL.Query().Get("lease_id"); raw != "" {
		filter.LeaseID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := r.URL.Query().Get("tenant_id"); raw != "" {
		filter.TenantID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		filter.Status = InvoiceStatus(raw)
	}
	filter.OverdueOnly = r.URL.Query().Get("overdue") == "true"

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{Items: items, Total: total, Page: page})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.CreateInvoice(r.Context(), req, access.SessionIdentity(r))
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := invoiceID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) Issue(w http.ResponseWriter, r *http.Request) {
	id, err := invoiceID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	inv, err := h.service.Issue(r.Context(), id, access.SessionIdentity(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	id, err := invoiceID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	inv, err := h.service.Void(r.Context(), id, access.SessionIdentity(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	id, err := invoiceID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	payments, err := h.service.Payments(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{Items: payments, Total: len(payments)})
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := invoiceID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.RecordPayment(r.Context(), id, req, access.SessionIdentity(r))
	if err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			httpx.Problem(w, http.StatusConflict, "Duplicate Request", "payment already recorded")
			return
		}
		h.logger.Error("record payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) Overdue(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.Overdue(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{Items: invoices, Total: len(invoices)})
}

func (h *Handler) Aging(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.service.Aging(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, buckets)
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "document rendering is not configured")
		return
	}
	id, err := invoiceID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payments, err := h.service.Payments(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.renderer.RenderInvoice(r.Context(), inv, payments)
	if err != nil {
		h.logger.Error("render invoice pdf", slog.Any("error", err), slog.Int64("invoice_id", id))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "could not render invoice document")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", inv.Number))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func invoiceID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
