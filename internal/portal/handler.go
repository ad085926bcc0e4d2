// Package portal is the tenant-facing surface. Every handler resolves the
// signed-in identity to its tenant profile first and scopes all reads to it,
// so a tenant can never address another tenant's records by id.
package portal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rentfold/rentfold/internal/access"
	"github.com/rentfold/rentfold/internal/billing"
	"github.com/rentfold/rentfold/internal/leases"
	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
	"github.com/rentfold/rentfold/internal/tenants"
	"github.com/rentfold/rentfold/internal/tickets"
)

type Handler struct {
	logger    *slog.Logger
	tenants   *tenants.Service
	leases    *leases.Service
	billing   *billing.Service
	tickets   *tickets.Service
	renderer  billing.DocumentRenderer
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, tenantSvc *tenants.Service, leaseSvc *leases.Service, billingSvc *billing.Service, ticketSvc *tickets.Service, renderer billing.DocumentRenderer) *Handler {
	return &Handler{
		logger:    logger,
		tenants:   tenantSvc,
		leases:    leaseSvc,
		billing:   billingSvc,
		tickets:   ticketSvc,
		renderer:  renderer,
		validator: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profile", h.Profile)
	r.Get("/lease", h.Lease)
	r.Get("/invoices", h.Invoices)
	r.Get("/invoices/{id}", h.Invoice)
	r.Get("/invoices/{id}/pdf", h.InvoicePDF)
	r.Get("/tickets", h.Tickets)
	r.Post("/tickets", h.OpenTicket)
	r.Get("/tickets/{id}/comments", h.TicketComments)
	r.Post("/tickets/{id}/comments", h.CommentTicket)
}

// profile resolves the caller's tenant record, the anchor for all scoping.
func (h *Handler) profile(r *http.Request) (*tenants.TenantProfile, error) {
	identityID, err := uuid.Parse(access.SessionIdentity(r))
	if err != nil {
		return nil, httpx.ErrUnauthorized
	}
	profile, err := h.tenants.GetByIdentity(r.Context(), identityID)
	if errors.Is(err, httpx.ErrNotFound) {
		return nil, errors.Join(httpx.ErrForbidden, errors.New("identity has no tenant profile"))
	}
	return profile, err
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profile(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) Lease(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profile(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	lease, err := h.leases.ActiveForTenant(r.Context(), profile.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lease)
}

func (h *Handler) Invoices(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profile(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, perPage := shared.PageFromRequest(r)
	invoices, total, err := h.billing.List(r.Context(), billing.ListInvoicesFilter{
		TenantID: profile.ID,
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{Items: invoices, Total: total, Page: page})
}

// invoiceFor fetches an invoice and verifies it belongs to the tenant.
func (h *Handler) invoiceFor(r *http.Request, profile *tenants.TenantProfile) (*billing.Invoice, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, errors.Join(httpx.ErrValidation, errors.New("invalid invoice id"))
	}
	inv, err := h.billing.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if inv.TenantID != profile.ID {
		// Report not-found rather than forbidden so ids stay unguessable.
		return nil, httpx.ErrNotFound
	}
	return inv, nil
}

func (h *Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profile(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.invoiceFor(r, profile)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "document rendering is not configured")
		return
	}
	profile, err := h.profile(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.invoiceFor(r, profile)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payments, err := h.billing.Payments(r.Context(), inv.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.renderer.RenderInvoice(r.Context(), inv, payments)
	if err != nil {
		h.logger.Error("render tenant invoice pdf", slog.Any("error", err), slog.Int64("invoice_id", inv.ID))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "could not render invoice document")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", inv.Number))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) Tickets(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profile(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, perPage := shared.PageFromRequest(r)
	items, total, err := h.tickets.List(r.Context(), tickets.ListTicketsFilter{
		TenantID: profile.ID,
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{Items: items, Total: total, Page: page})
}

type openTicketRequest struct {
	Subject  string `json:"subject" validate:"required,min=3,max=160"`
	Body     string `json:"body" validate:"required,min=3,max=8000"`
	Priority string `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
}

func (h *Handler) OpenTicket(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profile(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req openTicketRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	identityID := access.SessionIdentity(r)
	ticket, err := h.tickets.Open(r.Context(), tickets.CreateTicketRequest{
		TenantID: profile.ID,
		Subject:  req.Subject,
		Body:     req.Body,
		Priority: tickets.TicketPriority(req.Priority),
	}, identityID)
	if err != nil {
		h.logger.Error("open portal ticket", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ticket)
}

// ticketFor fetches a ticket and verifies ownership.
func (h *Handler) ticketFor(r *http.Request, profile *tenants.TenantProfile) (*tickets.Ticket, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, errors.Join(httpx.ErrValidation, errors.New("invalid ticket id"))
	}
	ticket, err := h.tickets.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if ticket.TenantID != profile.ID {
		return nil, httpx.ErrNotFound
	}
	return ticket, nil
}

func (h *Handler) TicketComments(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profile(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ticket, err := h.ticketFor(r, profile)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	comments, err := h.tickets.Comments(r.Context(), ticket.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{Items: comments, Total: len(comments)})
}

type commentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=8000"`
}

func (h *Handler) CommentTicket(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profile(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ticket, err := h.ticketFor(r, profile)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req commentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	authorID, err := uuid.Parse(access.SessionIdentity(r))
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no identity on session")
		return
	}
	comment, err := h.tickets.Comment(r.Context(), ticket.ID, authorID, req.Body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, comment)
}
