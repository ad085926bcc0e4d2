package billing

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rentfold/rentfold/internal/leases"
	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
)

// LeaseDirectory resolves leases when drafting invoices.
type LeaseDirectory interface {
	Get(ctx context.Context, id int64) (*leases.Lease, error)
}

// DocumentRenderer turns an invoice into a landlord-branded PDF. Implemented
// by the branding package so billing stays free of presentation concerns.
type DocumentRenderer interface {
	RenderInvoice(ctx context.Context, inv *Invoice, payments []Payment) ([]byte, error)
}

// Idempotency guards payment submissions against SPA retries.
type Idempotency interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

type Service struct {
	repo        Repository
	leaseDir    LeaseDirectory
	idempotency Idempotency
	audit       *shared.AuditLogger
	now         func() time.Time
}

func NewService(repo Repository, leaseDir LeaseDirectory, idempotency Idempotency, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, leaseDir: leaseDir, idempotency: idempotency, audit: audit, now: time.Now}
}

// CreateInvoice drafts an invoice against an active lease. Line amounts are
// computed server-side; client-sent totals are never trusted.
func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest, actorID string) (*Invoice, error) {
	lease, err := s.leaseDir.Get(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}
	if !lease.Open() {
		return nil, errors.Join(httpx.ErrConflict, errors.New("lease is not active"))
	}

	now := s.now()
	number, err := s.repo.NextNumber(ctx, now.Year())
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		Number:   number,
		LeaseID:  lease.ID,
		TenantID: lease.TenantID,
		Status:   InvoiceDraft,
		Currency: req.Currency,
		DueAt:    req.DueAt,
	}
	for _, line := range req.Lines {
		amount := line.Quantity * line.UnitAmount
		inv.Lines = append(inv.Lines, InvoiceLine{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitAmount:  line.UnitAmount,
			Amount:      amount,
		})
		inv.Total += amount
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "invoice.create", inv.ID, nil)
	return inv, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.FindInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListInvoicesFilter) ([]Invoice, int, error) {
	return s.repo.List(ctx, filter)
}

// Issue moves a draft invoice to ISSUED and stamps the issue time.
func (s *Service) Issue(ctx context.Context, id int64, actorID string) (*Invoice, error) {
	inv, err := s.repo.FindInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != InvoiceDraft {
		return nil, errors.Join(httpx.ErrConflict, errors.New("only draft invoices can be issued"))
	}
	issuedAt := s.now()
	if err := s.repo.SetStatus(ctx, id, InvoiceIssued, &issuedAt); err != nil {
		return nil, err
	}
	inv.Status = InvoiceIssued
	inv.IssuedAt = &issuedAt
	s.recordAudit(ctx, actorID, "invoice.issue", inv.ID, nil)
	return inv, nil
}

// Void cancels an invoice. Paid invoices cannot be voided.
func (s *Service) Void(ctx context.Context, id int64, actorID string) (*Invoice, error) {
	inv, err := s.repo.FindInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == InvoicePaid {
		return nil, errors.Join(httpx.ErrConflict, errors.New("paid invoices cannot be voided"))
	}
	if inv.Paid > 0 {
		return nil, errors.Join(httpx.ErrConflict, errors.New("invoice has recorded payments"))
	}
	if err := s.repo.SetStatus(ctx, id, InvoiceVoid, nil); err != nil {
		return nil, err
	}
	inv.Status = InvoiceVoid
	s.recordAudit(ctx, actorID, "invoice.void", inv.ID, nil)
	return inv, nil
}

// RecordPayment applies a payment to an issued invoice. The idempotency key
// is consumed first and released again if the payment fails, so a retry with
// the same key either succeeds once or reports the original conflict.
func (s *Service) RecordPayment(ctx context.Context, invoiceID int64, req RecordPaymentRequest, actorID string) (*Invoice, error) {
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, req.IdempotencyKey, "billing.payment"); err != nil {
			return nil, err
		}
	}

	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = s.now()
	}
	payment := &Payment{
		InvoiceID:  invoiceID,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		ReceivedAt: receivedAt,
	}
	inv, err := s.repo.RecordPayment(ctx, payment)
	if err != nil {
		if s.idempotency != nil {
			_ = s.idempotency.Delete(ctx, req.IdempotencyKey)
		}
		return nil, err
	}
	s.recordAudit(ctx, actorID, "payment.record", payment.ID, map[string]any{
		"invoice_id": invoiceID,
		"amount":     req.Amount,
	})
	return inv, nil
}

func (s *Service) Payments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	if _, err := s.repo.FindInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, invoiceID)
}

// Overdue lists issued invoices past their due date.
func (s *Service) Overdue(ctx context.Context) ([]Invoice, error) {
	return s.repo.Overdue(ctx, s.now())
}

// Aging summarises overdue balances into receivable buckets.
func (s *Service) Aging(ctx context.Context) ([]AgingBucket, error) {
	return s.repo.Aging(ctx, s.now())
}

func (s *Service) recordAudit(ctx context.Context, actorID, action string, id int64, meta map[string]any) {
	if s.audit == nil || actorID == "" {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "invoice",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
