package billing

import "time"

// InvoiceLineInput is one charge on a new invoice.
type InvoiceLineInput struct {
	Description string  `json:"description" validate:"required,max=240"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitAmount  float64 `json:"unit_amount" validate:"required,gt=0"`
}

// CreateInvoiceRequest drafts an invoice against a lease.
type CreateInvoiceRequest struct {
	LeaseID  int64              `json:"lease_id" validate:"required,gt=0"`
	Currency string             `json:"currency" validate:"required,len=3"`
	DueAt    time.Time          `json:"due_at" validate:"required"`
	Lines    []InvoiceLineInput `json:"lines" validate:"required,min=1,dive"`
}

// RecordPaymentRequest records money received against an invoice. The
// idempotency key lets the SPA retry a submit without double-charging.
type RecordPaymentRequest struct {
	Amount         float64   `json:"amount" validate:"required,gt=0"`
	Method         string    `json:"method" validate:"required,oneof=bank_transfer card cash cheque"`
	Reference      string    `json:"reference" validate:"omitempty,max=120"`
	ReceivedAt     time.Time `json:"received_at"`
	IdempotencyKey string    `json:"idempotency_key" validate:"required,min=8,max=120"`
}

// ListInvoicesFilter narrows the invoice listing.
type ListInvoicesFilter struct {
	LeaseID     int64
	TenantID    int64
	Status      InvoiceStatus
	OverdueOnly bool
	Page        int
	PerPage     int
}
