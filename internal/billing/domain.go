// Package billing manages rent invoices and payments.
package billing

import "time"

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "DRAFT"
	InvoiceIssued InvoiceStatus = "ISSUED"
	InvoicePaid   InvoiceStatus = "PAID"
	InvoiceVoid   InvoiceStatus = "VOID"
)

// Invoice is a bill raised against a lease. Amounts are stored per line and
// rolled up into Total at write time.
type Invoice struct {
	ID        int64         `json:"id"`
	Number    string        `json:"number"`
	LeaseID   int64         `json:"lease_id"`
	TenantID  int64         `json:"tenant_id"`
	Status    InvoiceStatus `json:"status"`
	Currency  string        `json:"currency"`
	Total     float64       `json:"total"`
	Paid      float64       `json:"paid"`
	IssuedAt  *time.Time    `json:"issued_at,omitempty"`
	DueAt     time.Time     `json:"due_at"`
	Lines     []InvoiceLine `json:"lines,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// InvoiceLine is a single charge on an invoice.
type InvoiceLine struct {
	ID          int64   `json:"id"`
	InvoiceID   int64   `json:"invoice_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitAmount  float64 `json:"unit_amount"`
	Amount      float64 `json:"amount"`
}

// Payment is money received against an invoice.
type Payment struct {
	ID         int64     `json:"id"`
	InvoiceID  int64     `json:"invoice_id"`
	Amount     float64   `json:"amount"`
	Method     string    `json:"method"`
	Reference  string    `json:"reference,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Outstanding is the unpaid remainder of the invoice.
func (i *Invoice) Outstanding() float64 {
	return i.Total - i.Paid
}

// Overdue reports whether an issued invoice has passed its due date unpaid.
func (i *Invoice) Overdue(now time.Time) bool {
	return i.Status == InvoiceIssued && now.After(i.DueAt)
}

// AgingBucket groups overdue receivables by how long they have been due.
type AgingBucket struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Balance float64 `json:"balance"`
}
