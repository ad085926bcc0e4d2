package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentfold/rentfold/internal/platform/db"
	"github.com/rentfold/rentfold/internal/platform/httpx"
)

// ErrDuplicateNumber means an invoice number collided; the caller should
// retry with a fresh number.
var ErrDuplicateNumber = errors.New("billing: invoice number already used")

// Repository persists invoices and payments.
type Repository interface {
	NextNumber(ctx context.Context, year int) (string, error)
	CreateInvoice(ctx context.Context, inv *Invoice) error
	FindInvoice(ctx context.Context, id int64) (*Invoice, error)
	SetStatus(ctx context.Context, id int64, status InvoiceStatus, issuedAt *time.Time) error
	List(ctx context.Context, filter ListInvoicesFilter) ([]Invoice, int, error)
	RecordPayment(ctx context.Context, p *Payment) (*Invoice, error)
	ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error)
	Overdue(ctx context.Context, now time.Time) ([]Invoice, error)
	Aging(ctx context.Context, now time.Time) ([]AgingBucket, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const invoiceColumns = `id, number, lease_id, tenant_id, status, currency, total, paid, issued_at, due_at, created_at, updated_at`

// mapInvoiceInsertErr translates a number-uniqueness violation into
// ErrDuplicateNumber so the service can retry with a fresh sequence value.
func mapInvoiceInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_invoices_number" {
		return ErrDuplicateNumber
	}
	return err
}

func (r *PGRepository) NextNumber(ctx context.Context, year int) (string, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%06d", year, seq), nil
}

func (r *PGRepository) CreateInvoice(ctx context.Context, inv *Invoice) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO invoices (number, lease_id, tenant_id, status, currency, total, paid, due_at)
			VALUES ($1, $2, $3, $4, $5, $6, 0, $7)
			RETURNING id, created_at, updated_at`,
			inv.Number, inv.LeaseID, inv.TenantID, string(inv.Status), inv.Currency, inv.Total, inv.DueAt)
		if err := row.Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return mapInvoiceInsertErr(err)
		}
		for i := range inv.Lines {
			line := &inv.Lines[i]
			line.InvoiceID = inv.ID
			if err := tx.QueryRow(ctx, `
				INSERT INTO invoice_lines (invoice_id, description, quantity, unit_amount, amount)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`,
				line.InvoiceID, line.Description, line.Quantity, line.UnitAmount, line.Amount).Scan(&line.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PGRepository) FindInvoice(ctx context.Context, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit_amount, amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line InvoiceLine
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.Description, &line.Quantity,
			&line.UnitAmount, &line.Amount); err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, line)
	}
	return inv, rows.Err()
}

func (r *PGRepository) SetStatus(ctx context.Context, id int64, status InvoiceStatus, issuedAt *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices
		SET status = $2, issued_at = COALESCE($3, issued_at), updated_at = NOW()
		WHERE id = $1`,
		id, string(status), issuedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, filter ListInvoicesFilter) ([]Invoice, int, error) {
	conds := []string{"1=1"}
	args := []any{}
	if filter.LeaseID > 0 {
		args = append(args, filter.LeaseID)
		conds = append(conds, fmt.Sprintf("lease_id = $%d", len(args)))
	}
	if filter.TenantID > 0 {
		args = append(args, filter.TenantID)
		conds = append(conds, fmt.Sprintf("tenant_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.OverdueOnly {
		args = append(args, string(InvoiceIssued))
		conds = append(conds, fmt.Sprintf("status = $%d AND due_at < NOW()", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.PerPage
	if limit <= 0 {
		limit = 25
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE %s ORDER BY due_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Invoice, 0, limit)
	for rows.Next() {
		inv, err := scanInvoiceRows(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *inv)
	}
	return out, total, rows.Err()
}

// RecordPayment inserts the payment and rolls the amount into the invoice
// under a serializable transaction, so two concurrent payments cannot both
// observe the same outstanding balance.
func (r *PGRepository) RecordPayment(ctx context.Context, p *Payment) (*Invoice, error) {
	var inv *Invoice
	err := db.WithSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, p.InvoiceID)
		current, err := scanInvoice(row)
		if err != nil {
			return err
		}
		if current.Status != InvoiceIssued {
			return errors.Join(httpx.ErrConflict, errors.New("invoice is not open for payment"))
		}
		if p.Amount > current.Outstanding() {
			return errors.Join(httpx.ErrValidation, errors.New("payment exceeds outstanding balance"))
		}

		if err := tx.QueryRow(ctx, `
			INSERT INTO payments (invoice_id, amount, method, reference, received_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`,
			p.InvoiceID, p.Amount, p.Method, p.Reference, p.ReceivedAt).Scan(&p.ID, &p.CreatedAt); err != nil {
			return err
		}

		current.Paid += p.Amount
		if current.Outstanding() <= 0 {
			current.Status = InvoicePaid
		}
		if _, err := tx.Exec(ctx, `
			UPDATE invoices SET paid = $2, status = $3, updated_at = NOW() WHERE id = $1`,
			current.ID, current.Paid, string(current.Status)); err != nil {
			return err
		}
		inv = current
		return nil
	})
	return inv, err
}

func (r *PGRepository) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, amount, method, reference, received_at, created_at
		FROM payments WHERE invoice_id = $1 ORDER BY received_at`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference,
			&p.ReceivedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepository) Overdue(ctx context.Context, now time.Time) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE status = $1 AND due_at < $2 ORDER BY due_at`, string(InvoiceIssued), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoiceRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// Aging buckets overdue balances by days past due.
func (r *PGRepository) Aging(ctx context.Context, now time.Time) ([]AgingBucket, error) {
	overdue, err := r.Overdue(ctx, now)
	if err != nil {
		return nil, err
	}
	return BucketByAge(overdue, now), nil
}

// BucketByAge splits overdue invoices into the standard receivable buckets.
func BucketByAge(invoices []Invoice, now time.Time) []AgingBucket {
	buckets := []AgingBucket{
		{Label: "0-30"},
		{Label: "31-60"},
		{Label: "61-90"},
		{Label: "90+"},
	}
	for _, inv := range invoices {
		days := int(now.Sub(inv.DueAt).Hours() / 24)
		idx := 3
		switch {
		case days <= 30:
			idx = 0
		case days <= 60:
			idx = 1
		case days <= 90:
			idx = 2
		}
		buckets[idx].Count++
		buckets[idx].Balance += inv.Outstanding()
	}
	return buckets
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.LeaseID, &inv.TenantID, &inv.Status, &inv.Currency,
		&inv.Total, &inv.Paid, &inv.IssuedAt, &inv.DueAt, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanInvoiceRows(rows pgx.Rows) (*Invoice, error) {
	var inv Invoice
	err := rows.Scan(&inv.ID, &inv.Number, &inv.LeaseID, &inv.TenantID, &inv.Status, &inv.Currency,
		&inv.Total, &inv.Paid, &inv.IssuedAt, &inv.DueAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
