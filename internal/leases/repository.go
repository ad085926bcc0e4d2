package leases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentfold/rentfold/internal/platform/httpx"
)

// Repository persists leases.
type Repository interface {
	Create(ctx context.Context, l *Lease) error
	FindByID(ctx context.Context, id int64) (*Lease, error)
	Update(ctx context.Context, l *Lease) error
	List(ctx context.Context, filter ListLeasesFilter) ([]Lease, int, error)
	ActiveForUnit(ctx context.Context, unitID int64) (*Lease, error)
	ActiveForTenant(ctx context.Context, tenantID int64) (*Lease, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const leaseColumns = `id, unit_id, tenant_id, start_date, end_date, rent_amount, deposit_amount, status, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, l *Lease) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leases (unit_id, tenant_id, start_date, end_date, rent_amount, deposit_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		l.UnitID, l.TenantID, l.StartDate, l.EndDate, l.RentAmount, l.DepositAmount, string(l.Status))
	return row.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Lease, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leaseColumns+` FROM leases WHERE id = $1`, id)
	return scanLease(row)
}

func (r *PGRepository) Update(ctx context.Context, l *Lease) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leases
		SET start_date = $2, end_date = $3, rent_amount = $4, deposit_amount = $5, status = $6, updated_at = NOW()
		WHERE id = $1`,
		l.ID, l.StartDate, l.EndDate, l.RentAmount, l.DepositAmount, string(l.Status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, filter ListLeasesFilter) ([]Lease, int, error) {
	conds := []string{"1=1"}
	args := []any{}
	if filter.UnitID > 0 {
		args = append(args, filter.UnitID)
		conds = append(conds, fmt.Sprintf("unit_id = $%d", len(args)))
	}
	if filter.TenantID > 0 {
		args = append(args, filter.TenantID)
		conds = append(conds, fmt.Sprintf("tenant_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leases WHERE `+where, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT %s FROM leases WHERE %s ORDER BY start_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		leaseColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Lease, 0, limit)
	for rows.Next() {
		var l Lease
		if err := rows.Scan(&l.ID, &l.UnitID, &l.TenantID, &l.StartDate, &l.EndDate,
			&l.RentAmount, &l.DepositAmount, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) ActiveForUnit(ctx context.Context, unitID int64) (*Lease, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+leaseColumns+` FROM leases WHERE unit_id = $1 AND status = $2`, unitID, string(LeaseActive))
	return scanLease(row)
}

func (r *PGRepository) ActiveForTenant(ctx context.Context, tenantID int64) (*Lease, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+leaseColumns+` FROM leases WHERE tenant_id = $1 AND status = $2 ORDER BY start_date DESC LIMIT 1`,
		tenantID, string(LeaseActive))
	return scanLease(row)
}

func scanLease(row pgx.Row) (*Lease, error) {
	var l Lease
	err := row.Scan(&l.ID, &l.UnitID, &l.TenantID, &l.StartDate, &l.EndDate,
		&l.RentAmount, &l.DepositAmount, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
