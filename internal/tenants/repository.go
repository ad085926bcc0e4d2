package tenants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentfold/rentfold/internal/platform/httpx"
)

// Repository persists tenant profiles.
type Repository interface {
	Create(ctx context.Context, t *TenantProfile) error
	FindByID(ctx context.Context, id int64) (*TenantProfile, error)
	FindByIdentity(ctx context.Context, identityID uuid.UUID) (*TenantProfile, error)
	Update(ctx context.Context, t *TenantProfile) error
	List(ctx context.Context, filter ListTenantsFilter) ([]TenantProfile, int, error)
	LinkIdentity(ctx context.Context, id int64, identityID uuid.UUID) error
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const tenantColumns = `id, identity_id, full_name, email, phone, notes, is_active, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, t *TenantProfile) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tenant_profiles (identity_id, full_name, email, phone, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		t.IdentityID, t.FullName, t.Email, t.Phone, t.Notes, t.IsActive)
	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*TenantProfile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenant_profiles WHERE id = $1`, id)
	return scanTenant(row)
}

func (r *PGRepository) FindByIdentity(ctx context.Context, identityID uuid.UUID) (*TenantProfile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenant_profiles WHERE identity_id = $1`, identityID)
	return scanTenant(row)
}

func (r *PGRepository) Update(ctx context.Context, t *TenantProfile) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tenant_profiles
		SET full_name = $2, email = $3, phone = $4, notes = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1`,
		t.ID, t.FullName, t.Email, t.Phone, t.Notes, t.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, filter ListTenantsFilter) ([]TenantProfile, int, error) {
	conds := []string{"1=1"}
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", n, n))
	}
	if filter.ActiveOnly {
		conds = append(conds, "is_active")
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tenant_profiles WHERE `+where, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT %s FROM tenant_profiles WHERE %s ORDER BY full_name LIMIT $%d OFFSET $%d`,
		tenantColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]TenantProfile, 0, limit)
	for rows.Next() {
		var t TenantProfile
		if err := rows.Scan(&t.ID, &t.IdentityID, &t.FullName, &t.Email, &t.Phone, &t.Notes,
			&t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) LinkIdentity(ctx context.Context, id int64, identityID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tenant_profiles SET identity_id = $2, updated_at = NOW() WHERE id = $1`,
		id, identityID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanTenant(row pgx.Row) (*TenantProfile, error) {
	var t TenantProfile
	err := row.Scan(&t.ID, &t.IdentityID, &t.FullName, &t.Email, &t.Phone, &t.Notes,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
