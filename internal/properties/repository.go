package properties

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentfold/rentfold/internal/platform/httpx"
)

// Repository defines persistence for properties and units.
type Repository interface {
	CreateProperty(ctx context.Context, p Property) (int64, error)
	GetProperty(ctx context.Context, id int64) (*Property, error)
	UpdateProperty(ctx context.Context, p Property) error
	DeleteProperty(ctx context.Context, id int64) error
	ListProperties(ctx context.Context, filter ListPropertiesFilter) ([]Property, int, error)

	CreateUnit(ctx context.Context, u Unit) (int64, error)
	GetUnit(ctx context.Context, id int64) (*Unit, error)
	UpdateUnit(ctx context.Context, u Unit) error
	ListUnits(ctx context.Context, propertyID int64) ([]Unit, error)
	SetUnitStatus(ctx context.Context, unitID int64, status UnitStatus) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) CreateProperty(ctx context.Context, p Property) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO properties (landlord_id, name, address_line1, address_line2, city, postal_code, country, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id`,
		p.LandlordID, p.Name, p.AddressLine1, p.AddressLine2, p.City, p.PostalCode, p.Country, p.Notes,
	).Scan(&id)
	return id, err
}

func (r *PGRepository) GetProperty(ctx context.Context, id int64) (*Property, error) {
	var p Property
	err := r.pool.QueryRow(ctx, `
		SELECT id, landlord_id, name, address_line1, address_line2, city, postal_code, country, notes, created_at, updated_at
		FROM properties WHERE id = $1`, id,
	).Scan(&p.ID, &p.LandlordID, &p.Name, &p.AddressLine1, &p.AddressLine2, &p.City, &p.PostalCode, &p.Country, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) UpdateProperty(ctx context.Context, p Property) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE properties
		SET name = $2, address_line1 = $3, address_line2 = $4, city = $5, postal_code = $6, country = $7, notes = $8, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.AddressLine1, p.AddressLine2, p.City, p.PostalCode, p.Country, p.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) DeleteProperty(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) ListProperties(ctx context.Context, filter ListPropertiesFilter) ([]Property, int, error) {
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.PerPage
	search := "%" + filter.Search + "%"

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM properties WHERE ($1 = '%%' OR name ILIKE $1 OR city ILIKE $1)`,
		search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count properties: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, landlord_id, name, address_line1, address_line2, city, postal_code, country, notes, created_at, updated_at
		FROM properties
		WHERE ($1 = '%%' OR name ILIKE $1 OR city ILIKE $1)
		ORDER BY name
		LIMIT $2 OFFSET $3`, search, filter.PerPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.ID, &p.LandlordID, &p.Name, &p.AddressLine1, &p.AddressLine2, &p.City, &p.PostalCode, &p.Country, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) CreateUnit(ctx context.Context, u Unit) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO units (property_id, label, bedrooms, bathrooms, rent_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id`,
		u.PropertyID, u.Label, u.Bedrooms, u.Bathrooms, u.RentAmount, u.Status,
	).Scan(&id)
	return id, err
}

func (r *PGRepository) GetUnit(ctx context.Context, id int64) (*Unit, error) {
	var u Unit
	err := r.pool.QueryRow(ctx, `
		SELECT id, property_id, label, bedrooms, bathrooms, rent_amount, status, created_at, updated_at
		FROM units WHERE id = $1`, id,
	).Scan(&u.ID, &u.PropertyID, &u.Label, &u.Bedrooms, &u.Bathrooms, &u.RentAmount, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) UpdateUnit(ctx context.Context, u Unit) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE units
		SET label = $2, bedrooms = $3, bathrooms = $4, rent_amount = $5, status = $6, updated_at = NOW()
		WHERE id = $1`,
		u.ID, u.Label, u.Bedrooms, u.Bathrooms, u.RentAmount, u.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) ListUnits(ctx context.Context, propertyID int64) ([]Unit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, property_id, label, bedrooms, bathrooms, rent_amount, status, created_at, updated_at
		FROM units WHERE property_id = $1 ORDER BY label`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.PropertyID, &u.Label, &u.Bedrooms, &u.Bathrooms, &u.RentAmount, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PGRepository) SetUnitStatus(ctx context.Context, unitID int64, status UnitStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE units SET status = $2, updated_at = NOW() WHERE id = $1`, unitID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
