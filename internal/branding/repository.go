package branding

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentfold/rentfold/internal/platform/httpx"
)

// Repository persists branding profiles.
type Repository interface {
	Find(ctx context.Context, landlordID uuid.UUID) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
	LandlordForLease(ctx context.Context, leaseID int64) (uuid.UUID, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Find(ctx context.Context, landlordID uuid.UUID) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT landlord_id, display_name, accent_color, footer_text, logo_url, updated_at
		FROM branding_profiles WHERE landlord_id = $1`, landlordID)
	var p Profile
	err := row.Scan(&p.LandlordID, &p.DisplayName, &p.AccentColor, &p.FooterText, &p.LogoURL, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) Upsert(ctx context.Context, p *Profile) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO branding_profiles (landlord_id, display_name, accent_color, footer_text, logo_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (landlord_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    accent_color = EXCLUDED.accent_color,
		    footer_text = EXCLUDED.footer_text,
		    logo_url = EXCLUDED.logo_url,
		    updated_at = NOW()
		RETURNING updated_at`,
		p.LandlordID, p.DisplayName, p.AccentColor, p.FooterText, p.LogoURL)
	return row.Scan(&p.UpdatedAt)
}

// LandlordForLease walks lease -> unit -> property to find whose branding an
// invoice document should carry.
func (r *PGRepository) LandlordForLease(ctx context.Context, leaseID int64) (uuid.UUID, error) {
	var landlordID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT p.landlord_id
		FROM leases l
		JOIN units u ON u.id = l.unit_id
		JOIN properties p ON p.id = u.property_id
		WHERE l.id = $1`, leaseID).Scan(&landlordID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, httpx.ErrNotFound
	}
	return landlordID, err
}
