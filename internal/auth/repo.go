package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentfold/rentfold/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	FindByID(ctx context.Context, id string) (*Identity, error)
	Create(ctx context.Context, identity Identity) error
	RecordSession(ctx context.Context, id, identityID string, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsFor(ctx context.Context, identityID string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const identityColumns = `id, email, password_hash, is_active, created_at, updated_at`

// FindByEmail fetches an identity by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	return r.scanIdentity(r.pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE lower(email) = lower($1)`, email))
}

// FindByID fetches an identity by id.
func (r *PGRepository) FindByID(ctx context.Context, id string) (*Identity, error) {
	return r.scanIdentity(r.pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE id = $1`, id))
}

// Create persists a new identity.
func (r *PGRepository) Create(ctx context.Context, identity Identity) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO identities (id, email, password_hash, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())`,
		identity.ID, identity.Email, identity.PasswordHash, identity.IsActive)
	return err
}

// RecordSession persists login session metadata for auditing.
func (r *PGRepository) RecordSession(ctx context.Context, id, identityID string, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO login_sessions (id, identity_id, created_at, expires_at, ip, ua)
		 VALUES ($1, $2, NOW(), $3, NULLIF($4, ''), NULLIF($5, ''))`,
		id, identityID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes one session record.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM login_sessions WHERE id = $1`, id)
	return err
}

// DeleteSessionsFor removes every session record for an identity, backing the
// global sign-out scope.
func (r *PGRepository) DeleteSessionsFor(ctx context.Context, identityID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM login_sessions WHERE identity_id = $1`, identityID)
	return err
}

func (r *PGRepository) scanIdentity(row pgx.Row) (*Identity, error) {
	var identity Identity
	err := row.Scan(&identity.ID, &identity.Email, &identity.PasswordHash, &identity.IsActive, &identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &identity, nil
}

var _ Repository = (*PGRepository)(nil)
