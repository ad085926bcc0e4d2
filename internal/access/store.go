package access

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGGrantStore reads role grants from PostgreSQL.
type PGGrantStore struct {
	pool *pgxpool.Pool
}

// NewGrantStore constructs a PGGrantStore.
func NewGrantStore(pool *pgxpool.Pool) *PGGrantStore {
	return &PGGrantStore{pool: pool}
}

// GrantsFor returns all role tags granted to the identity. Unknown tags in
// storage are skipped rather than failing the whole lookup.
func (s *PGGrantStore) GrantsFor(ctx context.Context, identityID string) ([]Role, error) {
	rows, err := s.pool.Query(ctx, `SELECT role FROM role_grants WHERE identity_id = $1`, identityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []Role
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		role, err := ParseRole(raw)
		if err != nil {
			continue
		}
		grants = append(grants, role)
	}
	return grants, rows.Err()
}

// HasRole answers whether the identity holds a specific role grant.
func (s *PGGrantStore) HasRole(ctx context.Context, identityID string, role Role) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM role_grants WHERE identity_id = $1 AND role = $2)`,
		identityID, string(role)).Scan(&exists)
	return exists, err
}

// Grant inserts a role grant, idempotently.
func (s *PGGrantStore) Grant(ctx context.Context, identityID string, role Role) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO role_grants (identity_id, role, created_at) VALUES ($1, $2, NOW()) ON CONFLICT DO NOTHING`,
		identityID, string(role))
	return err
}

// Revoke removes a role grant.
func (s *PGGrantStore) Revoke(ctx context.Context, identityID string, role Role) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM role_grants WHERE identity_id = $1 AND role = $2`,
		identityID, string(role))
	return err
}

var _ GrantStore = (*PGGrantStore)(nil)
