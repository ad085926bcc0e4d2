package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentfold/rentfold/internal/platform/httpx"
)

// Repository reads identities for the admin console.
type Repository interface {
	List(ctx context.Context, search string, page, perPage int) ([]User, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userSelect = `
	SELECT i.id, i.email, i.is_active, i.created_at,
	       COALESCE(array_agg(g.role ORDER BY g.role) FILTER (WHERE g.role IS NOT NULL), '{}')
	FROM identities i
	LEFT JOIN role_grants g ON g.identity_id = i.id`

func (r *PGRepository) List(ctx context.Context, search string, page, perPage int) ([]User, int, error) {
	args := []any{}
	where := "TRUE"
	if search != "" {
		args = append(args, "%"+search+"%")
		where = fmt.Sprintf("i.email ILIKE $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM identities i WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if perPage <= 0 {
		perPage = 25
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * perPage
	}
	args = append(args, perPage, offset)
	query := fmt.Sprintf(`%s WHERE %s GROUP BY i.id ORDER BY i.email LIMIT $%d OFFSET $%d`,
		userSelect, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]User, 0, perPage)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.IsActive, &u.CreatedAt, &u.Roles); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, userSelect+` WHERE i.id = $1 GROUP BY i.id`, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.IsActive, &u.CreatedAt, &u.Roles)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE identities SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
