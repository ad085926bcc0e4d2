package templates

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentfold/rentfold/internal/platform/httpx"
)

// Repository persists message templates.
type Repository interface {
	Upsert(ctx context.Context, t *MessageTemplate) error
	FindByKey(ctx context.Context, key string, channel Channel) (*MessageTemplate, error)
	List(ctx context.Context) ([]MessageTemplate, error)
	Delete(ctx context.Context, key string, channel Channel) error
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Upsert(ctx context.Context, t *MessageTemplate) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO message_templates (key, channel, subject, body)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key, channel) DO UPDATE
		SET subject = EXCLUDED.subject, body = EXCLUDED.body, updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		t.Key, string(t.Channel), t.Subject, t.Body)
	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *PGRepository) FindByKey(ctx context.Context, key string, channel Channel) (*MessageTemplate, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, key, channel, subject, body, created_at, updated_at
		FROM message_templates WHERE key = $1 AND channel = $2`, key, string(channel))
	var t MessageTemplate
	err := row.Scan(&t.ID, &t.Key, &t.Channel, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) List(ctx context.Context) ([]MessageTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, key, channel, subject, body, created_at, updated_at
		FROM message_templates ORDER BY key, channel`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MessageTemplate
	for rows.Next() {
		var t MessageTemplate
		if err := rows.Scan(&t.ID, &t.Key, &t.Channel, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PGRepository) Delete(ctx context.Context, key string, channel Channel) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM message_templates WHERE key = $1 AND channel = $2`, key, string(channel))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
