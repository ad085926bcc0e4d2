package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentfold/rentfold/internal/platform/httpx"
)

// Repository persists tickets and their comment threads.
type Repository interface {
	NextNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, t *Ticket) error
	FindByID(ctx context.Context, id int64) (*Ticket, error)
	Update(ctx context.Context, t *Ticket) error
	List(ctx context.Context, filter ListTicketsFilter) ([]Ticket, int, error)
	AddComment(ctx context.Context, c *Comment) error
	Comments(ctx context.Context, ticketID int64) ([]Comment, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const ticketColumns = `id, number, tenant_id, unit_id, subject, body, priority, status, assignee_id, created_at, updated_at`

func (r *PGRepository) NextNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('ticket_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("TCK-%06d", seq), nil
}

func (r *PGRepository) Create(ctx context.Context, t *Ticket) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tickets (number, tenant_id, unit_id, subject, body, priority, status, assignee_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		t.Number, t.TenantID, t.UnitID, t.Subject, t.Body, string(t.Priority), string(t.Status), t.AssigneeID)
	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
	return scanTicket(row)
}

func (r *PGRepository) Update(ctx context.Context, t *Ticket) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tickets
		SET subject = $2, body = $3, priority = $4, status = $5, assignee_id = $6, updated_at = NOW()
		WHERE id = $1`,
		t.ID, t.Subject, t.Body, string(t.Priority), string(t.Status), t.AssigneeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, filter ListTicketsFilter) ([]Ticket, int, error) {
	conds := []string{"1=1"}
	args := []any{}
	if filter.TenantID > 0 {
		args = append(args, filter.TenantID)
		conds = append(conds, fmt.Sprintf("tenant_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.Assignee != "" {
		args = append(args, filter.Assignee)
		conds = append(conds, fmt.Sprintf("assignee_id = $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE `+where, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		ticketColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Ticket, 0, limit)
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.Number, &t.TenantID, &t.UnitID, &t.Subject, &t.Body,
			&t.Priority, &t.Status, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) AddComment(ctx context.Context, c *Comment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO ticket_comments (ticket_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		c.TicketID, c.AuthorID, c.Body)
	return row.Scan(&c.ID, &c.CreatedAt)
}

func (r *PGRepository) Comments(ctx context.Context, ticketID int64) ([]Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, ticket_id, author_id, body, created_at
		FROM ticket_comments WHERE ticket_id = $1 ORDER BY created_at`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.Number, &t.TenantID, &t.UnitID, &t.Subject, &t.Body,
		&t.Priority, &t.Status, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
