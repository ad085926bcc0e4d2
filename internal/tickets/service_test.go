package tickets

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfold/rentfold/internal/platform/httpx"
)

type memoryRepo struct {
	nextID   int64
	seq      int64
	tickets  map[int64]*Ticket
	comments map[int64][]Comment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, tickets: map[int64]*Ticket{}, comments: map[int64][]Comment{}}
}

func (m *memoryRepo) NextNumber(_ context.Context) (string, error) {
	m.seq++
	return fmt.Sprintf("TCK-%06d", m.seq), nil
}

func (m *memoryRepo) Create(_ context.Context, t *Ticket) error {
	t.ID = m.nextID
	m.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.tickets[t.ID] = &cp
	return nil
}

func (m *memoryRepo) FindByID(_ context.Context, id int64) (*Ticket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memoryRepo) Update(_ context.Context, t *Ticket) error {
	if _, ok := m.tickets[t.ID]; !ok {
		return httpx.ErrNotFound
	}
	cp := *t
	m.tickets[t.ID] = &cp
	return nil
}

func (m *memoryRepo) List(_ context.Context, filter ListTicketsFilter) ([]Ticket, int, error) {
	var out []Ticket
	for _, t := range m.tickets {
		if filter.TenantID > 0 && t.TenantID != filter.TenantID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *memoryRepo) AddComment(_ context.Context, c *Comment) error {
	c.ID = int64(len(m.comments[c.TicketID]) + 1)
	c.CreatedAt = time.Now()
	m.comments[c.TicketID] = append(m.comments[c.TicketID], *c)
	return nil
}

func (m *memoryRepo) Comments(_ context.Context, ticketID int64) ([]Comment, error) {
	return m.comments[ticketID], nil
}

func openTicket(t *testing.T, svc *Service) *Ticket {
	t.Helper()
	ticket, err := svc.Open(context.Background(), CreateTicketRequest{
		TenantID: 7,
		Subject:  "Leaking tap",
		Body:     "The kitchen tap drips constantly.",
	}, "actor")
	require.NoError(t, err)
	return ticket
}

func TestOpenDefaultsPriority(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	ticket := openTicket(t, svc)
	assert.Equal(t, TicketOpen, ticket.Status)
	assert.Equal(t, PriorityNormal, ticket.Priority)
	assert.Contains(t, ticket.Number, "TCK-")
}

func TestAssignMovesToInProgress(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ticket := openTicket(t, svc)

	operator := uuid.New()
	assigned, err := svc.Assign(context.Background(), ticket.ID, operator, "actor")
	require.NoError(t, err)
	assert.Equal(t, TicketInProgress, assigned.Status)
	require.NotNil(t, assigned.AssigneeID)
	assert.Equal(t, operator, *assigned.AssigneeID)
}

func TestStatusTransitions(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ticket := openTicket(t, svc)

	resolved, err := svc.SetStatus(context.Background(), ticket.ID, TicketResolved, "actor")
	require.NoError(t, err)
	assert.Equal(t, TicketResolved, resolved.Status)

	// Resolved tickets can be reopened into progress.
	reopened, err := svc.SetStatus(context.Background(), ticket.ID, TicketInProgress, "actor")
	require.NoError(t, err)
	assert.Equal(t, TicketInProgress, reopened.Status)

	closed, err := svc.SetStatus(context.Background(), ticket.ID, TicketClosed, "actor")
	require.NoError(t, err)
	assert.Equal(t, TicketClosed, closed.Status)

	_, err = svc.SetStatus(context.Background(), ticket.ID, TicketOpen, "actor")
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCommentOnClosedTicketRejected(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ticket := openTicket(t, svc)

	author := uuid.New()
	_, err := svc.Comment(context.Background(), ticket.ID, author, "any update?")
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), ticket.ID, TicketClosed, "actor")
	require.NoError(t, err)

	_, err = svc.Comment(context.Background(), ticket.ID, author, "still broken")
	assert.ErrorIs(t, err, httpx.ErrConflict)

	comments, err := svc.Comments(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestAssignClosedTicketRejected(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ticket := openTicket(t, svc)

	_, err := svc.SetStatus(context.Background(), ticket.ID, TicketClosed, "actor")
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), ticket.ID, uuid.New(), "actor")
	assert.ErrorIs(t, err, httpx.ErrConflict)
}
