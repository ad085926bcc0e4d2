package tickets

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"

	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
)

type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Open creates a new ticket. Priority defaults to NORMAL when the portal
// leaves it blank.
func (s *Service) Open(ctx context.Context, req CreateTicketRequest, actorID string) (*Ticket, error) {
	number, err := s.repo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	t := &Ticket{
		Number:   number,
		TenantID: req.TenantID,
		UnitID:   req.UnitID,
		Subject:  req.Subject,
		Body:     req.Body,
		Priority: priority,
		Status:   TicketOpen,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "ticket.open", t.ID)
	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Ticket, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListTicketsFilter) ([]Ticket, int, error) {
	return s.repo.List(ctx, filter)
}

// Assign routes the ticket to an operator and bumps OPEN to IN_PROGRESS.
func (s *Service) Assign(ctx context.Context, id int64, assigneeID uuid.UUID, actorID string) (*Ticket, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == TicketClosed {
		return nil, errors.Join(httpx.ErrConflict, errors.New("ticket is closed"))
	}
	t.AssigneeID = &assigneeID
	if t.Status == TicketOpen {
		t.Status = TicketInProgress
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "ticket.assign", t.ID)
	return t, nil
}

// SetStatus moves the ticket through its lifecycle.
func (s *Service) SetStatus(ctx context.Context, id int64, status TicketStatus, actorID string) (*Ticket, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, status) {
		return nil, errors.Join(httpx.ErrConflict,
			errors.New("cannot move ticket from "+string(t.Status)+" to "+string(status)))
	}
	t.Status = status
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "ticket.status."+string(status), t.ID)
	return t, nil
}

// Comment appends to the ticket thread. Closed tickets stay read-only.
func (s *Service) Comment(ctx context.Context, ticketID int64, authorID uuid.UUID, body string) (*Comment, error) {
	t, err := s.repo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Status == TicketClosed {
		return nil, errors.Join(httpx.ErrConflict, errors.New("ticket is closed"))
	}
	c := &Comment{TicketID: ticketID, AuthorID: authorID, Body: body}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Comments(ctx context.Context, ticketID int64) ([]Comment, error) {
	if _, err := s.repo.FindByID(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.repo.Comments(ctx, ticketID)
}

func (s *Service) recordAudit(ctx context.Context, actorID, action string, id int64) {
	if s.audit == nil || actorID == "" {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "ticket",
		EntityID: strconv.FormatInt(id, 10),
	})
}
