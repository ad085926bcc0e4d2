// Package tickets handles maintenance requests raised by tenants and triaged
// by operators.
package tickets

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
	TicketClosed     TicketStatus = "CLOSED"
)

type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityNormal TicketPriority = "NORMAL"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

// Ticket is a maintenance request tied to a tenant and optionally a unit.
type Ticket struct {
	ID         int64          `json:"id"`
	Number     string         `json:"number"`
	TenantID   int64          `json:"tenant_id"`
	UnitID     *int64         `json:"unit_id,omitempty"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	Priority   TicketPriority `json:"priority"`
	Status     TicketStatus   `json:"status"`
	AssigneeID *uuid.UUID     `json:"assignee_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Comment is a message on the ticket thread. AuthorID is the identity that
// wrote it, tenant or operator alike.
type Comment struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// validTransitions guards the ticket lifecycle. Closed is terminal.
var validTransitions = map[TicketStatus][]TicketStatus{
	TicketOpen:       {TicketInProgress, TicketResolved, TicketClosed},
	TicketInProgress: {TicketResolved, TicketClosed},
	TicketResolved:   {TicketClosed, TicketInProgress},
}

// CanTransition reports whether the status change is allowed.
func CanTransition(from, to TicketStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
