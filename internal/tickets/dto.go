package tickets

// CreateTicketRequest opens a ticket. Tenants submit these from the portal;
// operators may open tickets on a tenant's behalf.
type CreateTicketRequest struct {
	TenantID int64          `json:"tenant_id" validate:"required,gt=0"`
	UnitID   *int64         `json:"unit_id"`
	Subject  string         `json:"subject" validate:"required,min=3,max=160"`
	Body     string         `json:"body" validate:"required,min=3,max=8000"`
	Priority TicketPriority `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
}

// AssignRequest routes a ticket to an operator.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id" validate:"required,uuid"`
}

// StatusRequest moves a ticket through its lifecycle.
type StatusRequest struct {
	Status TicketStatus `json:"status" validate:"required,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
}

// CommentRequest appends to the ticket thread.
type CommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=8000"`
}

// ListTicketsFilter narrows the ticket listing.
type ListTicketsFilter struct {
	TenantID int64
	Status   TicketStatus
	Priority TicketPriority
	Assignee string
	Page     int
	PerPage  int
}
