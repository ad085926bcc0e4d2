package leases

import "time"

// CreateLeaseRequest drafts a new lease.
type CreateLeaseRequest struct {
	UnitID        int64      `json:"unit_id" validate:"required,gt=0"`
	TenantID      int64      `json:"tenant_id" validate:"required,gt=0"`
	StartDate     time.Time  `json:"start_date" validate:"required"`
	EndDate       *time.Time `json:"end_date"`
	RentAmount    float64    `json:"rent_amount" validate:"required,gt=0"`
	DepositAmount float64    `json:"deposit_amount" validate:"gte=0"`
}

// UpdateLeaseRequest edits a draft lease. Only drafts may change terms.
type UpdateLeaseRequest struct {
	StartDate     time.Time  `json:"start_date" validate:"required"`
	EndDate       *time.Time `json:"end_date"`
	RentAmount    float64    `json:"rent_amount" validate:"required,gt=0"`
	DepositAmount float64    `json:"deposit_amount" validate:"gte=0"`
}

// ListLeasesFilter narrows the lease listing.
type ListLeasesFilter struct {
	UnitID   int64
	TenantID int64
	Status   LeaseStatus
	Page     int
	PerPage  int
}
