// Package leases manages tenancy agreements between tenant profiles and units.
package leases

import "time"

// LeaseStatus is the lifecycle state of a lease.
type LeaseStatus string

const (
	LeaseDraft      LeaseStatus = "DRAFT"
	LeaseActive     LeaseStatus = "ACTIVE"
	LeaseEnded      LeaseStatus = "ENDED"
	LeaseTerminated LeaseStatus = "TERMINATED"
)

// Lease binds a tenant to a unit for a period at an agreed rent.
type Lease struct {
	ID            int64       `json:"id"`
	UnitID        int64       `json:"unit_id"`
	TenantID      int64       `json:"tenant_id"`
	StartDate     time.Time   `json:"start_date"`
	EndDate       *time.Time  `json:"end_date,omitempty"`
	RentAmount    float64     `json:"rent_amount"`
	DepositAmount float64     `json:"deposit_amount"`
	Status        LeaseStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Open reports whether the lease still occupies its unit.
func (l *Lease) Open() bool {
	return l.Status == LeaseActive
}
