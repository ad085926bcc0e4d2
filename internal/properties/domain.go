package properties

import (
	"time"

	"github.com/google/uuid"
)

// UnitStatus enumerates occupancy states for a unit.
type UnitStatus string

const (
	UnitVacant      UnitStatus = "VACANT"
	UnitOccupied    UnitStatus = "OCCUPIED"
	UnitMaintenance UnitStatus = "MAINTENANCE"
)

// Property is a building or site managed by a landlord.
type Property struct {
	ID           int64     `json:"id"`
	LandlordID   uuid.UUID `json:"landlord_id"`
	Name         string    `json:"name"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 *string   `json:"address_line2,omitempty"`
	City         string    `json:"city"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Unit is a rentable part of a property.
type Unit struct {
	ID         int64      `json:"id"`
	PropertyID int64      `json:"property_id"`
	Label      string     `json:"label"`
	Bedrooms   int        `json:"bedrooms"`
	Bathrooms  int        `json:"bathrooms"`
	RentAmount float64    `json:"rent_amount"`
	Status     UnitStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
