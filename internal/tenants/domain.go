// Package tenants manages tenant profiles and their link to login identities.
package tenants

import (
	"time"

	"github.com/google/uuid"
)

// TenantProfile is a person renting a unit. IdentityID is nil until the
// tenant has been invited to the portal.
type TenantProfile struct {
	ID         int64      `json:"id"`
	IdentityID *uuid.UUID `json:"identity_id,omitempty"`
	FullName   string     `json:"full_name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
