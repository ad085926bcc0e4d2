// Package branding stores per-landlord presentation settings and renders the
// landlord-branded documents built on them.
package branding

import (
	"time"

	"github.com/google/uuid"
)

// Profile customises documents and outbound mail for one landlord.
type Profile struct {
	LandlordID  uuid.UUID `json:"landlord_id"`
	DisplayName string    `json:"display_name"`
	AccentColor string    `json:"accent_color"`
	FooterText  string    `json:"footer_text,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultProfile is used when a landlord has not configured branding yet.
func DefaultProfile(landlordID uuid.UUID) *Profile {
	return &Profile{
		LandlordID:  landlordID,
		DisplayName: "Rentfold",
		AccentColor: "#2a6f97",
	}
}
