package auth

import (
	"time"

	"github.com/google/uuid"
)

// Identity is an authenticated principal. Role grants live in the access
// package; an identity on its own carries no authorization.
type Identity struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
