// Package users is the admin surface for managing identities, role grants
// and impersonation.
package users

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity together with its role grants, as shown in the admin
// console.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}
