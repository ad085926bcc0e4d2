package tenants

// CreateTenantRequest is the payload for registering a tenant profile.
type CreateTenantRequest struct {
	FullName string  `json:"full_name" validate:"required,min=2,max=160"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    string  `json:"phone" validate:"omitempty,max=32"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateTenantRequest is the payload for editing a tenant profile.
type UpdateTenantRequest struct {
	FullName string  `json:"full_name" validate:"required,min=2,max=160"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    string  `json:"phone" validate:"omitempty,max=32"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
	IsActive *bool   `json:"is_active"`
}

// LinkIdentityRequest attaches a login identity to an existing profile.
type LinkIdentityRequest struct {
	IdentityID string `json:"identity_id" validate:"required,uuid"`
}

// ListTenantsFilter narrows the tenant listing.
type ListTenantsFilter struct {
	Search     string
	ActiveOnly bool
	Page       int
	PerPage    int
}
