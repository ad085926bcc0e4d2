package branding

// UpsertProfileRequest replaces the landlord's branding settings.
type UpsertProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=120"`
	AccentColor string `json:"accent_color" validate:"required,hexcolor"`
	FooterText  string `json:"footer_text" validate:"omitempty,max=500"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url,max=500"`
}
