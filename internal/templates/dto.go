package templates

// UpsertTemplateRequest creates or replaces a template under its key.
type UpsertTemplateRequest struct {
	Key     string  `json:"key" validate:"required,min=3,max=80"`
	Channel Channel `json:"channel" validate:"required,oneof=email sms"`
	Subject string  `json:"subject" validate:"omitempty,max=200"`
	Body    string  `json:"body" validate:"required,max=16000"`
}

// RenderRequest applies variables to a stored template.
type RenderRequest struct {
	Vars map[string]string `json:"vars"`
}
