// Package templates stores reusable email and SMS message templates with
// placeholder substitution.
package templates

import "time"

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// MessageTemplate is a keyed message body. Subject only applies to email.
// Bodies use Go template placeholders like {{.TenantName}}.
type MessageTemplate struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Channel   Channel   `json:"channel"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RenderedMessage is the result of applying variables to a template.
type RenderedMessage struct {
	Channel Channel `json:"channel"`
	Subject string  `json:"subject,omitempty"`
	Body    string  `json:"body"`
}
