package templates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfold/rentfold/internal/platform/httpx"
)

type memoryRepo struct {
	nextID    int64
	templates map[string]*MessageTemplate
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, templates: map[string]*MessageTemplate{}}
}

func repoKey(key string, channel Channel) string {
	return key + "|" + string(channel)
}

func (m *memoryRepo) Upsert(_ context.Context, t *MessageTemplate) error {
	k := repoKey(t.Key, t.Channel)
	if existing, ok := m.templates[k]; ok {
		t.ID = existing.ID
		t.CreatedAt = existing.CreatedAt
	} else {
		t.ID = m.nextID
		m.nextID++
		t.CreatedAt = time.Now()
	}
	t.UpdatedAt = time.Now()
	cp := *t
	m.templates[k] = &cp
	return nil
}

func (m *memoryRepo) FindByKey(_ context.Context, key string, channel Channel) (*MessageTemplate, error) {
	t, ok := m.templates[repoKey(key, channel)]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memoryRepo) List(_ context.Context) ([]MessageTemplate, error) {
	var out []MessageTemplate
	for _, t := range m.templates {
		out = append(out, *t)
	}
	return out, nil
}

func (m *memoryRepo) Delete(_ context.Context, key string, channel Channel) error {
	k := repoKey(key, channel)
	if _, ok := m.templates[k]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.templates, k)
	return nil
}

func TestUpsertRejectsBrokenTemplate(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Upsert(context.Background(), UpsertTemplateRequest{
		Key:     "rent-reminder",
		Channel: ChannelEmail,
		Body:    "Dear {{.TenantName", // unterminated action
	}, "actor")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRenderSubstitutesVars(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Upsert(context.Background(), UpsertTemplateRequest{
		Key:     "rent-reminder",
		Channel: ChannelEmail,
		Subject: "Rent due {{.DueDate}}",
		Body:    "Dear {{.TenantName}}, invoice {{.InvoiceNumber}} is due on {{.DueDate}}.",
	}, "actor")
	require.NoError(t, err)

	msg, err := svc.Render(context.Background(), "rent-reminder", ChannelEmail, map[string]string{
		"TenantName":    "Ada Vance",
		"InvoiceNumber": "INV-2026-000042",
		"DueDate":       "2026-04-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rent due 2026-04-01", msg.Subject)
	assert.Equal(t, "Dear Ada Vance, invoice INV-2026-000042 is due on 2026-04-01.", msg.Body)
}

func TestRenderFailsOnMissingVar(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Upsert(context.Background(), UpsertTemplateRequest{
		Key:     "rent-reminder",
		Channel: ChannelSMS,
		Body:    "Hi {{.TenantName}}, rent is due.",
	}, "actor")
	require.NoError(t, err)

	_, err = svc.Render(context.Background(), "rent-reminder", ChannelSMS, map[string]string{})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpsertReplacesByKeyAndChannel(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	first, err := svc.Upsert(context.Background(), UpsertTemplateRequest{
		Key:     "welcome",
		Channel: ChannelEmail,
		Body:    "Welcome!",
	}, "actor")
	require.NoError(t, err)

	second, err := svc.Upsert(context.Background(), UpsertTemplateRequest{
		Key:     "welcome",
		Channel: ChannelEmail,
		Body:    "Welcome aboard!",
	}, "actor")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, err := svc.Get(context.Background(), "welcome", ChannelEmail)
	require.NoError(t, err)
	assert.Equal(t, "Welcome aboard!", stored.Body)

	// Same key on another channel is a separate template.
	sms, err := svc.Upsert(context.Background(), UpsertTemplateRequest{
		Key:     "welcome",
		Channel: ChannelSMS,
		Body:    "Welcome!",
	}, "actor")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, sms.ID)
}
