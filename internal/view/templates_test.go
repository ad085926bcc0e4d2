package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderEmailNotice(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	html, err := engine.Render("email/notice", map[string]any{
		"DisplayName": "Harbour Lettings",
		"AccentColor": "#2a6f97",
		"Subject":     "Rent reminder",
		"Body":        "Your invoice is due soon.",
		"FooterText":  "Harbour Lettings Ltd",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Harbour Lettings")
	assert.Contains(t, html, "Rent reminder")
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "01 Apr 2026", formatDate(ts))
	assert.Equal(t, "01 Apr 2026", formatDate(&ts))
	assert.Equal(t, "", formatDate(nil))
	assert.Equal(t, "", formatDate((*time.Time)(nil)))
	assert.Equal(t, "", formatDate(time.Time{}))
}
