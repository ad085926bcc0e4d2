package access

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalForLiteralMapping(t *testing.T) {
	for legacy, canonical := range Aliases() {
		got, ok := CanonicalFor(legacy)
		require.True(t, ok, "alias %s", legacy)
		assert.Equal(t, canonical, got)
	}

	_, ok := CanonicalFor("/billing")
	assert.False(t, ok, "canonical paths are not aliases")
}

func TestEmailTemplatesAlias(t *testing.T) {
	canonical, ok := CanonicalFor("/email-templates")
	require.True(t, ok)
	assert.Equal(t, "/billing/email-templates", canonical)
}

func TestMountAliasesRedirectsPermanently(t *testing.T) {
	r := chi.NewRouter()
	MountAliases(r)

	for legacy, canonical := range Aliases() {
		req := httptest.NewRequest(http.MethodGet, legacy, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusMovedPermanently, rec.Code, "alias %s", legacy)
		assert.Equal(t, canonical, rec.Header().Get("Location"), "alias %s", legacy)
	}
}
