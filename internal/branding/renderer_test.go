package branding

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfold/rentfold/internal/billing"
	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/view"
)

type memoryRepo struct {
	profiles  map[uuid.UUID]*Profile
	landlords map[int64]uuid.UUID
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{profiles: map[uuid.UUID]*Profile{}, landlords: map[int64]uuid.UUID{}}
}

func (m *memoryRepo) Find(_ context.Context, landlordID uuid.UUID) (*Profile, error) {
	p, ok := m.profiles[landlordID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryRepo) Upsert(_ context.Context, p *Profile) error {
	p.UpdatedAt = time.Now()
	cp := *p
	m.profiles[p.LandlordID] = &cp
	return nil
}

func (m *memoryRepo) LandlordForLease(_ context.Context, leaseID int64) (uuid.UUID, error) {
	id, ok := m.landlords[leaseID]
	if !ok {
		return uuid.Nil, httpx.ErrNotFound
	}
	return id, nil
}

type stubConverter struct {
	lastHTML string
}

func (s *stubConverter) RenderHTML(_ context.Context, html string) ([]byte, error) {
	s.lastHTML = html
	return []byte("%PDF-stub"), nil
}

func sampleInvoice() *billing.Invoice {
	issued := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	return &billing.Invoice{
		ID:       1,
		Number:   "INV-2026-000007",
		LeaseID:  42,
		TenantID: 7,
		Status:   billing.InvoiceIssued,
		Currency: "EUR",
		Total:    1300,
		Paid:     300,
		IssuedAt: &issued,
		DueAt:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Lines: []billing.InvoiceLine{
			{Description: "Rent April", Quantity: 1, UnitAmount: 1200, Amount: 1200},
			{Description: "Parking", Quantity: 2, UnitAmount: 50, Amount: 100},
		},
	}
}

func newRenderer(t *testing.T, repo Repository, converter PDFConverter) *Renderer {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	return NewRenderer(NewService(repo, nil), engine, converter)
}

func TestInvoiceHTMLUsesLandlordBranding(t *testing.T) {
	repo := newMemoryRepo()
	landlordID := uuid.New()
	repo.landlords[42] = landlordID
	repo.profiles[landlordID] = &Profile{
		LandlordID:  landlordID,
		DisplayName: "Harbour Lettings",
		AccentColor: "#2a6f97",
		FooterText:  "Harbour Lettings Ltd, registered in Ireland",
	}

	renderer := newRenderer(t, repo, nil)
	html, err := renderer.InvoiceHTML(context.Background(), sampleInvoice(), []billing.Payment{
		{Method: "bank_transfer", Amount: 300, ReceivedAt: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Harbour Lettings")
	assert.Contains(t, html, "INV-2026-000007")
	assert.Contains(t, html, "Rent April")
	assert.Contains(t, html, "bank_transfer")
	assert.Contains(t, html, "Harbour Lettings Ltd")
}

func TestInvoiceHTMLFallsBackToDefaultProfile(t *testing.T) {
	renderer := newRenderer(t, newMemoryRepo(), nil)

	html, err := renderer.InvoiceHTML(context.Background(), sampleInvoice(), nil)
	require.NoError(t, err)
	assert.Contains(t, html, "Rentfold")
}

func TestRenderInvoiceDelegatesToConverter(t *testing.T) {
	converter := &stubConverter{}
	renderer := newRenderer(t, newMemoryRepo(), converter)

	pdf, err := renderer.RenderInvoice(context.Background(), sampleInvoice(), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-stub"), pdf)
	assert.Contains(t, converter.lastHTML, "INV-2026-000007")
}

func TestAmountFormatter(t *testing.T) {
	eur := amountFormatter("EUR")
	assert.Contains(t, eur(1300), "1,300.00")

	unknown := amountFormatter("XXX1")
	assert.Equal(t, "XXX1 12.50", unknown(12.5))
}
