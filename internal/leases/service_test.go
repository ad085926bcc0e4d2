package leases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/properties"
)

type memoryRepo struct {
	nextID int64
	leases map[int64]*Lease
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, leases: map[int64]*Lease{}}
}

func (m *memoryRepo) Create(_ context.Context, l *Lease) error {
	l.ID = m.nextID
	m.nextID++
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	cp := *l
	m.leases[l.ID] = &cp
	return nil
}

func (m *memoryRepo) FindByID(_ context.Context, id int64) (*Lease, error) {
	l, ok := m.leases[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memoryRepo) Update(_ context.Context, l *Lease) error {
	if _, ok := m.leases[l.ID]; !ok {
		return httpx.ErrNotFound
	}
	cp := *l
	m.leases[l.ID] = &cp
	return nil
}

func (m *memoryRepo) List(_ context.Context, filter ListLeasesFilter) ([]Lease, int, error) {
	var out []Lease
	for _, l := range m.leases {
		if filter.UnitID > 0 && l.UnitID != filter.UnitID {
			continue
		}
		if filter.TenantID > 0 && l.TenantID != filter.TenantID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (m *memoryRepo) ActiveForUnit(_ context.Context, unitID int64) (*Lease, error) {
	for _, l := range m.leases {
		if l.UnitID == unitID && l.Status == LeaseActive {
			cp := *l
			return &cp, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *memoryRepo) ActiveForTenant(_ context.Context, tenantID int64) (*Lease, error) {
	for _, l := range m.leases {
		if l.TenantID == tenantID && l.Status == LeaseActive {
			cp := *l
			return &cp, nil
		}
	}
	return nil, httpx.ErrNotFound
}

type stubUnits struct {
	units    map[int64]*properties.Unit
	statuses map[int64]properties.UnitStatus
}

func newStubUnits(ids ...int64) *stubUnits {
	s := &stubUnits{units: map[int64]*properties.Unit{}, statuses: map[int64]properties.UnitStatus{}}
	for _, id := range ids {
		s.units[id] = &properties.Unit{ID: id, Status: properties.UnitVacant}
		s.statuses[id] = properties.UnitVacant
	}
	return s
}

func (s *stubUnits) GetUnit(_ context.Context, id int64) (*properties.Unit, error) {
	u, ok := s.units[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return u, nil
}

func (s *stubUnits) SetUnitStatus(_ context.Context, unitID int64, status properties.UnitStatus) error {
	if _, ok := s.units[unitID]; !ok {
		return httpx.ErrNotFound
	}
	s.statuses[unitID] = status
	return nil
}

func draftRequest(unitID, tenantID int64) CreateLeaseRequest {
	return CreateLeaseRequest{
		UnitID:        unitID,
		TenantID:      tenantID,
		StartDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		RentAmount:    1250,
		DepositAmount: 2500,
	}
}

func TestCreateDraftsLease(t *testing.T) {
	svc := NewService(newMemoryRepo(), newStubUnits(1), nil)

	l, err := svc.Create(context.Background(), draftRequest(1, 7), "actor")
	require.NoError(t, err)
	assert.Equal(t, LeaseDraft, l.Status)
	assert.Equal(t, int64(1), l.UnitID)
}

func TestCreateRejectsUnknownUnit(t *testing.T) {
	svc := NewService(newMemoryRepo(), newStubUnits(1), nil)

	_, err := svc.Create(context.Background(), draftRequest(99, 7), "actor")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCreateRejectsInvertedDates(t *testing.T) {
	svc := NewService(newMemoryRepo(), newStubUnits(1), nil)

	req := draftRequest(1, 7)
	end := req.StartDate.AddDate(0, -1, 0)
	req.EndDate = &end
	_, err := svc.Create(context.Background(), req, "actor")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestActivateMarksUnitOccupied(t *testing.T) {
	units := newStubUnits(1)
	svc := NewService(newMemoryRepo(), units, nil)

	l, err := svc.Create(context.Background(), draftRequest(1, 7), "actor")
	require.NoError(t, err)

	activated, err := svc.Activate(context.Background(), l.ID, "actor")
	require.NoError(t, err)
	assert.Equal(t, LeaseActive, activated.Status)
	assert.Equal(t, properties.UnitOccupied, units.statuses[1])
}

func TestActivateRejectsSecondActiveLease(t *testing.T) {
	units := newStubUnits(1)
	svc := NewService(newMemoryRepo(), units, nil)

	first, err := svc.Create(context.Background(), draftRequest(1, 7), "actor")
	require.NoError(t, err)
	_, err = svc.Activate(context.Background(), first.ID, "actor")
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), draftRequest(1, 8), "actor")
	require.NoError(t, err)
	_, err = svc.Activate(context.Background(), second.ID, "actor")
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestActivateRequiresDraft(t *testing.T) {
	units := newStubUnits(1)
	svc := NewService(newMemoryRepo(), units, nil)

	l, err := svc.Create(context.Background(), draftRequest(1, 7), "actor")
	require.NoError(t, err)
	_, err = svc.Activate(context.Background(), l.ID, "actor")
	require.NoError(t, err)

	_, err = svc.Activate(context.Background(), l.ID, "actor")
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestEndFreesUnit(t *testing.T) {
	units := newStubUnits(1)
	svc := NewService(newMemoryRepo(), units, nil)

	l, err := svc.Create(context.Background(), draftRequest(1, 7), "actor")
	require.NoError(t, err)
	_, err = svc.Activate(context.Background(), l.ID, "actor")
	require.NoError(t, err)

	ended, err := svc.End(context.Background(), l.ID, "actor")
	require.NoError(t, err)
	assert.Equal(t, LeaseEnded, ended.Status)
	assert.Equal(t, properties.UnitVacant, units.statuses[1])
}

func TestTerminateFreesUnit(t *testing.T) {
	units := newStubUnits(1)
	svc := NewService(newMemoryRepo(), units, nil)

	l, err := svc.Create(context.Background(), draftRequest(1, 7), "actor")
	require.NoError(t, err)
	_, err = svc.Activate(context.Background(), l.ID, "actor")
	require.NoError(t, err)

	terminated, err := svc.Terminate(context.Background(), l.ID, "actor")
	require.NoError(t, err)
	assert.Equal(t, LeaseTerminated, terminated.Status)
	assert.Equal(t, properties.UnitVacant, units.statuses[1])
}

func TestCloseRequiresActiveLease(t *testing.T) {
	svc := NewService(newMemoryRepo(), newStubUnits(1), nil)

	l, err := svc.Create(context.Background(), draftRequest(1, 7), "actor")
	require.NoError(t, err)

	_, err = svc.End(context.Background(), l.ID, "actor")
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestUpdateOnlyDrafts(t *testing.T) {
	units := newStubUnits(1)
	svc := NewService(newMemoryRepo(), units, nil)

	l, err := svc.Create(context.Background(), draftRequest(1, 7), "actor")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), l.ID, UpdateLeaseRequest{
		StartDate:  l.StartDate,
		RentAmount: 1400,
	}, "actor")
	require.NoError(t, err)
	assert.Equal(t, float64(1400), updated.RentAmount)

	_, err = svc.Activate(context.Background(), l.ID, "actor")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), l.ID, UpdateLeaseRequest{StartDate: l.StartDate, RentAmount: 1500}, "actor")
	assert.True(t, errors.Is(err, httpx.ErrConflict))
}
