package leases

import (
	"context"
	"errors"
	"strconv"

	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/properties"
	"github.com/rentfold/rentfold/internal/shared"
)

// UnitDirectory is the slice of the property catalogue the lease lifecycle
// needs: finding units and flipping their occupancy status.
type UnitDirectory interface {
	GetUnit(ctx context.Context, id int64) (*properties.Unit, error)
	SetUnitStatus(ctx context.Context, unitID int64, status properties.UnitStatus) error
}

type Service struct {
	repo  Repository
	units UnitDirectory
	audit *shared.AuditLogger
}

func NewService(repo Repository, units UnitDirectory, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, units: units, audit: audit}
}

// Create drafts a lease. The unit must exist but may still be occupied; the
// conflict is only enforced at activation so drafts can be prepared ahead of
// a move-out.
func (s *Service) Create(ctx context.Context, req CreateLeaseRequest, actorID string) (*Lease, error) {
	if _, err := s.units.GetUnit(ctx, req.UnitID); err != nil {
		return nil, err
	}
	if req.EndDate != nil && !req.EndDate.After(req.StartDate) {
		return nil, errors.Join(httpx.ErrValidation, errors.New("end_date must follow start_date"))
	}
	l := &Lease{
		UnitID:        req.UnitID,
		TenantID:      req.TenantID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		RentAmount:    req.RentAmount,
		DepositAmount: req.DepositAmount,
		Status:        LeaseDraft,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "lease.create", l.ID)
	return l, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Lease, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListLeasesFilter) ([]Lease, int, error) {
	return s.repo.List(ctx, filter)
}

// ActiveForTenant returns the tenant's current lease, used by the portal.
func (s *Service) ActiveForTenant(ctx context.Context, tenantID int64) (*Lease, error) {
	return s.repo.ActiveForTenant(ctx, tenantID)
}

// Update edits lease terms. Only drafts may be edited.
func (s *Service) Update(ctx context.Context, id int64, req UpdateLeaseRequest, actorID string) (*Lease, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status != LeaseDraft {
		return nil, errors.Join(httpx.ErrConflict, errors.New("only draft leases can be edited"))
	}
	if req.EndDate != nil && !req.EndDate.After(req.StartDate) {
		return nil, errors.Join(httpx.ErrValidation, errors.New("end_date must follow start_date"))
	}
	l.StartDate = req.StartDate
	l.EndDate = req.EndDate
	l.RentAmount = req.RentAmount
	l.DepositAmount = req.DepositAmount
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "lease.update", l.ID)
	return l, nil
}

// Activate moves a draft lease to ACTIVE and marks the unit occupied. A unit
// carries at most one active lease.
func (s *Service) Activate(ctx context.Context, id int64, actorID string) (*Lease, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status != LeaseDraft {
		return nil, errors.Join(httpx.ErrConflict, errors.New("lease is not a draft"))
	}
	existing, err := s.repo.ActiveForUnit(ctx, l.UnitID)
	if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Join(httpx.ErrConflict, errors.New("unit already has an active lease"))
	}

	l.Status = LeaseActive
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	if err := s.units.SetUnitStatus(ctx, l.UnitID, properties.UnitOccupied); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "lease.activate", l.ID)
	return l, nil
}

// End closes an active lease at its natural term and frees the unit.
func (s *Service) End(ctx context.Context, id int64, actorID string) (*Lease, error) {
	return s.close(ctx, id, LeaseEnded, "lease.end", actorID)
}

// Terminate closes an active lease early and frees the unit.
func (s *Service) Terminate(ctx context.Context, id int64, actorID string) (*Lease, error) {
	return s.close(ctx, id, LeaseTerminated, "lease.terminate", actorID)
}

func (s *Service) close(ctx context.Context, id int64, status LeaseStatus, action, actorID string) (*Lease, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status != LeaseActive {
		return nil, errors.Join(httpx.ErrConflict, errors.New("lease is not active"))
	}
	l.Status = status
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	if err := s.units.SetUnitStatus(ctx, l.UnitID, properties.UnitVacant); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, action, l.ID)
	return l, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID, action string, id int64) {
	if s.audit == nil || actorID == "" {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "lease",
		EntityID: strconv.FormatInt(id, 10),
	})
}
