package properties

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
)

// Service wraps property and unit business rules.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) CreateProperty(ctx context.Context, landlordID uuid.UUID, req CreatePropertyRequest, actorID string) (*Property, error) {
	p := Property{
		LandlordID:   landlordID,
		Name:         req.Name,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		Notes:        req.Notes,
	}
	id, err := s.repo.CreateProperty(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	p.ID = id
	s.recordAudit(ctx, actorID, "property.create", "property", id)
	return s.repo.GetProperty(ctx, id)
}

func (s *Service) GetProperty(ctx context.Context, id int64) (*Property, error) {
	return s.repo.GetProperty(ctx, id)
}

func (s *Service) UpdateProperty(ctx context.Context, id int64, req UpdatePropertyRequest, actorID string) (*Property, error) {
	existing, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.AddressLine1 != nil {
		existing.AddressLine1 = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		existing.AddressLine2 = req.AddressLine2
	}
	if req.City != nil {
		existing.City = *req.City
	}
	if req.PostalCode != nil {
		existing.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		existing.Country = *req.Country
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}
	if err := s.repo.UpdateProperty(ctx, *existing); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "property.update", "property", id)
	return s.repo.GetProperty(ctx, id)
}

func (s *Service) DeleteProperty(ctx context.Context, id int64, actorID string) error {
	units, err := s.repo.ListUnits(ctx, id)
	if err != nil {
		return err
	}
	for _, u := range units {
		if u.Status == UnitOccupied {
			return fmt.Errorf("%w: property has occupied units", httpx.ErrConflict)
		}
	}
	if err := s.repo.DeleteProperty(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "property.delete", "property", id)
	return nil
}

func (s *Service) ListProperties(ctx context.Context, filter ListPropertiesFilter) ([]Property, int, error) {
	return s.repo.ListProperties(ctx, filter)
}

func (s *Service) CreateUnit(ctx context.Context, propertyID int64, req CreateUnitRequest, actorID string) (*Unit, error) {
	if _, err := s.repo.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	u := Unit{
		PropertyID: propertyID,
		Label:      req.Label,
		Bedrooms:   req.Bedrooms,
		Bathrooms:  req.Bathrooms,
		RentAmount: req.RentAmount,
		Status:     UnitVacant,
	}
	id, err := s.repo.CreateUnit(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create unit: %w", err)
	}
	s.recordAudit(ctx, actorID, "unit.create", "unit", id)
	return s.repo.GetUnit(ctx, id)
}

func (s *Service) GetUnit(ctx context.Context, id int64) (*Unit, error) {
	return s.repo.GetUnit(ctx, id)
}

func (s *Service) UpdateUnit(ctx context.Context, id int64, req UpdateUnitRequest, actorID string) (*Unit, error) {
	existing, err := s.repo.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Label != nil {
		existing.Label = *req.Label
	}
	if req.Bedrooms != nil {
		existing.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		existing.Bathrooms = *req.Bathrooms
	}
	if req.RentAmount != nil {
		existing.RentAmount = *req.RentAmount
	}
	if req.Status != nil {
		existing.Status = UnitStatus(*req.Status)
	}
	if err := s.repo.UpdateUnit(ctx, *existing); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "unit.update", "unit", id)
	return s.repo.GetUnit(ctx, id)
}

func (s *Service) ListUnits(ctx context.Context, propertyID int64) ([]Unit, error) {
	return s.repo.ListUnits(ctx, propertyID)
}

// SetUnitStatus flips occupancy, used by the leases module on activation and
// termination.
func (s *Service) SetUnitStatus(ctx context.Context, unitID int64, status UnitStatus) error {
	return s.repo.SetUnitStatus(ctx, unitID, status)
}

func (s *Service) recordAudit(ctx context.Context, actorID, action, entity string, id int64) {
	if s.audit == nil || actorID == "" {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: fmt.Sprintf("%d", id),
	})
}
