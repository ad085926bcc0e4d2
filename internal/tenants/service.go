package tenants

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/rentfold/rentfold/internal/access"
	"github.com/rentfold/rentfold/internal/shared"
)

// RoleBinder grants portal roles when an identity is linked to a profile.
type RoleBinder interface {
	Grant(ctx context.Context, identityID string, role access.Role) error
}

// RoleInvalidator drops cached role snapshots after a grant change.
type RoleInvalidator interface {
	Invalidate(ctx context.Context, identityID string)
}

type Service struct {
	repo        Repository
	roles       RoleBinder
	invalidator RoleInvalidator
	audit       *shared.AuditLogger
}

func NewService(repo Repository, roles RoleBinder, invalidator RoleInvalidator, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, roles: roles, invalidator: invalidator, audit: audit}
}

func (s *Service) Create(ctx context.Context, req CreateTenantRequest, actorID string) (*TenantProfile, error) {
	t := &TenantProfile{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Notes:    req.Notes,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "tenant.create", t.ID)
	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*TenantProfile, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByIdentity resolves the profile behind a portal login.
func (s *Service) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*TenantProfile, error) {
	return s.repo.FindByIdentity(ctx, identityID)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateTenantRequest, actorID string) (*TenantProfile, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.FullName = req.FullName
	t.Email = req.Email
	t.Phone = req.Phone
	t.Notes = req.Notes
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "tenant.update", t.ID)
	return t, nil
}

func (s *Service) List(ctx context.Context, filter ListTenantsFilter) ([]TenantProfile, int, error) {
	return s.repo.List(ctx, filter)
}

// LinkIdentity attaches a login identity to the profile and grants it the
// tenant role so the portal opens up on next request.
func (s *Service) LinkIdentity(ctx context.Context, id int64, identityID uuid.UUID, actorID string) (*TenantProfile, error) {
	if err := s.repo.LinkIdentity(ctx, id, identityID); err != nil {
		return nil, err
	}
	if s.roles != nil {
		if err := s.roles.Grant(ctx, identityID.String(), access.RoleTenant); err != nil {
			return nil, err
		}
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, identityID.String())
	}
	s.recordAudit(ctx, actorID, "tenant.link_identity", id)
	return s.repo.FindByID(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actorID, action string, entityID int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "tenant_profile",
		EntityID: strconv.FormatInt(entityID, 10),
	})
}
