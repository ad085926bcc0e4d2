package branding

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
)

type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Get returns the landlord's branding, falling back to the default profile so
// document rendering never blocks on configuration.
func (s *Service) Get(ctx context.Context, landlordID uuid.UUID) (*Profile, error) {
	p, err := s.repo.Find(ctx, landlordID)
	if errors.Is(err, httpx.ErrNotFound) {
		return DefaultProfile(landlordID), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Upsert(ctx context.Context, landlordID uuid.UUID, req UpsertProfileRequest, actorID string) (*Profile, error) {
	p := &Profile{
		LandlordID:  landlordID,
		DisplayName: req.DisplayName,
		AccentColor: req.AccentColor,
		FooterText:  req.FooterText,
		LogoURL:     req.LogoURL,
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	if s.audit != nil && actorID != "" {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "branding.upsert",
			Entity:   "branding_profile",
			EntityID: landlordID.String(),
		})
	}
	return p, nil
}

// ForLease resolves the branding behind a lease's property chain.
func (s *Service) ForLease(ctx context.Context, leaseID int64) (*Profile, error) {
	landlordID, err := s.repo.LandlordForLease(ctx, leaseID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return DefaultProfile(uuid.Nil), nil
		}
		return nil, err
	}
	return s.Get(ctx, landlordID)
}
