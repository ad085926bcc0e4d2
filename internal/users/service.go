package users

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rentfold/rentfold/internal/access"
	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
)

// GrantStore mutates role grants. Satisfied by access.PGGrantStore.
type GrantStore interface {
	Grant(ctx context.Context, identityID string, role access.Role) error
	Revoke(ctx context.Context, identityID string, role access.Role) error
}

// RoleInvalidator drops cached role snapshots after a grant change.
type RoleInvalidator interface {
	Invalidate(ctx context.Context, identityID string)
}

// SessionRevoker signs an identity out everywhere, used on deactivation.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, identityID string) error
}

type Service struct {
	repo        Repository
	grants      GrantStore
	invalidator RoleInvalidator
	sessions    SessionRevoker
	audit       *shared.AuditLogger
}

func NewService(repo Repository, grants GrantStore, invalidator RoleInvalidator, sessions SessionRevoker, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, grants: grants, invalidator: invalidator, sessions: sessions, audit: audit}
}

func (s *Service) List(ctx context.Context, search string, page, perPage int) ([]User, int, error) {
	return s.repo.List(ctx, search, page, perPage)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// SetActive toggles an identity. Deactivation revokes every live session so
// the lockout takes effect immediately, not at next login.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool, actorID string) (*User, error) {
	if id.String() == actorID && !active {
		return nil, errors.Join(httpx.ErrConflict, errors.New("cannot deactivate your own account"))
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	if !active && s.sessions != nil {
		if err := s.sessions.RevokeAll(ctx, id.String()); err != nil {
			return nil, err
		}
	}
	action := "user.activate"
	if !active {
		action = "user.deactivate"
	}
	s.recordAudit(ctx, actorID, action, id, nil)
	return s.repo.FindByID(ctx, id)
}

// Grant adds a role and invalidates the cached role snapshot.
func (s *Service) Grant(ctx context.Context, id uuid.UUID, role access.Role, actorID string) (*User, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.grants.Grant(ctx, id.String(), role); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	s.recordAudit(ctx, actorID, "user.grant", id, map[string]any{"role": string(role)})
	return s.repo.FindByID(ctx, id)
}

// Revoke removes a role. Admins cannot strip their own admin grant; that
// locks the console with no way back in.
func (s *Service) Revoke(ctx context.Context, id uuid.UUID, role access.Role, actorID string) (*User, error) {
	if id.String() == actorID && role.IsAdmin() {
		return nil, errors.Join(httpx.ErrConflict, errors.New("cannot revoke your own admin role"))
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.grants.Revoke(ctx, id.String(), role); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	s.recordAudit(ctx, actorID, "user.revoke", id, map[string]any{"role": string(role)})
	return s.repo.FindByID(ctx, id)
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, id.String())
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil || actorID == "" {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "identity",
		EntityID: id.String(),
		Meta:     meta,
	})
}
