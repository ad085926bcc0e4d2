package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentfold/rentfold/internal/shared"
)

// ErrEmailTaken indicates a signup with an already registered email.
var ErrEmailTaken = errors.New("auth: email already registered")

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !identity.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return identity, nil
}

// Register creates a new identity from a signup request.
func (s *Service) Register(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	identity := Identity{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Lookup fetches an identity by id.
func (s *Service) Lookup(ctx context.Context, id string) (*Identity, error) {
	return s.repo.FindByID(ctx, id)
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id, identityID string, expiresAt time.Time, ip, ua string) error {
	return s.repo.RecordSession(ctx, id, identityID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// RemoveAllSessions deletes all of the identity's session records.
func (s *Service) RemoveAllSessions(ctx context.Context, identityID string) error {
	return s.repo.DeleteSessionsFor(ctx, identityID)
}
