package directory

import (
	"context"
	"fmt"

	"github.com/harborview-hms/harborview/internal/shared"
)

// Service resolves session principal ids against the staff directory.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve looks up the principal tied to a session. A missing directory row
// yields shared.ErrPrincipalNotFound; callers must treat that as a stale
// session and tear it down, never as an allow.
func (s *Service) Resolve(ctx context.Context, principalID int64) (*Principal, error) {
	p, err := s.repo.FindByID(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, fmt.Errorf("principal %d deactivated: %w", principalID, shared.ErrPrincipalNotFound)
	}
	return p, nil
}

// ListPrincipals returns all directory entries.
func (s *Service) ListPrincipals(ctx context.Context) ([]Principal, error) {
	return s.repo.ListPrincipals(ctx)
}
