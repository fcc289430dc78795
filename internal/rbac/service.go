package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harborview-hms/harborview/internal/shared"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Service orchestrates role and grant administration for the admin panel.
type Service struct {
	roles  RoleRepository
	grants GrantRepository
}

// NewService constructs a Service.
func NewService(roles RoleRepository, grants GrantRepository) *Service {
	return &Service{roles: roles, grants: grants}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roles.ListRoles(ctx)
}

// GetRole fetches a role by id.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	role, err := s.roles.GetRole(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Role{}, ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// RolePermissions returns all permissions granted to a role.
func (s *Service) RolePermissions(ctx context.Context, roleID int64) ([]string, error) {
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return nil, err
	}
	return s.grants.ListGrants(ctx, roleID)
}

// ReplaceRolePermissions swaps the grant set for a role. Every grant must
// reference an existing role, so the role is verified first. Permission
// strings stay opaque; only emptiness and duplicates are normalised away.
func (s *Service) ReplaceRolePermissions(ctx context.Context, roleID int64, permissions []string) error {
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(permissions))
	cleaned := make([]string, 0, len(permissions))
	for _, perm := range permissions {
		perm = strings.TrimSpace(perm)
		if perm == "" {
			return fmt.Errorf("rbac: empty permission for role %d", roleID)
		}
		if _, dup := seen[perm]; dup {
			continue
		}
		seen[perm] = struct{}{}
		cleaned = append(cleaned, perm)
	}
	return s.grants.ReplaceGrants(ctx, roleID, cleaned)
}
