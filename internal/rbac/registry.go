package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/harborview-hms/harborview/internal/shared"
)

// Role ids that bypass fine-grained permission checks entirely.
const (
	RoleAdmin    int64 = 1
	RoleDirector int64 = 11
)

// privilegedRoles is the closed set of bypass roles. It is deliberately a
// compile-time table, never derived from mutable data: widening it is a
// security-relevant change and must happen here, in code review.
var privilegedRoles = map[int64]struct{}{
	RoleAdmin:    {},
	RoleDirector: {},
}

// Registry is the single source of truth for role definitions and the
// privileged-role bypass set.
type Registry struct {
	repo RoleRepository
}

// NewRegistry constructs a Registry.
func NewRegistry(repo RoleRepository) *Registry {
	return &Registry{repo: repo}
}

// IsPrivileged reports whether the role bypasses the permission index.
func (reg *Registry) IsPrivileged(roleID int64) bool {
	_, ok := privilegedRoles[roleID]
	return ok
}

// Describe fetches the role directory entry. A missing role yields
// shared.ErrRoleNotFound; callers resolve that as deny, not as a crash.
func (reg *Registry) Describe(ctx context.Context, roleID int64) (Role, error) {
	role, err := reg.repo.GetRole(ctx, roleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Role{}, fmt.Errorf("role %d: %w", roleID, shared.ErrRoleNotFound)
		}
		return Role{}, err
	}
	return role, nil
}
