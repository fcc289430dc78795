package rbac

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// Index answers permission membership queries. Concurrent lookups for the
// same role share one grant-set load through singleflight; nothing is cached
// across requests, so answers always reflect current storage.
type Index struct {
	repo  GrantRepository
	group singleflight.Group
}

// NewIndex constructs an Index.
func NewIndex(repo GrantRepository) *Index {
	return &Index{repo: repo}
}

// HasPermission reports whether the role holds the exact permission string.
// Storage failures are returned as errors, never collapsed into a false
// answer, so infrastructure trouble is not mistaken for a denial.
func (ix *Index) HasPermission(ctx context.Context, roleID int64, permission string) (bool, error) {
	grants, err, _ := ix.group.Do(strconv.FormatInt(roleID, 10), func() (any, error) {
		return ix.repo.ListGrants(ctx, roleID)
	})
	if err != nil {
		return false, fmt.Errorf("rbac: load grants for role %d: %w", roleID, err)
	}
	for _, granted := range grants.([]string) {
		if granted == permission {
			return true, nil
		}
	}
	return false, nil
}
