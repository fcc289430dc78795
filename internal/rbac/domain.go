package rbac

import "time"

// Role represents a high-level permission grouping.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Grant ties a permission token to a role. Permissions are opaque strings
// with exact-match semantics; no hierarchy, no wildcards.
type Grant struct {
	RoleID     int64
	Permission string
	CreatedAt  time.Time
}
