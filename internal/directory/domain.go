package directory

import "time"

// Principal represents the authenticated actor behind a session. Read-only
// within the authorization layer; ownership of the record stays with the
// staff directory.
type Principal struct {
	ID           int64
	Username     string
	RoleID       int64
	DepartmentID *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
