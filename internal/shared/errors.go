package shared

import "errors"

// Authorization error taxonomy. Every denial or resolution failure in this
// layer maps to exactly one of these sentinels.
var (
	// ErrUnauthenticated indicates no valid session accompanies the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSessionExpired indicates the idle timeout has been exceeded.
	ErrSessionExpired = errors.New("session expired")
	// ErrPrincipalNotFound indicates the session references an account with no
	// directory row. Treated as a corrupted session: forced teardown, never a
	// silent allow.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrRoleNotFound indicates a principal references a role id with no
	// directory entry. Resolved as deny and logged for investigation.
	ErrRoleNotFound = errors.New("role not found")
	// ErrPermissionDenied is the common, expected denial outcome for an
	// authenticated principal lacking a grant.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")
)
