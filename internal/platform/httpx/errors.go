// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/harborview-hms/harborview/internal/shared"
)

// Stable error codes surfaced to API callers.
const (
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeSessionExpired   = "SESSION_EXPIRED"
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_FAILED"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL"
)

// RespondError maps authorization taxonomy errors to structured API
// responses. Unauthenticated and expired sessions are 401; denials are 403;
// anything unrecognised is a 500 so that infrastructure failures are never
// masked as authorization decisions.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrSessionExpired):
		ProblemCode(w, http.StatusUnauthorized, CodeSessionExpired, "Session Expired", "session idle timeout exceeded")
	case errors.Is(err, shared.ErrUnauthenticated),
		errors.Is(err, shared.ErrPrincipalNotFound):
		ProblemCode(w, http.StatusUnauthorized, CodeUnauthenticated, "Unauthenticated", "no valid session")
	case errors.Is(err, shared.ErrPermissionDenied),
		errors.Is(err, shared.ErrRoleNotFound):
		ProblemCode(w, http.StatusForbidden, CodeForbidden, "Forbidden", "permission denied")
	case errors.Is(err, shared.ErrNotFound):
		ProblemCode(w, http.StatusNotFound, CodeNotFound, "Not Found", err.Error())
	default:
		ProblemCode(w, http.StatusInternalServerError, CodeInternal, "Internal Error", "")
	}
}

// MethodNotAllowed is the router-wide handler for unsupported request
// methods, keeping 405 responses structured like every other API error.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	ProblemCode(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method Not Allowed", r.Method+" not supported on "+r.URL.Path)
}
