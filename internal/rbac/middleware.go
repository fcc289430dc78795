package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/harborview-hms/harborview/internal/directory"
	"github.com/harborview-hms/harborview/internal/platform/httpx"
	"github.com/harborview-hms/harborview/internal/shared"
)

// Fixed browser destinations. Routing targets, not security boundaries.
const (
	LoginPath        = "/login"
	AccessDeniedPath = "/access-denied"
)

// Middleware wires the guard into HTTP handlers. Require produces the
// browser denial shape, RequireAPI the structured API shape; a route group
// uses one flavor only, never both.
type Middleware struct {
	Guard  *Guard
	Logger *slog.Logger
}

// Require enforces a permission for browser-style routes. Unauthenticated
// requests are redirected to the login entry point; denials answer 403 with
// a Location header pointing at the fixed access-denied destination.
func (m Middleware) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := directory.PrincipalFromContext(r.Context())
			if p == nil {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			if err := m.Guard.Enforce(r.Context(), p, permission); err != nil {
				m.denyBrowser(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPI enforces a permission for API-style routes with structured
// 401/403 responses.
func (m Middleware) RequireAPI(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := directory.PrincipalFromContext(r.Context())
			if err := m.Guard.Enforce(r.Context(), p, permission); err != nil {
				if !isDenial(err) {
					m.logServiceError(r, err)
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) denyBrowser(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthenticated):
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
	case isDenial(err):
		w.Header().Set("Location", AccessDeniedPath)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Access denied. See " + AccessDeniedPath))
	default:
		m.logServiceError(r, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// isDenial distinguishes authorization outcomes from infrastructure
// failures, which must surface as 5xx rather than masquerade as denials.
func isDenial(err error) bool {
	return errors.Is(err, shared.ErrPermissionDenied) ||
		errors.Is(err, shared.ErrRoleNotFound) ||
		errors.Is(err, shared.ErrUnauthenticated)
}

func (m Middleware) logServiceError(r *http.Request, err error) {
	if m.Logger != nil {
		m.Logger.Error("authorization check failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
}
