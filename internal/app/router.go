package app

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/harborview-hms/harborview/internal/dashboard"
	"github.com/harborview-hms/harborview/internal/directory"
	"github.com/harborview-hms/harborview/internal/observability"
	"github.com/harborview-hms/harborview/internal/platform/httpx"
	"github.com/harborview-hms/harborview/internal/rbac"
	"github.com/harborview-hms/harborview/internal/session"
	"github.com/harborview-hms/harborview/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Sessions       *session.Manager
	Directory      *directory.Service
	Registry       *rbac.Registry
	SessionHandler *session.Handler
	RBACHandler    *rbac.Handler
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Harborview defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:    params.Logger,
		Config:    params.Config,
		Sessions:  params.Sessions,
		Directory: params.Directory,
		Metrics:   params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.MethodNotAllowed(httpx.MethodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	// Entry points for unauthenticated browsers. The login flow itself is an
	// external collaborator; these are the fixed destinations the denial
	// contract names.
	r.Get(rbac.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<h1>Sign in required</h1>"))
	})
	r.Get(rbac.AccessDeniedPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<h1>Access denied</h1>"))
	})

	// Post-authentication landing: steer the principal to the view for its
	// role. Unknown role names land on the generic overview; routing is not
	// a security boundary.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		p := directory.PrincipalFromContext(r.Context())
		if p == nil {
			http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
			return
		}
		role, err := params.Registry.Describe(r.Context(), p.RoleID)
		if err != nil {
			if !errors.Is(err, shared.ErrRoleNotFound) {
				params.Logger.Error("describe role for landing", slog.Any("error", err))
			}
			http.Redirect(w, r, dashboard.DefaultDestination, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, dashboard.RouteFor(role.Name), http.StatusSeeOther)
	})

	params.SessionHandler.MountRoutes(r)

	r.Route("/api", func(r chi.Router) {
		r.Get("/me", meHandler(params))
		r.Route("/roles", params.RBACHandler.MountRoutes)
	})

	// Landing views. Rendering belongs to the page layer; the guard wiring
	// is what matters here.
	r.Group(func(r chi.Router) {
		r.Use(params.RBACMiddleware.Require(shared.PermBookingView))
		r.Get("/frontdesk", placeholderPage("Front desk"))
		r.Get("/reservations", placeholderPage("Reservations"))
	})
	r.Group(func(r chi.Router) {
		r.Use(params.RBACMiddleware.Require(shared.PermFinanceView))
		r.Get("/finance", placeholderPage("Finance"))
	})
	r.Group(func(r chi.Router) {
		r.Use(params.RBACMiddleware.Require(shared.PermHousekeepingView))
		r.Get("/housekeeping", placeholderPage("Housekeeping"))
	})
	r.Get("/overview", func(w http.ResponseWriter, r *http.Request) {
		if directory.PrincipalFromContext(r.Context()) == nil {
			http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
			return
		}
		placeholderPage("Overview")(w, r)
	})

	return r
}

func meHandler(params RouterParams) http.HandlerFunc {
	type roleBody struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	type meBody struct {
		ID           int64    `json:"id"`
		Username     string   `json:"username"`
		Role         roleBody `json:"role"`
		DepartmentID *int64   `json:"department_id,omitempty"`
		Destination  string   `json:"destination"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		p := directory.PrincipalFromContext(r.Context())
		if p == nil {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		role, err := params.Registry.Describe(r.Context(), p.RoleID)
		if err != nil {
			if errors.Is(err, shared.ErrRoleNotFound) {
				params.Logger.Warn("identity lookup hit unknown role",
					slog.Int64("principal_id", p.ID),
					slog.Int64("role_id", p.RoleID))
				httpx.RespondError(w, err)
				return
			}
			params.Logger.Error("describe role", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, meBody{
			ID:           p.ID,
			Username:     p.Username,
			Role:         roleBody{ID: role.ID, Name: role.Name},
			DepartmentID: p.DepartmentID,
			Destination:  dashboard.RouteFor(role.Name),
		})
	}
}

func placeholderPage(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<h1>" + title + "</h1>"))
	}
}
