package app

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/harborview-hms/harborview/internal/directory"
	"github.com/harborview-hms/harborview/internal/observability"
	"github.com/harborview-hms/harborview/internal/platform/httpx"
	"github.com/harborview-hms/harborview/internal/rbac"
	"github.com/harborview-hms/harborview/internal/session"
	"github.com/harborview-hms/harborview/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger    *slog.Logger
	Config    *Config
	Sessions  *session.Manager
	Directory *directory.Service
	Metrics   *observability.Metrics
}

// MiddlewareStack installs the Harborview middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "same-origin",
		IsDevelopment:         !cfg.Config.IsProduction(),
		ContentSecurityPolicy: "default-src 'self'",
	})

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					cfg.Logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
		httprate.Limit(120, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, func(next http.Handler) http.Handler {
			return cfg.Metrics.Middleware(next)
		})
	}
	middlewares = append(middlewares, SessionLoader(cfg))
	return middlewares
}

// SessionLoader resolves the session cookie into session and principal
// context values. Requests with no cookie or an unknown token proceed
// unauthenticated and are denied downstream; an idle-expired session or one
// referencing a deleted account is torn down here and the request terminated.
// Nothing is ever allowed on a partial resolution.
func SessionLoader(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cfg.Sessions.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := cfg.Sessions.Load(r.Context(), token)
			if err != nil {
				if errors.Is(err, shared.ErrUnauthenticated) {
					// Stale cookie for an evicted record.
					cfg.Sessions.ClearCookie(w)
					next.ServeHTTP(w, r)
					return
				}
				cfg.Logger.Error("load session", slog.Any("error", err))
				respondServiceFailure(w, r)
				return
			}

			now := time.Now().UTC()
			if !cfg.Sessions.IsValid(sess, now) {
				if err := cfg.Sessions.Destroy(r.Context(), sess.Token); err != nil {
					cfg.Logger.Warn("destroy expired session", slog.Any("error", err))
				}
				cfg.Sessions.ClearCookie(w)
				respondDenial(w, r, shared.ErrSessionExpired)
				return
			}

			principal, err := cfg.Directory.Resolve(r.Context(), sess.PrincipalID)
			if err != nil {
				if errors.Is(err, shared.ErrPrincipalNotFound) {
					cfg.Logger.Warn("session references unknown principal",
						slog.Int64("principal_id", sess.PrincipalID))
					if err := cfg.Sessions.Destroy(r.Context(), sess.Token); err != nil {
						cfg.Logger.Warn("destroy corrupted session", slog.Any("error", err))
					}
					cfg.Sessions.ClearCookie(w)
					respondDenial(w, r, shared.ErrUnauthenticated)
					return
				}
				cfg.Logger.Error("resolve principal", slog.Any("error", err))
				respondServiceFailure(w, r)
				return
			}

			ctx := session.ContextWithSession(r.Context(), sess)
			ctx = directory.ContextWithPrincipal(ctx, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// isAPIRequest selects the structured denial shape. The extension endpoint
// is API-style by contract.
func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/session/")
}

func respondDenial(w http.ResponseWriter, r *http.Request, err error) {
	if isAPIRequest(r) {
		httpx.RespondError(w, err)
		return
	}
	http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
}

func respondServiceFailure(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		httpx.ProblemCode(w, http.StatusInternalServerError, httpx.CodeInternal, "Internal Error", "")
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
