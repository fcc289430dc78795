package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborview-hms/harborview/internal/observability"
	"github.com/harborview-hms/harborview/internal/platform/httpx"
	"github.com/harborview-hms/harborview/internal/shared"
)

// Handler exposes the session continuity endpoints.
type Handler struct {
	logger   *slog.Logger
	manager  *Manager
	recorder Recorder
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewHandler constructs a Handler instance. recorder and metrics may be nil.
func NewHandler(logger *slog.Logger, manager *Manager, recorder Recorder, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		manager:  manager,
		recorder: recorder,
		metrics:  metrics,
		now:      time.Now,
	}
}

// MountRoutes registers session routes on the provided router. Both
// endpoints mutate state and accept POST only; other methods fall through to
// the router-wide structured 405.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/session/extend", h.handleExtend)
	r.Post("/logout", h.handleLogout)
}

type extendResponse struct {
	OK        bool      `json:"ok"`
	ExpiresAt time.Time `json:"expires_at"`
	Now       time.Time `json:"now"`
}

func (h *Handler) handleExtend(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	now := h.now().UTC()
	next, err := h.manager.Extend(r.Context(), sess, now)
	if err != nil {
		if errors.Is(err, shared.ErrSessionExpired) {
			h.metrics.ObserveSessionExtension("expired")
			h.manager.ClearCookie(w)
			httpx.RespondError(w, err)
			return
		}
		h.metrics.ObserveSessionExtension("error")
		h.logger.Error("extend session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.metrics.ObserveSessionExtension("ok")
	h.recordRotation(r, sess, next)
	h.manager.WriteCookie(w, next)
	httpx.JSON(w, http.StatusOK, extendResponse{
		OK:        true,
		ExpiresAt: h.manager.ExpiresAt(next),
		Now:       now,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		if err := h.manager.Destroy(r.Context(), sess.Token); err != nil {
			h.logger.Warn("destroy session", slog.Any("error", err))
		}
		if h.recorder != nil {
			if err := h.recorder.Remove(r.Context(), sess.Token); err != nil {
				h.logger.Warn("remove session trail", slog.Any("error", err))
			}
		}
	}
	h.manager.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) recordRotation(r *http.Request, old, next *Session) {
	if h.recorder == nil {
		return
	}
	ctx := r.Context()
	if err := h.recorder.Insert(ctx, next.Token, next.PrincipalID, next.IssuedAt, h.manager.ExpiresAt(next), r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("record session trail", slog.Any("error", err))
	}
	if err := h.recorder.Remove(ctx, old.Token); err != nil {
		h.logger.Warn("remove rotated session trail", slog.Any("error", err))
	}
}

// SetClockForTest overrides the handler clock.
func (h *Handler) SetClockForTest(now func() time.Time) {
	h.now = now
}

// ExtendForTest exposes the POST handler for tests.
func (h *Handler) ExtendForTest(w http.ResponseWriter, r *http.Request) {
	h.handleExtend(w, r)
}

// LogoutForTest exposes the POST handler for tests.
func (h *Handler) LogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}
