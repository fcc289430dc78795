package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-hms/harborview/internal/directory"
	"github.com/harborview-hms/harborview/internal/platform/httpx"
	"github.com/harborview-hms/harborview/internal/session"
	"github.com/harborview-hms/harborview/internal/shared"
	_ "github.com/harborview-hms/harborview/testing"
)

type stubDirectory struct {
	entries map[int64]*directory.Principal
}

func (s *stubDirectory) FindByID(ctx context.Context, id int64) (*directory.Principal, error) {
	p, ok := s.entries[id]
	if !ok {
		return nil, shared.ErrPrincipalNotFound
	}
	return p, nil
}

func (s *stubDirectory) ListPrincipals(ctx context.Context) ([]directory.Principal, error) {
	return nil, nil
}

func newLoader(t *testing.T, entries map[int64]*directory.Principal) (func(http.Handler) http.Handler, *session.Manager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := session.NewManager(client, "test_session", time.Hour, false)
	loader := SessionLoader(MiddlewareConfig{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sessions:  sessions,
		Directory: directory.NewService(&stubDirectory{entries: entries}),
	})
	return loader, sessions
}

func captureHandler(saw **directory.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*saw = directory.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionLoaderAttachesPrincipal(t *testing.T) {
	loader, sessions := newLoader(t, map[int64]*directory.Principal{
		7: {ID: 7, Username: "mala", RoleID: 5, IsActive: true},
	})
	sess, err := sessions.Issue(context.Background(), 7, time.Now().UTC())
	require.NoError(t, err)

	var saw *directory.Principal
	req := httptest.NewRequest(http.MethodGet, "/overview", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: sess.Token})
	res := httptest.NewRecorder()
	loader(captureHandler(&saw)).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, saw)
	assert.Equal(t, int64(7), saw.ID)
}

func TestSessionLoaderWithoutCookie(t *testing.T) {
	loader, _ := newLoader(t, nil)

	var saw *directory.Principal
	req := httptest.NewRequest(http.MethodGet, "/overview", nil)
	res := httptest.NewRecorder()
	loader(captureHandler(&saw)).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Nil(t, saw, "request proceeds unauthenticated")
}

func TestSessionLoaderExpiredAPISession(t *testing.T) {
	loader, sessions := newLoader(t, map[int64]*directory.Principal{
		7: {ID: 7, Username: "mala", RoleID: 5, IsActive: true},
	})
	// Last activity well past the idle window.
	sess, err := sessions.Issue(context.Background(), 7, time.Now().UTC().Add(-2*time.Hour))
	require.NoError(t, err)

	var saw *directory.Principal
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: sess.Token})
	res := httptest.NewRecorder()
	loader(captureHandler(&saw)).ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Nil(t, saw, "expired session must not reach the handler")

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	assert.Equal(t, httpx.CodeSessionExpired, problem.Code)

	// Teardown: record gone, cookie cleared.
	_, err = sessions.Load(context.Background(), sess.Token)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSessionLoaderExpiredBrowserSession(t *testing.T) {
	loader, sessions := newLoader(t, nil)
	sess, err := sessions.Issue(context.Background(), 7, time.Now().UTC().Add(-2*time.Hour))
	require.NoError(t, err)

	var saw *directory.Principal
	req := httptest.NewRequest(http.MethodGet, "/overview", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: sess.Token})
	res := httptest.NewRecorder()
	loader(captureHandler(&saw)).ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Header().Get("Location"))
}

func TestSessionLoaderUnknownPrincipalTearsDown(t *testing.T) {
	loader, sessions := newLoader(t, map[int64]*directory.Principal{})
	sess, err := sessions.Issue(context.Background(), 99, time.Now().UTC())
	require.NoError(t, err)

	var saw *directory.Principal
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: sess.Token})
	res := httptest.NewRecorder()
	loader(captureHandler(&saw)).ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Nil(t, saw, "corrupted session must never resolve to an allow")

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	assert.Equal(t, httpx.CodeUnauthenticated, problem.Code)

	_, err = sessions.Load(context.Background(), sess.Token)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestSessionLoaderStaleCookieProceedsUnauthenticated(t *testing.T) {
	loader, _ := newLoader(t, nil)

	var saw *directory.Principal
	req := httptest.NewRequest(http.MethodGet, "/overview", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "gone-token"})
	res := httptest.NewRecorder()
	loader(captureHandler(&saw)).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Nil(t, saw)
}
