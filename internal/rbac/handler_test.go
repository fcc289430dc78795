package rbac

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-hms/harborview/internal/directory"
	"github.com/harborview-hms/harborview/internal/platform/httpx"
)

func newGrantsAPI(t *testing.T, repo *mockRepo) http.Handler {
	t.Helper()
	guard := newGuard(repo, nil)
	handler := NewHandler(nil, NewService(repo, repo), Middleware{Guard: guard})
	r := chi.NewRouter()
	r.Route("/api/roles", handler.MountRoutes)
	return r
}

func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(directory.ContextWithPrincipal(context.Background(), principal(1, RoleAdmin)))
}

func TestListRolesEndpoint(t *testing.T) {
	repo := newMockRepo()
	repo.roles[5] = Role{ID: 5, Name: "Front Desk"}
	api := newGrantsAPI(t, repo)

	req := asAdmin(httptest.NewRequest(http.MethodGet, "/api/roles/", nil))
	res := httptest.NewRecorder()
	api.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Front Desk")
}

func TestReplacePermissionsEndpoint(t *testing.T) {
	repo := newMockRepo()
	repo.roles[5] = Role{ID: 5, Name: "Front Desk"}
	api := newGrantsAPI(t, repo)

	body := `{"permissions":["booking.view","booking.edit","booking.view"]}`
	req := asAdmin(httptest.NewRequest(http.MethodPut, "/api/roles/5/permissions", strings.NewReader(body)))
	res := httptest.NewRecorder()
	api.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	// Duplicates collapse; order preserved.
	assert.Equal(t, []string{"booking.view", "booking.edit"}, repo.grants[5])
}

func TestReplacePermissionsRejectsMalformedBody(t *testing.T) {
	repo := newMockRepo()
	repo.roles[5] = Role{ID: 5, Name: "Front Desk"}
	api := newGrantsAPI(t, repo)

	req := asAdmin(httptest.NewRequest(http.MethodPut, "/api/roles/5/permissions", strings.NewReader("{")))
	res := httptest.NewRecorder()
	api.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	assert.Equal(t, httpx.CodeValidation, problem.Code)
}

func TestReplacePermissionsRejectsEmptyPermission(t *testing.T) {
	repo := newMockRepo()
	repo.roles[5] = Role{ID: 5, Name: "Front Desk"}
	api := newGrantsAPI(t, repo)

	req := asAdmin(httptest.NewRequest(http.MethodPut, "/api/roles/5/permissions", strings.NewReader(`{"permissions":[""]}`)))
	res := httptest.NewRecorder()
	api.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestReplacePermissionsUnknownRole(t *testing.T) {
	api := newGrantsAPI(t, newMockRepo())

	req := asAdmin(httptest.NewRequest(http.MethodPut, "/api/roles/99/permissions", strings.NewReader(`{"permissions":["a.b"]}`)))
	res := httptest.NewRecorder()
	api.ServeHTTP(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestGrantsAPIRequiresPermission(t *testing.T) {
	repo := newMockRepo()
	repo.roles[5] = Role{ID: 5, Name: "Front Desk"}
	api := newGrantsAPI(t, repo)

	// Ordinary role with no grants at all.
	req := httptest.NewRequest(http.MethodGet, "/api/roles/", nil)
	req = req.WithContext(directory.ContextWithPrincipal(context.Background(), principal(9, 5)))
	res := httptest.NewRecorder()
	api.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
}
