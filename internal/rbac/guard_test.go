package rbac

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-hms/harborview/internal/directory"
	"github.com/harborview-hms/harborview/internal/shared"
	_ "github.com/harborview-hms/harborview/testing"
)

type mockRepo struct {
	roles  map[int64]Role
	grants map[int64][]string

	getRoleErr    error
	listGrantsErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		roles:  make(map[int64]Role),
		grants: make(map[int64][]string),
	}
}

func (m *mockRepo) GetRole(ctx context.Context, id int64) (Role, error) {
	if m.getRoleErr != nil {
		return Role{}, m.getRoleErr
	}
	role, ok := m.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return role, nil
}

func (m *mockRepo) ListRoles(ctx context.Context) ([]Role, error) {
	var out []Role
	for _, role := range m.roles {
		out = append(out, role)
	}
	return out, nil
}

func (m *mockRepo) HasGrant(ctx context.Context, roleID int64, permission string) (bool, error) {
	if m.listGrantsErr != nil {
		return false, m.listGrantsErr
	}
	for _, granted := range m.grants[roleID] {
		if granted == permission {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) ListGrants(ctx context.Context, roleID int64) ([]string, error) {
	if m.listGrantsErr != nil {
		return nil, m.listGrantsErr
	}
	return m.grants[roleID], nil
}

func (m *mockRepo) ReplaceGrants(ctx context.Context, roleID int64, permissions []string) error {
	m.grants[roleID] = append([]string(nil), permissions...)
	return nil
}

type captureAuditor struct {
	records []shared.AccessRecord
}

func (c *captureAuditor) Record(ctx context.Context, rec shared.AccessRecord) error {
	c.records = append(c.records, rec)
	return nil
}

func newGuard(repo *mockRepo, auditor Auditor) *Guard {
	return NewGuard(NewRegistry(repo), NewIndex(repo), auditor, nil, nil)
}

func principal(id, roleID int64) *directory.Principal {
	return &directory.Principal{ID: id, Username: "staff", RoleID: roleID, IsActive: true}
}

func TestCheckPrivilegedBypassIsUnconditional(t *testing.T) {
	repo := newMockRepo()
	// Deliberately empty grant table and no role rows: the bypass must not
	// depend on either.
	guard := newGuard(repo, nil)

	for _, roleID := range []int64{RoleAdmin, RoleDirector} {
		for _, perm := range []string{"finance.delete", "booking.read", "", "anything.at.all"} {
			allowed, err := guard.Check(context.Background(), principal(1, roleID), perm)
			require.NoError(t, err)
			assert.True(t, allowed, "role %d perm %q", roleID, perm)
		}
	}
}

func TestCheckMirrorsIndexForOrdinaryRoles(t *testing.T) {
	repo := newMockRepo()
	repo.roles[5] = Role{ID: 5, Name: "Front Desk"}
	repo.grants[5] = []string{"booking.read"}
	guard := newGuard(repo, nil)

	allowed, err := guard.Check(context.Background(), principal(9, 5), "booking.read")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = guard.Check(context.Background(), principal(9, 5), "booking.delete")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Exact match only: case differences and near-misses do not count.
	allowed, err = guard.Check(context.Background(), principal(9, 5), "Booking.Read")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCheckAbsentPrincipal(t *testing.T) {
	guard := newGuard(newMockRepo(), nil)

	allowed, err := guard.Check(context.Background(), nil, "booking.read")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCheckUnknownRoleDeniesWithoutError(t *testing.T) {
	repo := newMockRepo()
	repo.grants[8] = []string{"booking.read"}
	// No role row for id 8: referential anomaly.
	guard := newGuard(repo, nil)

	allowed, err := guard.Check(context.Background(), principal(3, 8), "booking.read")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCheckStorageFailureIsAnErrorNotADenial(t *testing.T) {
	repo := newMockRepo()
	repo.roles[5] = Role{ID: 5, Name: "Front Desk"}
	repo.listGrantsErr = errors.New("connection refused")
	guard := newGuard(repo, nil)

	_, err := guard.Check(context.Background(), principal(9, 5), "booking.read")
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestEnforceOutcomes(t *testing.T) {
	repo := newMockRepo()
	repo.roles[5] = Role{ID: 5, Name: "Front Desk"}
	repo.grants[5] = []string{"booking.read"}
	auditor := &captureAuditor{}
	guard := newGuard(repo, auditor)

	err := guard.Enforce(context.Background(), principal(9, 5), "booking.read")
	require.NoError(t, err)

	err = guard.Enforce(context.Background(), principal(9, 5), "booking.delete")
	require.ErrorIs(t, err, shared.ErrPermissionDenied)

	err = guard.Enforce(context.Background(), nil, "booking.read")
	require.ErrorIs(t, err, shared.ErrUnauthenticated)

	require.Len(t, auditor.records, 2)
	assert.Equal(t, shared.DecisionAllow, auditor.records[0].Decision)
	assert.Equal(t, shared.DecisionDeny, auditor.records[1].Decision)
	assert.WithinDuration(t, time.Now().UTC(), auditor.records[1].At, time.Minute)
}

func TestEnforceAuditsBypassDecision(t *testing.T) {
	repo := newMockRepo()
	auditor := &captureAuditor{}
	guard := newGuard(repo, auditor)

	require.NoError(t, guard.Enforce(context.Background(), principal(1, RoleAdmin), "finance.delete"))
	require.Len(t, auditor.records, 1)
	assert.Equal(t, shared.DecisionBypass, auditor.records[0].Decision)
}

func TestRegistryPrivilegedSet(t *testing.T) {
	registry := NewRegistry(newMockRepo())

	assert.True(t, registry.IsPrivileged(1))
	assert.True(t, registry.IsPrivileged(11))
	for _, roleID := range []int64{0, 2, 5, 10, 12, -1} {
		assert.False(t, registry.IsPrivileged(roleID), "role %d", roleID)
	}
}

func TestRegistryDescribeUnknownRole(t *testing.T) {
	registry := NewRegistry(newMockRepo())

	_, err := registry.Describe(context.Background(), 99)
	require.ErrorIs(t, err, shared.ErrRoleNotFound)
}
