package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-hms/harborview/internal/directory"
	"github.com/harborview-hms/harborview/internal/shared"
	_ "github.com/harborview-hms/harborview/testing"
)

type stubRepo struct {
	entries map[int64]*directory.Principal
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*directory.Principal, error) {
	p, ok := s.entries[id]
	if !ok {
		return nil, shared.ErrPrincipalNotFound
	}
	return p, nil
}

func (s *stubRepo) ListPrincipals(ctx context.Context) ([]directory.Principal, error) {
	var out []directory.Principal
	for _, p := range s.entries {
		out = append(out, *p)
	}
	return out, nil
}

func TestResolveKnownPrincipal(t *testing.T) {
	svc := directory.NewService(&stubRepo{entries: map[int64]*directory.Principal{
		7: {ID: 7, Username: "mala", RoleID: 5, IsActive: true},
	}})

	p, err := svc.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "mala", p.Username)
	assert.Equal(t, int64(5), p.RoleID)
}

func TestResolveMissingDirectoryRow(t *testing.T) {
	svc := directory.NewService(&stubRepo{entries: map[int64]*directory.Principal{}})

	_, err := svc.Resolve(context.Background(), 99)
	require.ErrorIs(t, err, shared.ErrPrincipalNotFound)
}

func TestResolveDeactivatedPrincipal(t *testing.T) {
	svc := directory.NewService(&stubRepo{entries: map[int64]*directory.Principal{
		7: {ID: 7, Username: "mala", RoleID: 5, IsActive: false},
	}})

	_, err := svc.Resolve(context.Background(), 7)
	require.ErrorIs(t, err, shared.ErrPrincipalNotFound)
}
