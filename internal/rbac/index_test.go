package rbac

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexExactMatch(t *testing.T) {
	repo := newMockRepo()
	repo.grants[5] = []string{"booking.read", "booking.edit"}
	index := NewIndex(repo)

	for perm, want := range map[string]bool{
		"booking.read":  true,
		"booking.edit":  true,
		"booking.Read":  false,
		"booking.rea":   false,
		"booking.read ": false,
		"":              false,
	} {
		got, err := index.HasPermission(context.Background(), 5, perm)
		require.NoError(t, err)
		assert.Equal(t, want, got, "perm %q", perm)
	}
}

func TestIndexAgreesWithRepositoryUnderConcurrency(t *testing.T) {
	repo := newMockRepo()
	repo.grants[5] = []string{"booking.read"}
	index := NewIndex(repo)

	var wg sync.WaitGroup
	results := make([]bool, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := index.HasPermission(context.Background(), 5, "booking.read")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = got
		}(i)
	}
	wg.Wait()

	direct, err := repo.HasGrant(context.Background(), 5, "booking.read")
	require.NoError(t, err)
	for _, got := range results {
		assert.Equal(t, direct, got)
	}
}
