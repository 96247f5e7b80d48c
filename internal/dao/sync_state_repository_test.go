package dao

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncStateRepository_GetSet(t *testing.T) {
	repo := NewSyncStateRepository(openTestStore(t))
	ctx := context.Background()

	_, ok, err := repo.Get(ctx, "last_sync")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "last_sync", "100"))
	v, ok, err := repo.Get(ctx, "last_sync")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "100", v)

	require.NoError(t, repo.Set(ctx, "last_sync", "250"))
	v, _, err = repo.Get(ctx, "last_sync")
	require.NoError(t, err)
	assert.Equal(t, "250", v)
}
