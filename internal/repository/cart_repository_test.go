package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(pool, zerolog.Nop())
	shirt := seedVariant(t, pool, "shirt", "250", 5)
	coat := seedVariant(t, pool, "coat", "900", 2)
	buyer := uuid.New()

	require.NoError(t, repo.Upsert(ctx, buyer, shirt.VariantID, 1))
	require.NoError(t, repo.Upsert(ctx, buyer, shirt.VariantID, 3))
	require.NoError(t, repo.Upsert(ctx, buyer, coat.VariantID, 1))

	items, err := repo.GetItems(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		require.NotNil(t, item.Detail)
		if item.VariantID == shirt.VariantID {
			assert.Equal(t, 3, item.Quantity)
			assert.Equal(t, "shirt", item.Detail.ProductName)
		}
	}

	removed, err := repo.Remove(ctx, buyer, coat.VariantID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Remove(ctx, buyer, coat.VariantID)
	require.NoError(t, err)
	assert.False(t, removed)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.RemoveVariants(ctx, tx, buyer, []uuid.UUID{shirt.VariantID, coat.VariantID}))
	require.NoError(t, repo.RemoveVariants(ctx, tx, uuid.New(), []uuid.UUID{shirt.VariantID}))
	require.NoError(t, tx.Commit(ctx))

	items, err = repo.GetItems(ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, items)
}
