//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-hq/onboardai/internal/domain"
	"github.com/velora-hq/onboardai/internal/pagination"
	"github.com/velora-hq/onboardai/internal/testutil"
)

func TestIntelRepository_Insert_Dedupe(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIntelRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	first := domain.NewCompetitorIntel(uuid.NewString(), "Intercom", domain.IntelTypePricing, "Intercom raised seat prices.", "https://example.com/a", now)
	inserted, err := repo.Insert(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same competitor, type, and content: skipped even with a new ID and URL.
	dup := domain.NewCompetitorIntel(uuid.NewString(), "Intercom", domain.IntelTypePricing, "Intercom raised seat prices.", "https://example.com/b", now)
	inserted, err = repo.Insert(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	// Same content under a different type is distinct intel.
	other := domain.NewCompetitorIntel(uuid.NewString(), "Intercom", domain.IntelTypeProduct, "Intercom raised seat prices.", "", now)
	inserted, err = repo.Insert(ctx, other)
	require.NoError(t, err)
	assert.True(t, inserted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIntelRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIntelRepository(pool)
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 3; i++ {
		intel := domain.NewCompetitorIntel(
			uuid.NewString(), "Zendesk", domain.IntelTypeProduct,
			fmt.Sprintf("Zendesk update %d", i), "",
			base.Add(time.Duration(i)*time.Minute),
		)
		_, err := repo.Insert(ctx, intel)
		require.NoError(t, err)
	}

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Zendesk update 2", recent[0].Content)
	assert.Equal(t, "Zendesk update 1", recent[1].Content)
}

func TestIntelRepository_ListWithCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIntelRepository(pool)
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 5; i++ {
		intel := domain.NewCompetitorIntel(
			uuid.NewString(), "Gorgias", domain.IntelTypeMarket,
			fmt.Sprintf("Gorgias news %d", i), "",
			base.Add(time.Duration(i)*time.Minute),
		)
		_, err := repo.Insert(ctx, intel)
		require.NoError(t, err)
	}

	page1, err := repo.ListWithCursor(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.Cursor)
	assert.Equal(t, "Gorgias news 4", page1.Items[0].Content)

	cursor, err := pagination.DecodeCursor(page1.Cursor)
	require.NoError(t, err)

	page2, err := repo.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, "Gorgias news 2", page2.Items[0].Content)
	assert.True(t, page2.HasMore)

	cursor, err = pagination.DecodeCursor(page2.Cursor)
	require.NoError(t, err)

	page3, err := repo.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.Cursor)
}
