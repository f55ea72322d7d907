//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-hq/onboardai/internal/domain"
	"github.com/velora-hq/onboardai/internal/testutil"
)

func unitVector(dim, hot int) []float32 {
	v := make([]float32, dim)
	v[hot] = 1
	return v
}

func TestKnowledgeRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)

	k := domain.NewKnowledgeItem(
		uuid.NewString(),
		domain.KnowledgeSourceNotion,
		"Our PTO policy allows 25 days per year.",
		unitVector(1536, 0),
		map[string]string{"title": "PTO Policy"},
		time.Now().UTC().Truncate(time.Microsecond),
	)

	require.NoError(t, repo.Create(ctx, k))

	retrieved, err := repo.GetByID(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, k.ID, retrieved.ID)
	assert.Equal(t, domain.KnowledgeSourceNotion, retrieved.Source)
	assert.Equal(t, k.Content, retrieved.Content)
	assert.Equal(t, "PTO Policy", retrieved.Metadata["title"])
}

func TestKnowledgeRepository_Create_NilEmbedding(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)

	k := domain.NewKnowledgeItem(
		uuid.NewString(),
		domain.KnowledgeSourceSlack,
		"Standup moved to 9:30.",
		nil,
		map[string]string{"channel": "#general"},
		time.Now().UTC().Truncate(time.Microsecond),
	)
	require.NoError(t, repo.Create(ctx, k))

	// Unembedded items are excluded from vector search but still listed.
	results, err := repo.SearchByEmbedding(ctx, unitVector(1536, 0), 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	recent, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, k.ID, recent[0].ID)
}

func TestKnowledgeRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrKnowledgeItemNotFound)
}

func TestKnowledgeRepository_SearchByEmbedding_Ordering(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	near := domain.NewKnowledgeItem(uuid.NewString(), domain.KnowledgeSourceNotion, "near doc", unitVector(1536, 0), nil, now)
	far := domain.NewKnowledgeItem(uuid.NewString(), domain.KnowledgeSourceGitHub, "far doc", unitVector(1536, 1), nil, now)
	require.NoError(t, repo.Create(ctx, near))
	require.NoError(t, repo.Create(ctx, far))

	results, err := repo.SearchByEmbedding(ctx, unitVector(1536, 0), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, near.ID, results[0].ID)
	assert.Equal(t, far.ID, results[1].ID)

	limited, err := repo.SearchByEmbedding(ctx, unitVector(1536, 0), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, near.ID, limited[0].ID)
}

func TestKnowledgeRepository_CountBySource(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Create(ctx, domain.NewKnowledgeItem(uuid.NewString(), domain.KnowledgeSourceNotion, "doc", nil, nil, now)))
	}
	require.NoError(t, repo.Create(ctx, domain.NewKnowledgeItem(uuid.NewString(), domain.KnowledgeSourceSlack, "msg", nil, nil, now)))

	counts, err := repo.CountBySource(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.KnowledgeSourceNotion])
	assert.Equal(t, 1, counts[domain.KnowledgeSourceSlack])
	assert.Equal(t, 0, counts[domain.KnowledgeSourceGitHub])

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestKnowledgeRepository_DeleteBySource(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, repo.Create(ctx, domain.NewKnowledgeItem(uuid.NewString(), domain.KnowledgeSourceGitHub, "readme", nil, nil, now)))
	require.NoError(t, repo.Create(ctx, domain.NewKnowledgeItem(uuid.NewString(), domain.KnowledgeSourceSlack, "msg", nil, nil, now)))

	deleted, err := repo.DeleteBySource(ctx, domain.KnowledgeSourceGitHub)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
