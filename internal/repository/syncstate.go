package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora-hq/onboardai/internal/domain"
)

type SyncStateRepository struct {
	db dbtx
}

func NewSyncStateRepository(pool *pgxpool.Pool) *SyncStateRepository {
	return &SyncStateRepository{db: pool}
}

func NewSyncStateRepositoryWithTx(tx pgx.Tx) *SyncStateRepository {
	return &SyncStateRepository{db: tx}
}

func (r *SyncStateRepository) Get(ctx context.Context, sourceKey string) (*domain.SyncState, error) {
	var s domain.SyncState
	err := r.db.QueryRow(ctx,
		`SELECT source_key, last_sync_at, next_sync_at, updated_at
		 FROM sync_state WHERE source_key = $1`,
		sourceKey,
	).Scan(&s.SourceKey, &s.LastSyncAt, &s.NextSyncAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSyncStateNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Upsert records a completed sync for a source and schedules the next one.
func (r *SyncStateRepository) Upsert(ctx context.Context, s *domain.SyncState) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sync_state (source_key, last_sync_at, next_sync_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (source_key) DO UPDATE SET
			last_sync_at = EXCLUDED.last_sync_at,
			next_sync_at = EXCLUDED.next_sync_at,
			updated_at = EXCLUDED.updated_at`,
		s.SourceKey, s.LastSyncAt, s.NextSyncAt, s.UpdatedAt,
	)
	return err
}
