package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora-hq/onboardai/internal/domain"
	"github.com/velora-hq/onboardai/internal/pagination"
)

type IntelRepository struct {
	db dbtx
}

func NewIntelRepository(pool *pgxpool.Pool) *IntelRepository {
	return &IntelRepository{db: pool}
}

func NewIntelRepositoryWithTx(tx pgx.Tx) *IntelRepository {
	return &IntelRepository{db: tx}
}

// Insert stores an intel item, skipping duplicates. An item is a
// duplicate when another row already carries the same competitor,
// type, and content digest. Returns whether a row was inserted.
func (r *IntelRepository) Insert(ctx context.Context, intel *domain.CompetitorIntel) (bool, error) {
	cmdTag, err := r.db.Exec(ctx,
		`INSERT INTO competitor_intel (id, competitor_name, intel_type, content, content_digest, source_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (competitor_name, intel_type, content_digest) DO NOTHING`,
		intel.ID, intel.CompetitorName, intel.IntelType, intel.Content, intel.ContentDigest(), nullableString(intel.SourceURL), intel.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return cmdTag.RowsAffected() > 0, nil
}

// ListRecent returns the newest intel items across all competitors.
func (r *IntelRepository) ListRecent(ctx context.Context, limit int) ([]*domain.CompetitorIntel, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, competitor_name, intel_type, content, source_url, created_at
		 FROM competitor_intel
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanIntelRows(rows)
}

// ListWithCursor returns a page of intel items ordered newest first.
func (r *IntelRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.CompetitorIntel], error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, competitor_name, intel_type, content, source_url, created_at
			 FROM competitor_intel
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, competitor_name, intel_type, content, source_url, created_at
			 FROM competitor_intel
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanIntelRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &pagination.PageResult[*domain.CompetitorIntel]{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: hasMore,
	}, nil
}

// Count returns the total number of intel items.
func (r *IntelRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM competitor_intel`).Scan(&count)
	return count, err
}

func scanIntelRows(rows pgx.Rows) ([]*domain.CompetitorIntel, error) {
	results := make([]*domain.CompetitorIntel, 0)
	for rows.Next() {
		var intel domain.CompetitorIntel
		var sourceURL *string
		if err := rows.Scan(&intel.ID, &intel.CompetitorName, &intel.IntelType, &intel.Content, &sourceURL, &intel.CreatedAt); err != nil {
			return nil, err
		}
		if sourceURL != nil {
			intel.SourceURL = *sourceURL
		}
		results = append(results, &intel)
	}
	return results, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
