package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/velora-hq/onboardai/internal/domain"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type KnowledgeRepository struct {
	db dbtx
}

func NewKnowledgeRepository(pool *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: pool}
}

func NewKnowledgeRepositoryWithTx(tx pgx.Tx) *KnowledgeRepository {
	return &KnowledgeRepository{db: tx}
}

func (r *KnowledgeRepository) Create(ctx context.Context, k *domain.KnowledgeItem) error {
	metadata, err := json.Marshal(k.Metadata)
	if err != nil {
		return err
	}

	var embedding any
	if k.Embedding != nil {
		embedding = pgvector.NewVector(k.Embedding)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO knowledge_items (id, source, content, embedding, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		k.ID, k.Source, k.Content, embedding, metadata, k.CreatedAt,
	)
	return err
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, source, content, metadata, created_at
		 FROM knowledge_items WHERE id = $1`,
		id,
	)
	item, err := scanKnowledgeItem(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrKnowledgeItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// SearchByEmbedding returns the k items nearest to the query vector by
// cosine distance. Items without an embedding are excluded.
func (r *KnowledgeRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*domain.KnowledgeItem, error) {
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx,
		`SELECT id, source, content, metadata, created_at
		 FROM knowledge_items
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanKnowledgeRows(rows)
}

// ListRecent returns the newest items regardless of embedding status.
func (r *KnowledgeRepository) ListRecent(ctx context.Context, limit int) ([]*domain.KnowledgeItem, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, source, content, metadata, created_at
		 FROM knowledge_items
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanKnowledgeRows(rows)
}

// CountBySource returns item counts grouped by source.
func (r *KnowledgeRepository) CountBySource(ctx context.Context) (map[domain.KnowledgeSource]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT source, COUNT(*) FROM knowledge_items GROUP BY source`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.KnowledgeSource]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		counts[domain.KnowledgeSource(source)] = count
	}
	return counts, rows.Err()
}

// Count returns the total number of knowledge items.
func (r *KnowledgeRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_items`).Scan(&count)
	return count, err
}

// DeleteBySource removes all items for a source. Used when a sync
// replaces a source's documents wholesale.
func (r *KnowledgeRepository) DeleteBySource(ctx context.Context, source domain.KnowledgeSource) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM knowledge_items WHERE source = $1`,
		source,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKnowledgeItem(row rowScanner) (*domain.KnowledgeItem, error) {
	var k domain.KnowledgeItem
	var metadata []byte
	if err := row.Scan(&k.ID, &k.Source, &k.Content, &metadata, &k.CreatedAt); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &k.Metadata); err != nil {
			return nil, err
		}
	}
	if k.Metadata == nil {
		k.Metadata = map[string]string{}
	}
	return &k, nil
}

func scanKnowledgeRows(rows pgx.Rows) ([]*domain.KnowledgeItem, error) {
	results := make([]*domain.KnowledgeItem, 0)
	for rows.Next() {
		item, err := scanKnowledgeItem(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}
