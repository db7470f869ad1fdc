package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/horizon-ai/sowlens/internal/domain"
)

// ChunkRepository handles persistence and vector search of document chunks.
type ChunkRepository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool, pool: pool}
}

// NewChunkRepositoryWithTx scopes the repository to an open transaction.
func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// HasChunk reports whether a chunk with the given ID is already stored.
// Checking the first chunk ID of a document is how ingestion stays
// idempotent.
func (r *ChunkRepository) HasChunk(ctx context.Context, chunkID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sow_chunks WHERE chunk_id = $1)`,
		chunkID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertChunks writes chunks in batches inside one transaction,
// replacing content and embedding on chunk ID conflict. A failed write
// rolls back fully, so the first-chunk idempotency check never sees a
// half-indexed document.
func (r *ChunkRepository) UpsertChunks(ctx context.Context, chunks []domain.DocumentChunk) error {
	if r.pool == nil {
		return r.upsertChunks(ctx, chunks)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := NewChunkRepositoryWithTx(tx).upsertChunks(ctx, chunks); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *ChunkRepository) upsertChunks(ctx context.Context, chunks []domain.DocumentChunk) error {
	now := time.Now().UTC()
	for start := 0; start < len(chunks); start += insertBatchLimit {
		end := start + insertBatchLimit
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := &pgx.Batch{}
		for _, c := range chunks[start:end] {
			batch.Queue(
				`INSERT INTO sow_chunks (chunk_id, doc_id, ordinal, content, embedding, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (chunk_id) DO UPDATE
				 SET content = EXCLUDED.content, embedding = EXCLUDED.embedding`,
				c.ChunkID, c.DocID, c.Ordinal, c.Content, pgvector.NewVector(c.Embedding), now,
			)
		}

		br := r.db.SendBatch(ctx, batch)
		var execErr error
		for range chunks[start:end] {
			if _, err := br.Exec(); err != nil && execErr == nil {
				execErr = err
			}
		}
		if err := br.Close(); err != nil && execErr == nil {
			execErr = err
		}
		if execErr != nil {
			return execErr
		}
	}
	return nil
}

// SearchChunks returns the k chunks of a document nearest to the query
// embedding, most similar first. Similarity is 1 - cosine distance.
func (r *ChunkRepository) SearchChunks(ctx context.Context, embedding []float32, docID string, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = 5
	}

	rows, err := r.db.Query(ctx,
		`SELECT chunk_id, doc_id, ordinal, content, 1 - (embedding <=> $1) AS similarity
		 FROM sow_chunks
		 WHERE doc_id = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(embedding), docID, k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.RetrievedChunk
	for rows.Next() {
		var rc domain.RetrievedChunk
		if err := rows.Scan(&rc.ChunkID, &rc.DocID, &rc.Ordinal, &rc.Content, &rc.Similarity); err != nil {
			return nil, err
		}
		results = append(results, rc)
	}
	return results, rows.Err()
}

// DeleteDocument removes all chunks of a document.
func (r *ChunkRepository) DeleteDocument(ctx context.Context, docID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sow_chunks WHERE doc_id = $1`, docID)
	return err
}
