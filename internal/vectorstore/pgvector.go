package vectorstore

import (
	"context"
	"fmt"
	"time"

	"ga-assistant-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// Index stores chunk embeddings in a pgvector table keyed by doc_id and
// answers approximate nearest-neighbor queries joined with chunk content.
type Index struct {
	pool       *pgxpool.Pool
	chunkTable string
}

func NewIndex(pool *pgxpool.Pool, chunkTable string) *Index {
	return &Index{pool: pool, chunkTable: chunkTable}
}

// Upsert writes one embedding per chunk, replacing any previous vector for
// the same doc_id.
func (ix *Index) Upsert(ctx context.Context, chunks []models.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, chunk := range chunks {
		batch.Queue(
			`INSERT INTO chunk_embeddings (doc_id, embedding) VALUES ($1, $2)
			 ON CONFLICT (doc_id) DO UPDATE SET embedding = EXCLUDED.embedding`,
			chunk.DocID, pgvector.NewVector(vectors[i]),
		)
	}

	results := ix.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert embedding: %w", err)
		}
	}
	return nil
}

// Search returns the k nearest chunks by cosine similarity, descending.
// Fewer than k rows come back when the corpus is smaller than k; an empty
// corpus yields an empty result.
func (ix *Index) Search(ctx context.Context, queryVector []float32, k int) ([]models.ScoredChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}

	query := fmt.Sprintf(
		`SELECT v.doc_id, v.source, v.file_name, v.date, v.page_content,
		        1 - (e.embedding <=> $1) AS score
		 FROM chunk_embeddings e
		 JOIN %s v ON v.doc_id = e.doc_id
		 ORDER BY e.embedding <=> $1
		 LIMIT $2`, ix.chunkTable)

	rows, err := ix.pool.Query(ctx, query, pgvector.NewVector(queryVector), k)
	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings: %w", err)
	}
	defer rows.Close()

	var results []models.ScoredChunk
	for rows.Next() {
		var (
			chunk models.DocumentChunk
			date  time.Time
			score float64
		)
		if err := rows.Scan(&chunk.DocID, &chunk.Source, &chunk.FileName, &date, &chunk.PageContent, &score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		chunk.IngestedAt = date
		results = append(results, models.ScoredChunk{Chunk: chunk, Similarity: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search results: %w", err)
	}

	return results, nil
}
