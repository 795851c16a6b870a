package services

import (
	"context"
	"fmt"

	"ga-assistant-backend/models"
)

// VectorSearcher answers top-k similarity queries over the chunk embeddings.
type VectorSearcher interface {
	Search(ctx context.Context, queryVector []float32, k int) ([]models.ScoredChunk, error)
}

// Retriever embeds the query text and pulls the k most similar chunks from
// the vector index. Result order is the index's descending similarity order.
type Retriever struct {
	index    VectorSearcher
	embedder Embedder
	k        int
}

func NewRetriever(index VectorSearcher, embedder Embedder, k int) (*Retriever, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: retriever k must be at least 1, got %d", models.ErrConfig, k)
	}
	return &Retriever{index: index, embedder: embedder, k: k}, nil
}

// Retrieve returns up to k candidates. An empty corpus yields an empty
// result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]models.ScoredChunk, error) {
	vec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return r.index.Search(ctx, vec, r.k)
}
