package services

import (
	"context"
	"fmt"
	"sort"

	"ga-assistant-backend/models"
)

// Scorer computes a cross-encoder relevance score for a (query, document)
// pair; higher is more relevant.
type Scorer interface {
	Score(ctx context.Context, query, document string) (float64, error)
}

// Refiner narrows retrieval candidates in two fixed stages: cross-encoder
// re-ranking keeps the topN best pairs, then an absolute similarity
// threshold prunes the survivors. The threshold stage may legitimately
// empty the result; that is an expected outcome, not an error.
type Refiner struct {
	scorer    Scorer
	topN      int
	threshold float64
}

func NewRefiner(scorer Scorer, topN int, threshold float64) (*Refiner, error) {
	if topN < 1 {
		return nil, fmt.Errorf("%w: rerank top_n must be at least 1, got %d", models.ErrConfig, topN)
	}
	return &Refiner{scorer: scorer, topN: topN, threshold: threshold}, nil
}

// Refine returns the surviving chunks ordered by descending re-rank score.
// Candidates with equal re-rank scores keep their original relative order.
func (r *Refiner) Refine(ctx context.Context, query string, candidates []models.ScoredChunk) ([]models.ScoredChunk, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	scored := make([]models.ScoredChunk, len(candidates))
	copy(scored, candidates)
	for i := range scored {
		score, err := r.scorer.Score(ctx, query, scored[i].Chunk.PageContent)
		if err != nil {
			return nil, fmt.Errorf("failed to re-rank chunk %d: %w", scored[i].Chunk.DocID, err)
		}
		scored[i].Rerank = score
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Rerank > scored[j].Rerank
	})

	if len(scored) > r.topN {
		scored = scored[:r.topN]
	}

	// Threshold filter reuses the similarity captured at retrieval time.
	refined := scored[:0]
	for _, sc := range scored {
		if sc.Similarity >= r.threshold {
			refined = append(refined, sc)
		}
	}

	return refined, nil
}
