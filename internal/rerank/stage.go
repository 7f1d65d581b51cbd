package rerank

import (
	"context"

	"github.com/productlens/labelcheck/internal/models"
)

// Stage bundles a scorer and topK into the pipeline's reranking step.
type Stage struct {
	scorer Scorer
	topK   int
}

// NewStage creates a reranking stage. topK <= 0 uses DefaultTopK.
func NewStage(scorer Scorer, topK int) *Stage {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Stage{scorer: scorer, topK: topK}
}

// Rerank narrows candidates to the topK most relevant chunks.
func (s *Stage) Rerank(ctx context.Context, query string, candidates []models.RuleChunk) ([]models.RuleChunk, error) {
	return Rerank(ctx, s.scorer, query, candidates, s.topK)
}
