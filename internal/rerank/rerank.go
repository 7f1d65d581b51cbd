// Package rerank scores retrieval candidates pairwise against a query and
// keeps the best few. The first-stage search is cheap and diversity-oriented
// but imprecise; pairwise scoring is precise but costly, so it only runs
// over the small candidate pool.
package rerank

import (
	"context"
	"log/slog"
	"sort"

	"github.com/productlens/labelcheck/internal/models"
)

// DefaultTopK is the context size handed to the judge.
const DefaultTopK = 6

// Scorer rates the relevance of a single passage to a query.
type Scorer interface {
	Score(ctx context.Context, query, passage string) (float64, error)
}

// scored pairs a candidate with its pairwise score and original rank.
type scored struct {
	chunk models.RuleChunk
	score float64
	rank  int
}

// Rerank scores every candidate against the query and returns the topK by
// descending score. Ties keep the original retrieval order. A scoring
// failure for one candidate degrades that candidate to score 0 rather than
// failing the run.
func Rerank(ctx context.Context, scorer Scorer, query string, candidates []models.RuleChunk, topK int) ([]models.RuleChunk, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(candidates) == 0 {
		return []models.RuleChunk{}, nil
	}

	results := make([]scored, 0, len(candidates))
	for i, c := range candidates {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		score, err := scorer.Score(ctx, query, c.Text)
		if err != nil {
			slog.Warn("rerank scoring failed, using zero score", "position", c.Position, "error", err)
			score = 0
		}
		results = append(results, scored{chunk: c, score: score, rank: i})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if topK > len(results) {
		topK = len(results)
	}
	out := make([]models.RuleChunk, topK)
	for i := 0; i < topK; i++ {
		out[i] = results[i].chunk
	}
	return out, nil
}
