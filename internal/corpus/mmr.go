package corpus

import (
	"math"

	"github.com/productlens/labelcheck/internal/models"
)

// cosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for mismatched or zero-length vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// maximalMarginalRelevance selects up to k chunks from candidates, balancing
// relevance to the query embedding against diversity among the selected set.
// lambda=1 is pure relevance, lambda=0 pure diversity. Candidates are assumed
// ordered by retrieval relevance; ties keep that order.
func maximalMarginalRelevance(queryEmb []float32, candidates []models.RuleChunk, lambda float64, k int) []models.RuleChunk {
	if k <= 0 || len(candidates) == 0 {
		return []models.RuleChunk{}
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	querySim := make([]float64, len(candidates))
	for i, c := range candidates {
		querySim[i] = cosineSimilarity(queryEmb, c.Embedding)
	}

	selected := make([]models.RuleChunk, 0, k)
	selectedIdx := make([]int, 0, k)
	remaining := make([]int, len(candidates))
	for i := range remaining {
		remaining[i] = i
	}

	for len(selected) < k && len(remaining) > 0 {
		bestPos := -1
		bestScore := math.Inf(-1)

		for pos, idx := range remaining {
			maxSim := 0.0
			for _, sel := range selectedIdx {
				if sim := cosineSimilarity(candidates[idx].Embedding, candidates[sel].Embedding); sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*querySim[idx] - (1-lambda)*maxSim
			if score > bestScore {
				bestScore = score
				bestPos = pos
			}
		}

		idx := remaining[bestPos]
		selected = append(selected, candidates[idx])
		selectedIdx = append(selectedIdx, idx)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	return selected
}
