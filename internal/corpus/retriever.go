package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/productlens/labelcheck/internal/db"
	"github.com/productlens/labelcheck/internal/llm"
	"github.com/productlens/labelcheck/internal/models"
)

// Retrieval defaults: a wide approximate fetch pool narrowed to a diverse
// working set. Diversity trades a little similarity for topical coverage so
// the judge sees varied rule sections rather than near-duplicate passages.
const (
	defaultFetchK = 30
	defaultK      = 20
	defaultLambda = 0.6
)

// Retriever is the first retrieval stage: approximate KNN search followed by
// maximal-marginal-relevance selection.
type Retriever struct {
	db       *db.Client
	embedder *llm.Embedder

	fetchK int
	k      int
	lambda float64
}

// NewRetriever creates a retriever with the default MMR parameters.
func NewRetriever(dbClient *db.Client, embedder *llm.Embedder) *Retriever {
	return &Retriever{
		db:       dbClient,
		embedder: embedder,
		fetchK:   defaultFetchK,
		k:        defaultK,
		lambda:   defaultLambda,
	}
}

// Retrieve embeds the query, fetches the candidate pool, and narrows it with
// MMR. An empty result is not an error here: it is the terminal no-context
// signal the orchestrator short-circuits on.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]models.RuleChunk, error) {
	queryEmb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	start := time.Now()
	candidates, err := r.db.SearchRuleChunks(ctx, queryEmb, r.fetchK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	selected := maximalMarginalRelevance(queryEmb, candidates, r.lambda, r.k)
	slog.Debug("retrieved rule context",
		"candidates", len(candidates),
		"selected", len(selected),
		"duration_ms", time.Since(start).Milliseconds())
	return selected, nil
}
