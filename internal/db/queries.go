package db

import (
	"context"
	"fmt"

	"github.com/productlens/labelcheck/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// StoredProduct is a persisted product record with its database identity.
type StoredProduct struct {
	ID surrealmodels.RecordID `json:"id"`
	models.ProductRecord
}

// InsertProduct creates a new product document and returns its record id.
// This is the pipeline's single terminal write; there is no update path.
func (c *Client) InsertProduct(ctx context.Context, record *models.ProductRecord) (string, error) {
	results, err := surrealdb.Query[[]StoredProduct](ctx, c.db, `
		CREATE product CONTENT $record
	`, map[string]any{"record": record})
	if err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return "", fmt.Errorf("insert product: no record returned")
	}

	id, err := models.RecordIDString((*results)[0].Result[0].ID)
	if err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

// GetProduct retrieves a product record by id.
// Returns ErrNotFound if it does not exist.
func (c *Client) GetProduct(ctx context.Context, id string) (*StoredProduct, error) {
	results, err := surrealdb.Query[[]StoredProduct](ctx, c.db, `
		SELECT * FROM type::record("product", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get product %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// InsertRuleChunks bulk-inserts rule chunks during index construction.
func (c *Client) InsertRuleChunks(ctx context.Context, chunks []models.RuleChunkInput) error {
	if len(chunks) == 0 {
		return nil
	}
	_, err := surrealdb.Query[any](ctx, c.db, `
		FOR $chunk IN $chunks {
			CREATE rule_chunk CONTENT $chunk;
		}
	`, map[string]any{"chunks": chunks})
	if err != nil {
		return fmt.Errorf("insert rule chunks: %w", err)
	}
	return nil
}

// CountRuleChunks returns the number of persisted rule chunks.
type chunkCount struct {
	Count int `json:"count"`
}

func (c *Client) CountRuleChunks(ctx context.Context) (int, error) {
	results, err := surrealdb.Query[[]chunkCount](ctx, c.db, `
		SELECT count() AS count FROM rule_chunk GROUP ALL
	`, nil)
	if err != nil {
		return 0, fmt.Errorf("count rule chunks: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}

// DeleteRuleChunks removes the whole rule chunk collection. Used only when a
// rebuild replaces the index wholesale.
func (c *Client) DeleteRuleChunks(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, c.db, `DELETE rule_chunk`, nil); err != nil {
		return fmt.Errorf("delete rule chunks: %w", err)
	}
	return nil
}

// SearchRuleChunks runs approximate KNN search over the rule chunk embeddings
// and returns the fetchK nearest chunks, closest first, with their embeddings
// so the caller can apply diversity re-selection.
func (c *Client) SearchRuleChunks(ctx context.Context, embedding []float32, fetchK int) ([]models.RuleChunk, error) {
	// HNSW ef=40 for better recall, matching the index definition.
	sql := fmt.Sprintf(`
		SELECT id, text, embedding, position, source,
		       vector::distance::knn() AS distance
		FROM rule_chunk
		WHERE embedding <|%d,40|> $emb
		ORDER BY distance ASC
	`, fetchK)

	results, err := surrealdb.Query[[]models.RuleChunk](ctx, c.db, sql, map[string]any{
		"emb": embedding,
	})
	if err != nil {
		return nil, fmt.Errorf("search rule chunks: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.RuleChunk{}, nil
	}
	return (*results)[0].Result, nil
}
