package db

import "fmt"

// SchemaSQL returns the schema initialization SQL. The rule_chunk HNSW index
// dimension must match the configured embedding model's output dimension.
func SchemaSQL(embedDim int) string {
	return fmt.Sprintf(`
    -- ==========================================================================
    -- PRODUCT TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS product SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS product_title ON product TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS image_urls ON product TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS status ON product TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON product TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON product TYPE datetime DEFAULT time::now();
    -- Label fields and verdict are nested objects with nullable members.
    DEFINE FIELD IF NOT EXISTS ocr_data ON product FLEXIBLE TYPE option<object>;
    DEFINE FIELD IF NOT EXISTS compliance ON product FLEXIBLE TYPE option<object>;

    DEFINE INDEX IF NOT EXISTS product_status ON product FIELDS status;

    -- ==========================================================================
    -- RULE_CHUNK TABLE (persisted rule-corpus index)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS rule_chunk SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS text ON rule_chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON rule_chunk TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS position ON rule_chunk TYPE int;
    DEFINE FIELD IF NOT EXISTS source ON rule_chunk TYPE string;

    DEFINE INDEX IF NOT EXISTS rule_chunk_position ON rule_chunk FIELDS position;
    DEFINE INDEX IF NOT EXISTS rule_chunk_embedding ON rule_chunk FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
`, embedDim)
}
