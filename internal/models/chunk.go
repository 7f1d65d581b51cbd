package models

import (
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RuleChunk is one bounded-length slice of the rule corpus, the unit of
// embedding and retrieval. Chunks are produced once at index-build time and
// never mutated; a rebuild replaces the whole collection.
type RuleChunk struct {
	ID surrealmodels.RecordID `json:"id"`

	// Text is the chunk content fed to the judge as rule context.
	Text string `json:"text"`

	// Embedding is the dense vector over Text.
	Embedding []float32 `json:"embedding"`

	// Position is the chunk's order within the source document.
	Position int `json:"position"`

	// Source names the corpus document the chunk came from.
	Source string `json:"source"`
}

// RuleChunkInput is the insert shape for index construction.
type RuleChunkInput struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
	Position  int       `json:"position"`
	Source    string    `json:"source"`
}
