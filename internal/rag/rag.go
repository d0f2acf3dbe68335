// Package rag implements the retrieval pipeline: indexing chunk artifacts
// into the vector store, retrieving nearest chunks for a question, and
// composing a grounded or fallback answer.
//
// The provider and store dependencies are interfaces defined here, on the
// consumer side, so tests can substitute in-memory fakes.
package rag

import (
	"context"

	"caregiver-rag/internal/models"
)

// Embedder computes a fixed-dimensionality vector for a text span. The same
// embedder (model and dimensionality) must be used for indexing and querying;
// mixing models silently produces meaningless similarity scores.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer generates a completion for a system prompt, user prompt and
// sampling temperature.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// Store is the narrow vector store contract the pipeline depends on.
// Inserts are append-only; existing records are never mutated.
type Store interface {
	// ListIDs returns the ids of every record in the collection.
	ListIDs(ctx context.Context, collection string) (map[string]struct{}, error)

	// Insert adds one record to the collection.
	Insert(ctx context.Context, collection string, record models.Record) error

	// Query returns the topK records nearest to the embedding, ordered by
	// ascending distance.
	Query(ctx context.Context, collection string, embedding []float32, topK int) ([]models.Context, error)
}
