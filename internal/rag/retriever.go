package rag

import (
	"context"
	"fmt"
	"strings"

	"caregiver-rag/internal/models"
)

// DefaultTopK is the number of nearest contexts requested when the caller
// does not override it.
const DefaultTopK = 4

// Retriever maps a natural-language question to a ranked list of relevant
// chunks from the vector store.
type Retriever struct {
	store      Store
	embedder   Embedder
	collection string
	topK       int
}

// NewRetriever creates a retriever. topK <= 0 selects DefaultTopK.
func NewRetriever(store Store, embedder Embedder, collection string, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		store:      store,
		embedder:   embedder,
		collection: collection,
		topK:       topK,
	}
}

// Retrieve returns the contexts nearest to the question, in ascending
// distance order as the store returned them. Contexts with empty text are
// dropped. topK <= 0 selects the retriever's configured value.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) ([]models.Context, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	if topK <= 0 {
		topK = r.topK
	}

	embedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	results, err := r.store.Query(ctx, r.collection, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	contexts := make([]models.Context, 0, len(results))
	for _, result := range results {
		if result.Text == "" {
			continue
		}
		contexts = append(contexts, result)
	}

	return contexts, nil
}
