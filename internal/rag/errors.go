package rag

import "errors"

// Error taxonomy of the pipeline. Callers classify failures with errors.Is;
// none of these are retried inside this subsystem.
var (
	// ErrInvalidInput indicates an empty or whitespace-only question. It is
	// returned before any network call is made.
	ErrInvalidInput = errors.New("question must not be empty")

	// ErrMissingInput indicates a required input directory does not exist.
	ErrMissingInput = errors.New("input path does not exist")

	// ErrEmbedding indicates the embedding provider call failed.
	ErrEmbedding = errors.New("embedding request failed")

	// ErrCompletion indicates the completion provider call failed.
	ErrCompletion = errors.New("completion request failed")

	// ErrRetrieval indicates the vector store query failed.
	ErrRetrieval = errors.New("vector store query failed")
)
