package models

// Chunk is a fixed-size slice of a document's word stream, the unit of
// embedding and retrieval.
type Chunk struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	SourceDocument string `json:"source_document"`
	ChunkIndex     int    `json:"chunk_index"`
}

// ChunkMeta is the sidecar metadata record written next to each chunk
// artifact, so the indexer does not have to parse metadata out of file names.
type ChunkMeta struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
}

// Record is the persisted unit in the vector store.
type Record struct {
	ID         string    `json:"id"`
	Document   string    `json:"document"`
	Source     string    `json:"source"`
	ChunkIndex int       `json:"chunk_index"`
	Embedding  []float32 `json:"embedding"`
}

// Context is a per-query retrieval result. Score is a distance, lower
// meaning more similar.
type Context struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Answer is the final output of a query. Sources is empty exactly when the
// fallback path produced the answer.
type Answer struct {
	Text      string    `json:"answer"`
	Sources   []Context `json:"sources"`
	Fallback  bool      `json:"fallback"`
	Timestamp string    `json:"timestamp"`
}
