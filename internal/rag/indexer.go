package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"caregiver-rag/internal/models"
)

// chunkSeparator marks the chunk index inside an artifact name. It is only
// consulted when an artifact has no metadata sidecar.
const chunkSeparator = "-chunk-"

// IndexResult summarizes one indexing run.
type IndexResult struct {
	Indexed int
	Skipped int
	Failed  int
}

// Indexer ensures every chunk artifact on disk has a vector record. Already
// indexed chunks are skipped, making repeated runs over an unchanged chunk
// set a no-op.
type Indexer struct {
	store      Store
	embedder   Embedder
	collection string
}

// NewIndexer creates an indexer for the given collection.
func NewIndexer(store Store, embedder Embedder, collection string) *Indexer {
	return &Indexer{
		store:      store,
		embedder:   embedder,
		collection: collection,
	}
}

// Run indexes every chunk artifact in chunkDir that is not already in the
// store. A missing directory is fatal; an empty one is a recoverable
// operator condition (run ingestion first) and indexes nothing. Failures on
// individual chunks are logged and skipped so the batch proceeds.
func (idx *Indexer) Run(ctx context.Context, chunkDir string) (*IndexResult, error) {
	entries, err := os.ReadDir(chunkDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: chunk directory %s", ErrMissingInput, chunkDir)
		}
		return nil, fmt.Errorf("failed to read chunk directory %s: %w", chunkDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	result := &IndexResult{}
	if len(names) == 0 {
		log.Printf("No chunk artifacts in %s; run ingestion first", chunkDir)
		return result, nil
	}

	indexed, err := idx.store.ListIDs(ctx, idx.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed ids: %w", err)
	}

	for _, name := range names {
		id := strings.TrimSuffix(name, ".txt")
		if _, ok := indexed[id]; ok {
			result.Skipped++
			continue
		}

		if err := idx.indexChunk(ctx, chunkDir, id); err != nil {
			log.Printf("Skipping chunk %s: %v", id, err)
			result.Failed++
			continue
		}
		result.Indexed++
	}

	return result, nil
}

func (idx *Indexer) indexChunk(ctx context.Context, chunkDir, id string) error {
	text, err := os.ReadFile(filepath.Join(chunkDir, id+".txt"))
	if err != nil {
		return fmt.Errorf("failed to read chunk artifact: %w", err)
	}

	meta := loadChunkMeta(chunkDir, id)

	embedding, err := idx.embedder.Embed(ctx, string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	record := models.Record{
		ID:         id,
		Document:   string(text),
		Source:     meta.Source,
		ChunkIndex: meta.ChunkIndex,
		Embedding:  embedding,
	}
	if err := idx.store.Insert(ctx, idx.collection, record); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

// loadChunkMeta reads the sidecar metadata for a chunk artifact, falling
// back to parsing the artifact name for chunks written before sidecars
// existed.
func loadChunkMeta(chunkDir, id string) models.ChunkMeta {
	payload, err := os.ReadFile(filepath.Join(chunkDir, id+".json"))
	if err == nil {
		var meta models.ChunkMeta
		if err := json.Unmarshal(payload, &meta); err == nil && meta.Source != "" {
			meta.ID = id
			return meta
		}
	}
	return parseChunkName(id)
}

// parseChunkName derives {source, chunkIndex} from an artifact name of the
// form {doc}-chunk-{n}. A missing or non-numeric suffix defaults the chunk
// index to 0.
func parseChunkName(id string) models.ChunkMeta {
	meta := models.ChunkMeta{ID: id, Source: id}

	sep := strings.LastIndex(id, chunkSeparator)
	if sep < 0 {
		return meta
	}

	meta.Source = id[:sep]
	if n, err := strconv.Atoi(id[sep+len(chunkSeparator):]); err == nil {
		meta.ChunkIndex = n
	}
	return meta
}
