package processor

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"caregiver-rag/internal/models"
	"caregiver-rag/internal/rag"
)

// Extractor converts a source document into ordered page texts.
type Extractor interface {
	ExtractPages(filePath string) ([]string, error)
}

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	DocsProcessed int
	DocsFailed    int
	ChunksWritten int
}

// Ingestor converts every PDF in an input directory into chunk artifacts on
// disk. Each chunk is written as {id}.txt plus an {id}.json sidecar carrying
// its metadata.
type Ingestor struct {
	Extractor Extractor
	ChunkSize int

	// MaxConcurrent bounds parallel chunk writes within one document.
	MaxConcurrent int
}

// NewIngestor creates an ingestor with the PDF extractor.
func NewIngestor(chunkSize int) *Ingestor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Ingestor{
		Extractor:     NewPDFExtractor(),
		ChunkSize:     chunkSize,
		MaxConcurrent: 4,
	}
}

// IngestDirectory processes every recognized document under inputDir and
// writes chunk artifacts to outDir. A failure on one document is logged and
// skipped; a missing input directory is fatal.
func (ing *Ingestor) IngestDirectory(inputDir, outDir string) (*IngestResult, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: document directory %s", rag.ErrMissingInput, inputDir)
		}
		return nil, fmt.Errorf("failed to read document directory %s: %w", inputDir, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chunk directory %s: %w", outDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Only PDFs are recognized; everything else is skipped silently.
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	result := &IngestResult{}
	for _, name := range names {
		written, err := ing.ingestDocument(filepath.Join(inputDir, name), outDir)
		if err != nil {
			log.Printf("Skipping document %s: %v", name, err)
			result.DocsFailed++
			continue
		}
		result.DocsProcessed++
		result.ChunksWritten += written
	}

	return result, nil
}

// ingestDocument extracts, chunks and writes one document. Chunk writes are
// independent files, so they run concurrently.
func (ing *Ingestor) ingestDocument(path, outDir string) (int, error) {
	pages, err := ing.Extractor.ExtractPages(path)
	if err != nil {
		return 0, err
	}

	chunks := BuildChunks(filepath.Base(path), pages, ing.ChunkSize)
	if len(chunks) == 0 {
		return 0, nil
	}

	maxConcurrent := ing.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrent)
	errChan := make(chan error, len(chunks))

	for _, chunk := range chunks {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(chunk models.Chunk) {
			defer func() {
				wg.Done()
				<-semaphore
			}()

			if err := writeChunkArtifact(outDir, chunk); err != nil {
				errChan <- fmt.Errorf("failed to write chunk %s: %w", chunk.ID, err)
			}
		}(chunk)
	}

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return 0, err
	}

	return len(chunks), nil
}

// writeChunkArtifact writes the chunk text and its metadata sidecar.
func writeChunkArtifact(outDir string, chunk models.Chunk) error {
	textPath := filepath.Join(outDir, chunk.ID+".txt")
	if err := os.WriteFile(textPath, []byte(chunk.Text), 0o644); err != nil {
		return err
	}

	meta := models.ChunkMeta{
		ID:         chunk.ID,
		Source:     chunk.SourceDocument,
		ChunkIndex: chunk.ChunkIndex,
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(outDir, chunk.ID+".json"), payload, 0o644)
}
