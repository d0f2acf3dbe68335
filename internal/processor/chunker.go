package processor

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"caregiver-rag/internal/models"
)

// DefaultChunkSize is the number of words per chunk when none is configured.
const DefaultChunkSize = 500

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// SanitizeDocName turns a document file name into a stable identifier:
// extension stripped, runs of unsafe characters collapsed to a single dash.
func SanitizeDocName(fileName string) string {
	name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	name = unsafeNameChars.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}

// BuildChunks joins page texts with newlines, tokenizes into whitespace
// delimited words and partitions them into consecutive, non-overlapping
// groups of chunkSize words. The final chunk may be shorter. Chunk ids are
// deterministic ({doc}-chunk-{n}) so re-ingestion reproduces them exactly.
func BuildChunks(docName string, pages []string, chunkSize int) []models.Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	words := strings.Fields(strings.Join(pages, "\n"))
	if len(words) == 0 {
		return nil
	}

	doc := SanitizeDocName(docName)

	var chunks []models.Chunk
	for start := 0; start < len(words); start += chunkSize {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}

		index := len(chunks)
		chunks = append(chunks, models.Chunk{
			ID:             fmt.Sprintf("%s-chunk-%d", doc, index),
			Text:           strings.Join(words[start:end], " "),
			SourceDocument: doc,
			ChunkIndex:     index,
		})
	}

	return chunks
}
