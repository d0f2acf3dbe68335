package processor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return words
}

func TestBuildChunks_PartitionsWordStream(t *testing.T) {
	// A 1200-word single-page document at chunk size 500 yields exactly
	// three chunks of 500, 500 and 200 words.
	words := makeWords(1200)
	chunks := BuildChunks("guide.pdf", []string{strings.Join(words, " ")}, 500)

	require.Len(t, chunks, 3)
	assert.Len(t, strings.Fields(chunks[0].Text), 500)
	assert.Len(t, strings.Fields(chunks[1].Text), 500)
	assert.Len(t, strings.Fields(chunks[2].Text), 200)

	assert.Equal(t, "guide-chunk-0", chunks[0].ID)
	assert.Equal(t, "guide-chunk-1", chunks[1].ID)
	assert.Equal(t, "guide-chunk-2", chunks[2].ID)

	// Non-overlap and coverage: concatenating the chunks reproduces the
	// original word sequence exactly.
	var recombined []string
	for _, chunk := range chunks {
		assert.Equal(t, "guide", chunk.SourceDocument)
		recombined = append(recombined, strings.Fields(chunk.Text)...)
	}
	assert.Equal(t, words, recombined)
}

func TestBuildChunks_Deterministic(t *testing.T) {
	pages := []string{"alpha beta gamma", "delta epsilon zeta eta"}

	first := BuildChunks("book.pdf", pages, 3)
	second := BuildChunks("book.pdf", pages, 3)
	assert.Equal(t, first, second)
}

func TestBuildChunks_JoinsPagesWithNewline(t *testing.T) {
	// Words at page boundaries must not fuse together.
	chunks := BuildChunks("doc.pdf", []string{"end", "start"}, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "end start", chunks[0].Text)
}

func TestBuildChunks_ShortDocumentIsOneChunk(t *testing.T) {
	chunks := BuildChunks("tiny.pdf", []string{"just a few words"}, 500)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "just a few words", chunks[0].Text)
}

func TestBuildChunks_EmptyDocument(t *testing.T) {
	assert.Nil(t, BuildChunks("empty.pdf", nil, 500))
	assert.Nil(t, BuildChunks("blank.pdf", []string{"   ", "\n"}, 500))
}

func TestBuildChunks_ZeroSizeFallsBackToDefault(t *testing.T) {
	words := makeWords(DefaultChunkSize + 1)
	chunks := BuildChunks("doc.pdf", []string{strings.Join(words, " ")}, 0)
	require.Len(t, chunks, 2)
	assert.Len(t, strings.Fields(chunks[0].Text), DefaultChunkSize)
}

func TestSanitizeDocName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"guide.pdf", "guide"},
		{"Parenting Handbook (2nd ed).pdf", "Parenting-Handbook-2nd-ed"},
		{"already-clean", "already-clean"},
		{"/some/path/to/book.pdf", "book"},
		{"weird   spaces.PDF", "weird-spaces"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SanitizeDocName(tt.in), tt.in)
	}
}
