package main

import (
	"flag"
	"log"

	"caregiver-rag/internal/config"
	"caregiver-rag/internal/processor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	docsDir := flag.String("dir", cfg.DocsDir, "Directory containing source PDF documents")
	chunkDir := flag.String("out", cfg.ChunkDir, "Directory to write chunk artifacts to")
	chunkSize := flag.Int("chunk-size", cfg.ChunkSize, "Words per chunk")
	flag.Parse()

	log.Printf("Ingesting documents from %s (chunk size %d words)", *docsDir, *chunkSize)

	ingestor := processor.NewIngestor(*chunkSize)
	result, err := ingestor.IngestDirectory(*docsDir, *chunkDir)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	log.Printf("Ingestion complete: %d documents processed, %d failed, %d chunks written to %s",
		result.DocsProcessed, result.DocsFailed, result.ChunksWritten, *chunkDir)
}
