package main

import (
	"context"
	"flag"
	"log"

	"caregiver-rag/internal/config"
	"caregiver-rag/internal/database"
	"caregiver-rag/internal/embedding"
	"caregiver-rag/internal/rag"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	chunkDir := flag.String("chunks", cfg.ChunkDir, "Directory containing chunk artifacts")
	collection := flag.String("collection", cfg.Collection, "Vector store collection name")
	flag.Parse()

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(ctx, cfg.EmbedDim); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := db.GetOrCreateCollection(ctx, *collection, cfg.EmbedModel, cfg.EmbedDim); err != nil {
		log.Fatalf("Failed to open collection: %v", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}

	log.Printf("Indexing chunks from %s into collection %s (model %s)",
		*chunkDir, *collection, cfg.EmbedModel)

	indexer := rag.NewIndexer(db, embedder, *collection)
	result, err := indexer.Run(ctx, *chunkDir)
	if err != nil {
		log.Fatalf("Indexing failed: %v", err)
	}

	log.Printf("Indexing complete: %d newly indexed, %d already indexed, %d failed",
		result.Indexed, result.Skipped, result.Failed)
}

func newEmbedder(cfg *config.Config) (rag.Embedder, error) {
	if cfg.Provider == config.ProviderOllama {
		return embedding.NewOllamaEmbedder(cfg.OllamaHost, cfg.EmbedModel)
	}
	return embedding.NewOpenAIEmbedder(cfg.OpenAIKey, cfg.EmbedModel), nil
}
