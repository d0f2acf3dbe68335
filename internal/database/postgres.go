package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"caregiver-rag/internal/models"
)

// DB is the pgvector-backed vector store. Records are grouped into named
// collections; each collection pins the embedding model and dimensionality
// it was indexed with.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a new database connection pool with pgvector types
// registered on every connection.
func NewDB(connStr string) (*DB, error) {
	ctx := context.Background()

	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Initialize sets up the schema. dim fixes the vector column width and must
// match the embedding model's dimensionality.
func (db *DB) Initialize(ctx context.Context, dim int) error {
	_, err := db.Pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`)
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS collections (
            name TEXT PRIMARY KEY,
            embedding_model TEXT NOT NULL,
            embedding_dim INTEGER NOT NULL
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create collections table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS guidance_chunks (
            id TEXT PRIMARY KEY,
            collection TEXT NOT NULL REFERENCES collections(name),
            document TEXT NOT NULL,
            source TEXT NOT NULL DEFAULT '',
            chunk_index INTEGER NOT NULL DEFAULT 0,
            embedding vector(%d) NOT NULL
        )
    `, dim))
	if err != nil {
		return fmt.Errorf("failed to create guidance_chunks table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS guidance_chunks_embedding_idx ON guidance_chunks
        USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)
    `)
	if err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS guidance_chunks_collection_idx ON guidance_chunks (collection)
    `)
	if err != nil {
		return fmt.Errorf("failed to create collection index: %w", err)
	}

	return nil
}

// GetOrCreateCollection registers the collection with its embedding model
// and dimensionality, or validates them against an existing registration.
// A mismatch fails fast rather than letting a differently-embedded query
// return meaningless similarity scores.
func (db *DB) GetOrCreateCollection(ctx context.Context, name, embeddingModel string, dim int) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO collections (name, embedding_model, embedding_dim)
        VALUES ($1, $2, $3)
        ON CONFLICT (name) DO NOTHING
    `, name, embeddingModel, dim)
	if err != nil {
		return fmt.Errorf("failed to register collection %s: %w", name, err)
	}

	var storedModel string
	var storedDim int
	err = db.Pool.QueryRow(ctx, `
        SELECT embedding_model, embedding_dim FROM collections WHERE name = $1
    `, name).Scan(&storedModel, &storedDim)
	if err != nil {
		return fmt.Errorf("failed to read collection %s: %w", name, err)
	}

	if storedModel != embeddingModel || storedDim != dim {
		return fmt.Errorf("collection %s was indexed with %s (dim %d), refusing to use %s (dim %d)",
			name, storedModel, storedDim, embeddingModel, dim)
	}

	return nil
}

// ListIDs returns the ids of every record in the collection in one fetch.
func (db *DB) ListIDs(ctx context.Context, collection string) (map[string]struct{}, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id FROM guidance_chunks WHERE collection = $1
    `, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list record ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ids: %w", err)
	}

	return ids, nil
}

// Insert adds one record. Indexing is append-only: a record that already
// exists is left untouched.
func (db *DB) Insert(ctx context.Context, collection string, record models.Record) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO guidance_chunks (id, collection, document, source, chunk_index, embedding)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO NOTHING
    `,
		record.ID,
		collection,
		record.Document,
		record.Source,
		record.ChunkIndex,
		pgvector.NewVector(record.Embedding))
	if err != nil {
		return fmt.Errorf("failed to insert record %s: %w", record.ID, err)
	}

	return nil
}

// Query returns the topK records nearest to the embedding by cosine
// distance, ascending.
func (db *DB) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]models.Context, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := db.Pool.Query(ctx, `
        SELECT id, document, source, embedding <=> $2 AS distance
        FROM guidance_chunks
        WHERE collection = $1
        ORDER BY embedding <=> $2
        LIMIT $3
    `, collection, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar chunks: %w", err)
	}
	defer rows.Close()

	var contexts []models.Context
	for rows.Next() {
		var c models.Context
		if err := rows.Scan(&c.ID, &c.Text, &c.Source, &c.Score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		contexts = append(contexts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return contexts, nil
}

// Count returns the number of records in the collection.
func (db *DB) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM guidance_chunks WHERE collection = $1
    `, collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}
