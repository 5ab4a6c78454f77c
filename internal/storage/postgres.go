// internal/storage/postgres.go
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/types"
)

// Postgres implements Storage using PostgreSQL with pgvector. Layout mirrors
// the SQLite driver: vectors as JSON text in the primary table, a pgvector
// column in a side table for nearest-neighbour queries.
type Postgres struct {
	pool *pgxpool.Pool
	dim  int
}

// NewPostgres connects to the database and idempotently ensures the schema.
func NewPostgres(ctx context.Context, dsn string, dimension int) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	p := &Postgres{pool: pool, dim: dimension}
	if err := p.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return p, nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS embeddings (
			id SERIAL PRIMARY KEY,
			embedding TEXT NOT NULL,
			feature_version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS embedding_index (
			embedding_id INTEGER PRIMARY KEY REFERENCES embeddings(id),
			embedding vector(%d)
		);

		CREATE INDEX IF NOT EXISTS idx_embedding_index_vector
		ON embedding_index USING hnsw (embedding vector_cosine_ops);
	`, p.dim)
	_, err := p.pool.Exec(ctx, schema)
	return err
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Save(ctx context.Context, vector []float32, featureVersion int) (*types.Embedding, error) {
	embeddingJSON, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id int64
	var createdAt time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO embeddings (embedding, feature_version)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		string(embeddingJSON), featureVersion,
	).Scan(&id, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert embedding: %w", err)
	}

	if len(vector) == p.dim {
		vec := pgvector.NewVector(vector)
		_, err = tx.Exec(ctx,
			`INSERT INTO embedding_index (embedding_id, embedding) VALUES ($1, $2)`,
			id, vec,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to index embedding: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &types.Embedding{
		ID:             id,
		Vector:         vector,
		FeatureVersion: featureVersion,
		CreatedAt:      createdAt,
	}, nil
}

func (p *Postgres) GetByID(ctx context.Context, id int64) (*types.Embedding, error) {
	var embeddingJSON string
	var featureVersion int
	var createdAt time.Time

	err := p.pool.QueryRow(ctx,
		`SELECT embedding, feature_version, created_at FROM embeddings WHERE id = $1`, id,
	).Scan(&embeddingJSON, &featureVersion, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query embedding: %w", err)
	}

	var vector []float32
	if err := json.Unmarshal([]byte(embeddingJSON), &vector); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding: %w", err)
	}

	return &types.Embedding{
		ID:             id,
		Vector:         vector,
		FeatureVersion: featureVersion,
		CreatedAt:      createdAt,
	}, nil
}

func (p *Postgres) List(ctx context.Context, opts types.ListOpts) ([]types.Embedding, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	rows, err := p.pool.Query(ctx,
		`SELECT id, embedding, feature_version, created_at
		 FROM embeddings
		 ORDER BY id DESC
		 LIMIT $1 OFFSET $2`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	defer rows.Close()

	var embeddings []types.Embedding
	for rows.Next() {
		var emb types.Embedding
		var embeddingJSON string
		if err := rows.Scan(&emb.ID, &embeddingJSON, &emb.FeatureVersion, &emb.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(embeddingJSON), &emb.Vector); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embedding %d: %w", emb.ID, err)
		}
		embeddings = append(embeddings, emb)
	}
	return embeddings, rows.Err()
}

func (p *Postgres) FindSimilar(ctx context.Context, vector []float32, limit int) ([]types.Match, error) {
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(vector)
	rows, err := p.pool.Query(ctx, `
		SELECT e.id, i.embedding <=> $1 AS distance, e.created_at
		FROM embeddings e
		JOIN embedding_index i ON e.id = i.embedding_id
		ORDER BY i.embedding <=> $1
		LIMIT $2`,
		vec, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings: %w", err)
	}
	defer rows.Close()

	var matches []types.Match
	for rows.Next() {
		var m types.Match
		if err := rows.Scan(&m.ID, &m.Distance, &m.CreatedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
