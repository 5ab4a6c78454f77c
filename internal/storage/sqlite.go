//go:build cgo

// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/types"
)

// SQLite implements Storage using SQLite with sqlite-vec. The primary
// embeddings table stores the vector as JSON text; a vec0 virtual table
// carries a parallel copy for nearest-neighbour queries.
type SQLite struct {
	conn *sql.DB
	dim  int
}

// NewSQLite opens (or creates) the database at path and idempotently ensures
// the schema for vectors of the given dimensionality.
func NewSQLite(path string, dimension int) (*SQLite, error) {
	sqlite_vec.Auto()

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{conn: conn, dim: dimension}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLite) initSchema() error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS embeddings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			embedding TEXT NOT NULL,
			feature_version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS embedding_index USING vec0(
			embedding_id INTEGER PRIMARY KEY,
			embedding FLOAT[%d]
		);
	`, s.dim)
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) Save(ctx context.Context, vector []float32, featureVersion int) (*types.Embedding, error) {
	embeddingJSON, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO embeddings (embedding, feature_version) VALUES (?, ?)`,
		string(embeddingJSON), featureVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert embedding: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	if len(vector) == s.dim {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO embedding_index (embedding_id, embedding) VALUES (?, ?)`,
			id, string(embeddingJSON),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to index embedding: %w", err)
		}
	}

	var createdAt time.Time
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at FROM embeddings WHERE id = ?`, id,
	).Scan(&createdAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &types.Embedding{
		ID:             id,
		Vector:         vector,
		FeatureVersion: featureVersion,
		CreatedAt:      createdAt,
	}, nil
}

func (s *SQLite) GetByID(ctx context.Context, id int64) (*types.Embedding, error) {
	var embeddingJSON string
	var featureVersion int
	var createdAt time.Time

	err := s.conn.QueryRowContext(ctx,
		`SELECT embedding, feature_version, created_at FROM embeddings WHERE id = ?`, id,
	).Scan(&embeddingJSON, &featureVersion, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
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

func (s *SQLite) List(ctx context.Context, opts types.ListOpts) ([]types.Embedding, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, embedding, feature_version, created_at
		 FROM embeddings
		 ORDER BY id DESC
		 LIMIT ? OFFSET ?`,
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

func (s *SQLite) FindSimilar(ctx context.Context, vector []float32, limit int) ([]types.Match, error) {
	if limit <= 0 {
		limit = 5
	}

	queryJSON, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query vector: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT e.id, vec_distance_cosine(i.embedding, ?) AS distance, e.created_at
		FROM embeddings e
		JOIN embedding_index i ON e.id = i.embedding_id
		ORDER BY distance
		LIMIT ?`,
		string(queryJSON), limit,
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
