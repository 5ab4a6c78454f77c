// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/types"
)

// Storage defines the interface for embedding persistence. Absence is a
// tagged result (types.ErrNotFound), never a storage failure.
type Storage interface {
	// Save inserts a new embedding row and returns the assigned record.
	Save(ctx context.Context, vector []float32, featureVersion int) (*types.Embedding, error)
	// GetByID returns the embedding for id, or types.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*types.Embedding, error)
	// List returns recent embeddings, newest first.
	List(ctx context.Context, opts types.ListOpts) ([]types.Embedding, error)
	// FindSimilar returns the stored embeddings nearest to vector by cosine
	// distance.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]types.Match, error)
	Close() error
}
