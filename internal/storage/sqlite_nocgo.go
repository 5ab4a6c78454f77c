//go:build !cgo

// internal/storage/sqlite_nocgo.go
package storage

import (
	"context"
	"fmt"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/types"
)

// SQLite is a stub for non-CGO builds
type SQLite struct{}

var errNoCGO = fmt.Errorf("SQLite storage requires CGO (build with CGO_ENABLED=1)")

// NewSQLite returns an error in non-CGO builds
func NewSQLite(path string, dimension int) (*SQLite, error) {
	return nil, errNoCGO
}

func (s *SQLite) Save(ctx context.Context, vector []float32, featureVersion int) (*types.Embedding, error) {
	return nil, errNoCGO
}

func (s *SQLite) GetByID(ctx context.Context, id int64) (*types.Embedding, error) {
	return nil, errNoCGO
}

func (s *SQLite) List(ctx context.Context, opts types.ListOpts) ([]types.Embedding, error) {
	return nil, errNoCGO
}

func (s *SQLite) FindSimilar(ctx context.Context, vector []float32, limit int) ([]types.Match, error) {
	return nil, errNoCGO
}

func (s *SQLite) Close() error {
	return nil
}
