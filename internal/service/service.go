// internal/service/service.go
package service

import (
	"context"
	"fmt"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/feature"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/similarity"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/storage"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/types"
)

// Service contains the business logic for embedding operations. It holds no
// per-request state; extraction and storage are two discrete steps with no
// transactional link, so a storage failure after successful extraction loses
// the computed vector and persists nothing.
type Service struct {
	storage   storage.Storage
	extractor feature.Extractor
}

// New creates a new Service
func New(store storage.Storage, ext feature.Extractor) *Service {
	return &Service{
		storage:   store,
		extractor: ext,
	}
}

// ExtractFromFile derives the embedding for the audio file at path and
// persists it, returning the stored record.
func (s *Service) ExtractFromFile(ctx context.Context, path string) (*types.Embedding, error) {
	vector, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	emb, err := s.storage.Save(ctx, vector, feature.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to store embedding: %w", err)
	}
	return emb, nil
}

// Get returns the stored embedding for id, or types.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*types.Embedding, error) {
	return s.storage.GetByID(ctx, id)
}

// Compare computes the similarity metrics between two caller-supplied
// vectors. No storage access is involved.
func (s *Service) Compare(a, b []float32) (similarity.Result, error) {
	return similarity.Compare(a, b)
}

// FindSimilar returns the stored embeddings nearest to vector.
func (s *Service) FindSimilar(ctx context.Context, vector []float32, limit int) ([]types.Match, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.storage.FindSimilar(ctx, vector, limit)
}

// List returns recent embeddings, newest first.
func (s *Service) List(ctx context.Context, opts types.ListOpts) ([]types.Embedding, error) {
	return s.storage.List(ctx, opts)
}
