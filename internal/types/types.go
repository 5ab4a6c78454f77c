// internal/types/types.go
// Package types contains shared data types that have no CGO dependencies.
// This allows packages like the client and shim to use Embedding without
// pulling in sqlite-vec.
package types

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no embedding exists for a requested id.
var ErrNotFound = errors.New("embedding not found")

// Embedding is a stored acoustic feature vector. Records are insert-only:
// id and created_at are assigned by the store and never change.
type Embedding struct {
	ID             int64     `json:"id"`
	Vector         []float32 `json:"vector"`
	FeatureVersion int       `json:"feature_version"`
	CreatedAt      time.Time `json:"created_at"`
}

// Match is a single nearest-neighbour search result. Distance is the cosine
// distance reported by the backing vector index (lower is closer).
type Match struct {
	ID        int64     `json:"id"`
	Distance  float64   `json:"distance"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOpts configures list behavior.
type ListOpts struct {
	Limit  int
	Offset int
}
