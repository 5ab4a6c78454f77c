// internal/api/types.go
package api

import "time"

// ExtractResponse is returned by POST /extract-embedding.
type ExtractResponse struct {
	FileID       int64     `json:"file_id"`
	Embedding    []float32 `json:"embedding"`
	FeatureCount int       `json:"feature_count"`
}

// GetResponse is returned by GET /get-embedding/{id}.
type GetResponse struct {
	FileID         int64     `json:"file_id"`
	Embedding      []float32 `json:"embedding"`
	FeatureVersion int       `json:"feature_version"`
	CreatedAt      time.Time `json:"created_at"`
}

// CompareRequest is the body of POST /compare-voices. Pointers distinguish
// a missing field from an empty vector.
type CompareRequest struct {
	Embedding1 *[]float32 `json:"embedding1"`
	Embedding2 *[]float32 `json:"embedding2"`
}

// FindSimilarRequest is the body of POST /find-similar.
type FindSimilarRequest struct {
	Embedding []float32 `json:"embedding"`
	Limit     int       `json:"limit,omitempty"`
}

// MatchEntry is one nearest-neighbour result.
type MatchEntry struct {
	FileID    int64     `json:"file_id"`
	Distance  float64   `json:"distance"`
	CreatedAt time.Time `json:"created_at"`
}

// FindSimilarResponse is returned by POST /find-similar.
type FindSimilarResponse struct {
	Matches []MatchEntry `json:"matches"`
}

// EmbeddingSummary describes a stored embedding without its vector.
type EmbeddingSummary struct {
	FileID         int64     `json:"file_id"`
	FeatureCount   int       `json:"feature_count"`
	FeatureVersion int       `json:"feature_version"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListResponse is returned by GET /embeddings.
type ListResponse struct {
	Embeddings []EmbeddingSummary `json:"embeddings"`
	Pagination PaginationInfo     `json:"pagination"`
}

// PaginationInfo echoes the applied limit/offset.
type PaginationInfo struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
