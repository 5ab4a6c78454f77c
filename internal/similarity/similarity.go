// internal/similarity/similarity.go
// Package similarity compares two embedding vectors.
package similarity

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when the two vectors differ in length.
var ErrDimensionMismatch = errors.New("embedding dimensions do not match")

// Result holds the three comparison metrics. MatchProbability is
// max(0, cosine similarity) — a crude non-negative clamp, not a
// calibrated probability.
type Result struct {
	CosineSimilarity  float64 `json:"cosine_similarity"`
	EuclideanDistance float64 `json:"euclidean_distance"`
	MatchProbability  float64 `json:"match_probability"`
}

// Compare computes cosine similarity and Euclidean distance between a and b.
// Cosine similarity is defined as 0.0 when either vector has zero norm;
// callers must treat that as "no signal", not "orthogonal". Accumulation is
// done in float64 regardless of the input element type.
func Compare(a, b []float32) (Result, error) {
	if len(a) != len(b) {
		return Result{}, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB, sqDist float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
		d := x - y
		sqDist += d * d
	}

	cosine := 0.0
	if normA > 0 && normB > 0 {
		cosine = dot / (math.Sqrt(normA) * math.Sqrt(normB))
	}

	return Result{
		CosineSimilarity:  cosine,
		EuclideanDistance: math.Sqrt(sqDist),
		MatchProbability:  math.Max(0, cosine),
	}, nil
}
