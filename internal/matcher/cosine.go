package matcher

import (
	"fmt"
	"math"
)

// CosineSimilarity computes dot(a,b) / (|a|*|b|) in float64.
// Returns a value between -1 and 1, or 0 when either vector has zero norm.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0, nil // No signal from degenerate vectors
	}

	// Clamp to [-1, 1] to absorb floating point error.
	return max(-1, min(1, dotProduct/denominator)), nil
}

// CosineDistance returns 1 - CosineSimilarity(a, b).
// Ranges from 0 (identical direction) to 2 (opposite).
func CosineDistance(a, b []float32) (float64, error) {
	similarity, err := CosineSimilarity(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - similarity, nil
}
