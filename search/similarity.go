package search

import "math"

// CosineSimilarity returns dot(a,b) / (|a| * |b|).
//
// ok is false when the vectors differ in length or are empty, in which case
// they cannot be compared. A zero-magnitude vector yields 0, never NaN.
func CosineSimilarity(a, b []float32) (score float32, ok bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, true
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0, true
	}
	// Rounding can push parallel vectors a hair outside [-1, 1].
	return float32(max(-1, min(1, sim))), true
}
