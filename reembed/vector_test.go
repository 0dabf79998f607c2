package reembed

import (
	"math"
	"testing"

	"github.com/poiesic/scholia/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{"already unit", []float32{0, 1, 0}, []float32{0, 1, 0}},
		{"3-4-5", []float32{3, 4}, []float32{0.6, 0.8}},
		{"mixed signs", []float32{-2, 2}, []float32{-float32(math.Sqrt2) / 2, float32(math.Sqrt2) / 2}},
		{"tiny components", []float32{1e-4, 0, 1e-4}, []float32{float32(math.Sqrt2) / 2, 0, float32(math.Sqrt2) / 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeVector(tt.input)
			require.Len(t, got, len(tt.expected))
			for i := range got {
				assert.InDelta(t, tt.expected[i], got[i], 1e-6, "component %d", i)
			}
			assert.InDelta(t, 1.0, norm(got), 1e-6)
		})
	}
}

func TestNormalizeVector_Degenerate(t *testing.T) {
	assert.Equal(t, []float32{0, 0, 0}, NormalizeVector([]float32{0, 0, 0}))
	assert.Empty(t, NormalizeVector(nil))
	assert.Empty(t, NormalizeVector([]float32{}))
}

// Re-embedded chunks are stored normalized; rankings must not change.
func TestNormalizeVector_PreservesCosineRanking(t *testing.T) {
	query := []float32{0.9, 0.1, 0.2}
	near := []float32{8, 1, 2}
	far := []float32{0.1, 3, 0.5}

	rawNear, ok := search.CosineSimilarity(query, near)
	require.True(t, ok)
	rawFar, ok := search.CosineSimilarity(query, far)
	require.True(t, ok)

	normNear, _ := search.CosineSimilarity(query, NormalizeVector(near))
	normFar, _ := search.CosineSimilarity(query, NormalizeVector(far))

	assert.InDelta(t, rawNear, normNear, 1e-6)
	assert.InDelta(t, rawFar, normFar, 1e-6)
	assert.Greater(t, normNear, normFar)
}

func TestNormalizeVector_DoesNotModifyInput(t *testing.T) {
	input := []float32{3, 4}
	result := NormalizeVector(input)
	assert.Equal(t, []float32{3, 4}, input)
	assert.InDelta(t, 0.6, result[0], 1e-6)
}
