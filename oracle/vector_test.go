package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
		{"empty", []float32{}, []float32{}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.InDelta(t, test.expected, CosineSimilarity(test.a, test.b), 1e-9)
		})
	}
}

func TestCosineSimilarity_Scaled(t *testing.T) {
	// Cosine similarity is scale-invariant
	a := []float32{0.3, 0.7, 0.1}
	b := []float32{0.6, 1.4, 0.2}
	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineOracle_Similarity(t *testing.T) {
	o := NewCosineOracle(nil)
	assert.InDelta(t, 1.0, o.Similarity([]float32{1, 1}, []float32{2, 2}), 1e-9)
}
