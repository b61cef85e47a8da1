package links

import (
	"gonum.org/v1/gonum/floats"
)

// normalize scales v to unit length in place. Zero vectors stay zero.
func normalize(v []float64) []float64 {
	if n := floats.Norm(v, 2); n > 0 {
		floats.Scale(1/(n+1e-12), v)
	}
	return v
}

// toFloat64 widens an embedding returned by a provider.
func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// cosine returns the dot product of two unit vectors, or -1 when their
// dimensions differ.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}
	return floats.Dot(a, b)
}
