package facecluster

import "math"

// Normalize returns a copy of v scaled to unit L2 norm. If the norm is
// zero or non-finite the vector is returned unchanged (as a copy).
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)

	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 || math.IsInf(norm, 0) || math.IsNaN(norm) {
		return out
	}

	for i := range out {
		out[i] = float32(float64(out[i]) / norm)
	}
	return out
}

// CosineSimilarity calculates cosine similarity between two embedding
// vectors. It returns exactly 0 when the lengths differ, either vector is
// empty, or either norm is zero.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct float64
	var norm1 float64
	var norm2 float64

	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		norm1 += float64(a[i]) * float64(a[i])
		norm2 += float64(b[i]) * float64(b[i])
	}

	if norm1 == 0 || norm2 == 0 {
		return 0.0
	}

	return float32(dotProduct / (math.Sqrt(norm1) * math.Sqrt(norm2)))
}

// MeanVector computes the componentwise arithmetic mean of the given
// vectors. The dimension is taken from the first vector; vectors of a
// different length are skipped rather than treated as an error. An empty
// input yields an empty result.
func MeanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return []float32{}
	}

	dim := len(vectors[0])
	sums := make([]float64, dim)
	count := 0
	for _, v := range vectors {
		if len(v) != dim {
			continue
		}
		for i, val := range v {
			sums[i] += float64(val)
		}
		count++
	}
	if count == 0 {
		return []float32{}
	}

	mean := make([]float32, dim)
	for i, s := range sums {
		mean[i] = float32(s / float64(count))
	}
	return mean
}
