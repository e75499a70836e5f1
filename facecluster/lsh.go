package facecluster

import (
	"fmt"
	"math/rand"
	"strings"
)

// DefaultLSHSeed makes bucket assignment reproducible across runs unless a
// caller explicitly overrides it.
const DefaultLSHSeed int64 = 42

// BuildLSHBuckets partitions the given vectors into candidate buckets via
// random-hyperplane locality-sensitive hashing. bands*rowsPerBand random
// hyperplanes are sampled from a seeded generator; every vector gets one
// sign bit per hyperplane, and each contiguous rowsPerBand-bit chunk plus
// its band index forms a bucket key, so every vector lands in exactly
// `bands` buckets.
//
// The result maps bucket key to the indices of the vectors sharing it.
// Colliding vectors are only candidate pairs; similarity must still be
// verified explicitly by the caller.
func BuildLSHBuckets(vectors [][]float32, bands, rowsPerBand int, seed int64) map[string][]int {
	buckets := make(map[string][]int)
	if len(vectors) == 0 {
		return buckets
	}

	dim := 0
	for _, v := range vectors {
		if len(v) > 0 {
			dim = len(v)
			break
		}
	}
	if dim == 0 {
		return buckets
	}

	if bands <= 0 {
		bands = DefaultBands
	}
	if rowsPerBand <= 0 {
		rowsPerBand = DefaultRowsPerBand
	}

	rng := rand.New(rand.NewSource(seed))
	totalPlanes := bands * rowsPerBand
	planes := make([][]float32, totalPlanes)
	for p := range planes {
		plane := make([]float32, dim)
		for i := range plane {
			plane[i] = float32(rng.Float64()*2 - 1) // uniform in [-1,1]
		}
		planes[p] = plane
	}

	var key strings.Builder
	for idx, v := range vectors {
		if len(v) != dim {
			continue
		}

		signature := make([]byte, totalPlanes)
		for p, plane := range planes {
			var dot float64
			for i := 0; i < dim; i++ {
				dot += float64(v[i]) * float64(plane[i])
			}
			if dot >= 0 {
				signature[p] = '1'
			} else {
				signature[p] = '0'
			}
		}

		for band := 0; band < bands; band++ {
			key.Reset()
			fmt.Fprintf(&key, "%d:", band)
			key.Write(signature[band*rowsPerBand : (band+1)*rowsPerBand])
			buckets[key.String()] = append(buckets[key.String()], idx)
		}
	}

	return buckets
}
