package facecluster

// ClusterOptions bounds one clustering pass over remaining faces.
type ClusterOptions struct {
	Threshold            float64
	MaxComparisons       int
	PreCluster           bool // route candidate pairs through LSH buckets
	Bands                int
	RowsPerBand          int
	MaxBucketComparisons int
	Seed                 int64
}

// ClusterResult reports what one clustering pass did.
type ClusterResult struct {
	Groups      [][]uint // face IDs per new cluster, every group has >= 2 members
	Comparisons int
}

// ClusterFaces groups the remaining faces into connected components via
// union-find over above-threshold similarity edges. Candidate pairs come
// either from LSH buckets (PreCluster) or a capped full pairwise scan.
// A pair is only ever merged after an explicit cosine similarity check;
// hitting a comparison cap skips the remaining pairs for that scope and
// costs recall, never correctness. Components of size 1 are discarded.
func ClusterFaces(faces []FaceVector, opts ClusterOptions) ClusterResult {
	result := ClusterResult{}
	if len(faces) < 2 {
		return result
	}

	if opts.MaxComparisons <= 0 {
		opts.MaxComparisons = DefaultMaxComparisons
	}
	if opts.Bands <= 0 {
		opts.Bands = DefaultBands
	}
	if opts.RowsPerBand <= 0 {
		opts.RowsPerBand = DefaultRowsPerBand
	}
	if opts.MaxBucketComparisons <= 0 {
		opts.MaxBucketComparisons = derivedBucketCap(opts.MaxComparisons, opts.Bands)
	}

	normalized := make([][]float32, len(faces))
	for i, face := range faces {
		normalized[i] = Normalize(face.Embedding)
	}

	uf := NewUnionFind(len(faces))

	if opts.PreCluster {
		buckets := BuildLSHBuckets(normalized, opts.Bands, opts.RowsPerBand, opts.Seed)
		for _, members := range buckets {
			if len(members) < 2 {
				continue
			}
			bucketComparisons := 0
			for i := 0; i < len(members) && result.Comparisons < opts.MaxComparisons; i++ {
				for j := i + 1; j < len(members); j++ {
					if result.Comparisons >= opts.MaxComparisons || bucketComparisons >= opts.MaxBucketComparisons {
						break
					}
					result.Comparisons++
					bucketComparisons++
					a, b := members[i], members[j]
					if uf.Find(a) == uf.Find(b) {
						continue
					}
					if float64(CosineSimilarity(normalized[a], normalized[b])) >= opts.Threshold {
						uf.Union(a, b)
					}
				}
			}
		}
	} else {
		for i := 0; i < len(faces) && result.Comparisons < opts.MaxComparisons; i++ {
			for j := i + 1; j < len(faces); j++ {
				if result.Comparisons >= opts.MaxComparisons {
					break
				}
				result.Comparisons++
				if uf.Find(i) == uf.Find(j) {
					continue
				}
				if float64(CosineSimilarity(normalized[i], normalized[j])) >= opts.Threshold {
					uf.Union(i, j)
				}
			}
		}
	}

	for _, group := range uf.Groups() {
		if len(group) < 2 {
			continue
		}
		ids := make([]uint, len(group))
		for i, idx := range group {
			ids[i] = faces[idx].ID
		}
		result.Groups = append(result.Groups, ids)
	}

	return result
}
