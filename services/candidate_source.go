package services

import (
	"fmt"

	"github.com/coder/hnsw"

	"github.com/torvik/lumengallery/facecluster"
	"github.com/torvik/lumengallery/repository"
)

const (
	// coldStartSampleSize caps how many of a person's most confident face
	// embeddings stand in for a missing centroid.
	coldStartSampleSize = 5

	// annPersonThreshold is the person count above which the exact
	// centroid scan is swapped for the approximate index.
	annPersonThreshold = 200

	// annTopK is how many nearest persons the approximate index returns
	// per query.
	annTopK = 10

	hnswMaxNeighbors = 16
)

// CandidateSource supplies the person candidates one face embedding is
// matched against. The retrieval strategy (exact scan, cold-start face
// sampling, approximate nearest-neighbor) is interchangeable behind this
// interface; the assignment contract never changes.
type CandidateSource interface {
	CandidatesFor(embedding []float32) []facecluster.PersonCandidate
}

// exactSource matches against a fixed candidate list, ignoring the query.
type exactSource struct {
	candidates []facecluster.PersonCandidate
}

func (s *exactSource) CandidatesFor([]float32) []facecluster.PersonCandidate {
	return s.candidates
}

// annCentroidSource narrows the candidate set to the nearest person
// centroids via an in-memory HNSW graph. The graph only prunes; exact
// cosine similarity is still computed downstream against the returned
// centroids.
type annCentroidSource struct {
	graph *hnsw.Graph[uint]
	topK  int
}

func (s *annCentroidSource) CandidatesFor(embedding []float32) []facecluster.PersonCandidate {
	neighbors := s.graph.Search(embedding, s.topK)
	candidates := make([]facecluster.PersonCandidate, 0, len(neighbors))
	for _, node := range neighbors {
		candidates = append(candidates, facecluster.PersonCandidate{
			PersonID: node.Key,
			Vectors:  [][]float32{node.Value},
		})
	}
	return candidates
}

// buildCandidateSource picks the cheapest viable retrieval strategy:
// person centroids when any exist (indexed approximately once the person
// count is large), otherwise a small per-person sample of the most
// confident individual face embeddings (cold start).
func buildCandidateSource(
	faceRepo repository.FaceRepositoryInterface,
	personRepo repository.PersonRepositoryInterface,
) (CandidateSource, error) {
	withCentroids, err := personRepo.ListWithCentroids()
	if err != nil {
		return nil, fmt.Errorf("failed to load person centroids: %w", err)
	}

	if len(withCentroids) > annPersonThreshold {
		graph := hnsw.NewGraph[uint]()
		graph.M = hnswMaxNeighbors
		graph.Ml = 1.0 / float64(hnswMaxNeighbors)
		graph.Distance = hnsw.CosineDistance
		for i := range withCentroids {
			centroid := withCentroids[i].GetCentroid()
			if len(centroid) == 0 {
				continue
			}
			graph.Add(hnsw.MakeNode(withCentroids[i].ID, centroid))
		}
		return &annCentroidSource{graph: graph, topK: annTopK}, nil
	}

	if len(withCentroids) > 0 {
		candidates := make([]facecluster.PersonCandidate, 0, len(withCentroids))
		for i := range withCentroids {
			centroid := withCentroids[i].GetCentroid()
			if len(centroid) == 0 {
				continue
			}
			candidates = append(candidates, facecluster.PersonCandidate{
				PersonID: withCentroids[i].ID,
				Vectors:  [][]float32{centroid},
			})
		}
		return &exactSource{candidates: candidates}, nil
	}

	// Cold start: nobody has a centroid yet, fall back to sampling each
	// person's most confident faces.
	people, err := personRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list people for cold-start sampling: %w", err)
	}

	var candidates []facecluster.PersonCandidate
	for i := range people {
		faces, err := faceRepo.ListByPersonID(people[i].ID, coldStartSampleSize)
		if err != nil {
			return nil, fmt.Errorf("failed to sample faces for person %d: %w", people[i].ID, err)
		}
		vectors := make([][]float32, 0, len(faces))
		for j := range faces {
			embedding := faces[j].GetEmbedding()
			if len(embedding) == 0 {
				continue
			}
			vectors = append(vectors, embedding)
		}
		if len(vectors) == 0 {
			continue
		}
		candidates = append(candidates, facecluster.PersonCandidate{
			PersonID: people[i].ID,
			Vectors:  vectors,
		})
	}
	return &exactSource{candidates: candidates}, nil
}
