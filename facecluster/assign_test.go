package facecluster

import "testing"

func staticProvider(candidates []PersonCandidate) CandidateProvider {
	return func([]float32) []PersonCandidate { return candidates }
}

func TestAssignFacesMatchesCentroid(t *testing.T) {
	faces := []FaceVector{
		{ID: 1, Confidence: 0.95, Embedding: []float32{1, 0}},
	}
	candidates := []PersonCandidate{
		{PersonID: 7, Vectors: [][]float32{{1, 0}}},
	}

	assignments, remaining := AssignFaces(faces, staticProvider(candidates), 0.9)
	if len(assignments) != 1 || len(remaining) != 0 {
		t.Fatalf("expected 1 assignment and 0 remaining, got %d/%d", len(assignments), len(remaining))
	}
	if assignments[0].PersonID != 7 || assignments[0].FaceID != 1 {
		t.Errorf("unexpected assignment %+v", assignments[0])
	}
}

func TestAssignFacesBelowThresholdGoesToRemaining(t *testing.T) {
	faces := []FaceVector{
		{ID: 1, Embedding: []float32{1, 0}},
	}
	candidates := []PersonCandidate{
		{PersonID: 7, Vectors: [][]float32{{0, 1}}}, // orthogonal
	}

	assignments, remaining := AssignFaces(faces, staticProvider(candidates), 0.9)
	if len(assignments) != 0 {
		t.Errorf("expected no assignments, got %v", assignments)
	}
	if len(remaining) != 1 || remaining[0].ID != 1 {
		t.Errorf("expected face 1 remaining, got %v", remaining)
	}
}

func TestAssignFacesBestSimilarityWins(t *testing.T) {
	faces := []FaceVector{
		{ID: 1, Embedding: []float32{1, 0}},
	}
	candidates := []PersonCandidate{
		{PersonID: 3, Vectors: [][]float32{{0.7, 0.7}}},
		{PersonID: 9, Vectors: [][]float32{{0.99, 0.05}}},
	}

	assignments, _ := AssignFaces(faces, staticProvider(candidates), 0.5)
	if len(assignments) != 1 || assignments[0].PersonID != 9 {
		t.Errorf("expected the closest person (9) to win, got %+v", assignments)
	}
}

func TestAssignFacesSampledVectorsColdStart(t *testing.T) {
	// No centroids yet: a person is represented by several individual
	// face embeddings; matching any one of them is enough.
	faces := []FaceVector{
		{ID: 1, Embedding: []float32{0, 1}},
	}
	candidates := []PersonCandidate{
		{PersonID: 4, Vectors: [][]float32{{1, 0}, {0.05, 0.99}}},
	}

	assignments, _ := AssignFaces(faces, staticProvider(candidates), 0.9)
	if len(assignments) != 1 || assignments[0].PersonID != 4 {
		t.Errorf("expected cold-start match against sampled face, got %+v", assignments)
	}
}

func TestAssignFacesSkipsFacesWithoutEmbedding(t *testing.T) {
	faces := []FaceVector{
		{ID: 1, Embedding: nil},
		{ID: 2, Embedding: []float32{1, 0}},
	}
	candidates := []PersonCandidate{
		{PersonID: 7, Vectors: [][]float32{{1, 0}}},
	}

	assignments, remaining := AssignFaces(faces, staticProvider(candidates), 0.9)
	if len(assignments) != 1 || assignments[0].FaceID != 2 {
		t.Errorf("expected only face 2 assigned, got %+v", assignments)
	}
	if len(remaining) != 0 {
		t.Errorf("embeddingless faces must be dropped, not deferred: %v", remaining)
	}
}

func TestAssignFacesThresholdMonotonicity(t *testing.T) {
	faces := []FaceVector{
		{ID: 1, Embedding: []float32{1, 0}},
		{ID: 2, Embedding: []float32{0.8, 0.6}},
		{ID: 3, Embedding: []float32{0.5, 0.86}},
		{ID: 4, Embedding: []float32{0, 1}},
	}
	candidates := []PersonCandidate{
		{PersonID: 7, Vectors: [][]float32{{1, 0}}},
	}

	prev := len(faces) + 1
	for _, threshold := range []float64{0.0, 0.25, 0.5, 0.75, 0.9, 0.99, 1.0} {
		assignments, _ := AssignFaces(faces, staticProvider(candidates), threshold)
		if len(assignments) > prev {
			t.Fatalf("raising threshold to %v increased assignments from %d to %d", threshold, prev, len(assignments))
		}
		prev = len(assignments)
	}
}
