package facecluster

// FaceVector is the in-memory view of one unassigned face handed to the
// engine: its identifier, the detector confidence and the raw embedding.
type FaceVector struct {
	ID         uint
	Confidence float64
	Embedding  []float32
}

// PersonCandidate carries the vectors an existing person is matched
// against: normally the single centroid, or a small sample of individual
// face embeddings on the cold-start path.
type PersonCandidate struct {
	PersonID uint
	Vectors  [][]float32
}

// Assignment records a face matched to an existing person.
type Assignment struct {
	FaceID     uint
	PersonID   uint
	Similarity float32
}

// CandidateProvider returns the person candidates to compare one face
// embedding against. A full-scan provider ignores the query; an
// approximate-index provider narrows it to the nearest persons.
type CandidateProvider func(embedding []float32) []PersonCandidate

// BestMatch returns the person whose candidate vector is most similar to
// the embedding. Exact ties keep the first person encountered.
func BestMatch(embedding []float32, candidates []PersonCandidate) (personID uint, best float32, found bool) {
	for _, cand := range candidates {
		for _, vec := range cand.Vectors {
			sim := CosineSimilarity(embedding, vec)
			if !found || sim > best {
				best = sim
				personID = cand.PersonID
				found = true
			}
		}
	}
	return personID, best, found
}

// AssignFaces decides, for every face, whether it belongs to an existing
// person: the best match at or above threshold wins. Faces with no match
// are returned as remaining for the clustering engine. Faces without an
// embedding are dropped entirely. No new persons are ever created here.
func AssignFaces(faces []FaceVector, provider CandidateProvider, threshold float64) ([]Assignment, []FaceVector) {
	var assignments []Assignment
	var remaining []FaceVector

	for _, face := range faces {
		if len(face.Embedding) == 0 {
			continue
		}

		personID, best, found := BestMatch(face.Embedding, provider(face.Embedding))
		if found && float64(best) >= threshold {
			assignments = append(assignments, Assignment{
				FaceID:     face.ID,
				PersonID:   personID,
				Similarity: best,
			})
			continue
		}
		remaining = append(remaining, face)
	}

	return assignments, remaining
}
