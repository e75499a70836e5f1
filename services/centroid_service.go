package services

import (
	"fmt"
	"log"

	"github.com/torvik/lumengallery/facecluster"
	"github.com/torvik/lumengallery/repository"
)

// DefaultCentroidFaceCap bounds how many member faces are folded into a
// centroid. When a person exceeds it, the most confident faces win.
const DefaultCentroidFaceCap = 2000

// CentroidService keeps each person's centroid embedding consistent with
// their current face membership.
type CentroidService struct {
	faceRepo   repository.FaceRepositoryInterface
	personRepo repository.PersonRepositoryInterface
	faceCap    int
}

// NewCentroidService creates a new centroid service. faceCap <= 0 selects
// the default cap.
func NewCentroidService(
	faceRepo repository.FaceRepositoryInterface,
	personRepo repository.PersonRepositoryInterface,
	faceCap int,
) *CentroidService {
	if faceCap <= 0 {
		faceCap = DefaultCentroidFaceCap
	}
	return &CentroidService{
		faceRepo:   faceRepo,
		personRepo: personRepo,
		faceCap:    faceCap,
	}
}

// UpdateCentroid recomputes one person's centroid from their current
// non-ignored faces with valid embeddings: each embedding is normalized to
// unit length and the componentwise mean is stored without re-normalizing.
// A person with no qualifying faces gets a NULL centroid. The operation is
// idempotent and must run after every membership change.
func (s *CentroidService) UpdateCentroid(personID uint) error {
	faces, err := s.faceRepo.ListByPersonID(personID, s.faceCap)
	if err != nil {
		return fmt.Errorf("failed to load faces for centroid of person %d: %w", personID, err)
	}

	normalized := make([][]float32, 0, len(faces))
	for i := range faces {
		embedding := faces[i].GetEmbedding()
		if len(embedding) == 0 {
			continue
		}
		normalized = append(normalized, facecluster.Normalize(embedding))
	}

	if len(normalized) == 0 {
		if err := s.personRepo.UpdateCentroid(personID, nil); err != nil {
			return fmt.Errorf("failed to clear centroid for person %d: %w", personID, err)
		}
		return nil
	}

	centroid := facecluster.MeanVector(normalized)
	if err := s.personRepo.UpdateCentroid(personID, centroid); err != nil {
		return fmt.Errorf("failed to store centroid for person %d: %w", personID, err)
	}
	return nil
}

// RebuildAll recomputes centroids for all persons (or the first limit of
// them when limit > 0). Individual failures are logged and skipped; the
// count of successfully updated persons is returned. Offline maintenance,
// not a hot-path operation.
func (s *CentroidService) RebuildAll(limit int) (int, error) {
	people, err := s.personRepo.ListAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list people for centroid rebuild: %w", err)
	}
	if limit > 0 && len(people) > limit {
		people = people[:limit]
	}

	updated := 0
	for i := range people {
		if err := s.UpdateCentroid(people[i].ID); err != nil {
			log.Printf("Warning: centroid rebuild failed for person %d: %v", people[i].ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}
