package services

import (
	"fmt"
	"log"
	"time"

	"github.com/torvik/lumengallery/facecluster"
	"github.com/torvik/lumengallery/models"
	"github.com/torvik/lumengallery/repository"
)

// RunResult reports the counts of one assignment+clustering batch. All
// fields are always populated; a run that finds nothing to do reports
// zeros, never an error.
type RunResult struct {
	Processed               int     `json:"processed"`
	NewPeople               int     `json:"newPeople"`
	AssignedToExisting      int     `json:"assignedToExisting"`
	TotalUnassigned         int     `json:"totalUnassigned"`
	CreatedGroups           int     `json:"createdGroups"`
	UsedSimilarityThreshold float64 `json:"usedSimilarityThreshold"`
}

// ClusterService runs the face assignment and clustering pipeline over
// bounded batches of unassigned faces.
type ClusterService struct {
	faceRepo          repository.FaceRepositoryInterface
	personRepo        repository.PersonRepositoryInterface
	settingRepo       repository.SettingRepositoryInterface
	centroids         *CentroidService
	fallbackThreshold float64
}

// NewClusterService creates a new cluster service. fallbackThreshold is
// used when no persisted similarity threshold setting exists.
func NewClusterService(
	faceRepo repository.FaceRepositoryInterface,
	personRepo repository.PersonRepositoryInterface,
	settingRepo repository.SettingRepositoryInterface,
	centroids *CentroidService,
	fallbackThreshold float64,
) *ClusterService {
	return &ClusterService{
		faceRepo:          faceRepo,
		personRepo:        personRepo,
		settingRepo:       settingRepo,
		centroids:         centroids,
		fallbackThreshold: fallbackThreshold,
	}
}

// DefaultThreshold returns the persisted similarity threshold, falling
// back to the configured default when unset.
func (s *ClusterService) DefaultThreshold() float64 {
	return s.settingRepo.GetFloat(models.SettingFaceSimilarityThreshold, s.fallbackThreshold)
}

// CountUnassigned reports how many faces are still eligible for a batch.
func (s *ClusterService) CountUnassigned() (int64, error) {
	return s.faceRepo.CountUnassigned()
}

// RunBatch executes one batch: fetch eligible faces, assign confident
// matches to existing persons, cluster the remainder into new persons,
// and recompute centroids for every touched person. Assignment always
// logically precedes clustering; a face matched to a person is never also
// considered for new-cluster formation in the same batch.
func (s *ClusterService) RunBatch(opts facecluster.RunOptions) (RunResult, error) {
	result := RunResult{UsedSimilarityThreshold: opts.SimilarityThreshold}

	batch, err := s.faceRepo.ListUnassigned(opts.Limit, opts.Offset, opts.Randomize)
	if err != nil {
		return result, fmt.Errorf("failed to fetch unassigned face batch: %w", err)
	}

	faces := make([]facecluster.FaceVector, 0, len(batch))
	for i := range batch {
		embedding := batch[i].GetEmbedding()
		if len(embedding) == 0 {
			// malformed embedding despite the flag; skip the face, not the run
			log.Printf("Warning: face %d flagged as embedded but blob is invalid, skipping", batch[i].ID)
			continue
		}
		faces = append(faces, facecluster.FaceVector{
			ID:         batch[i].ID,
			Confidence: batch[i].Confidence,
			Embedding:  embedding,
		})
	}

	result.TotalUnassigned = len(faces)
	if len(faces) == 0 {
		return result, nil
	}

	touched := make(map[uint]struct{})
	remaining := faces

	if opts.Mode != facecluster.ModeCreateNew {
		source, err := buildCandidateSource(s.faceRepo, s.personRepo)
		if err != nil {
			return result, err
		}

		assignments, rest := facecluster.AssignFaces(faces, source.CandidatesFor, opts.SimilarityThreshold)
		remaining = rest
		for _, a := range assignments {
			if err := s.faceRepo.AssignPerson(a.FaceID, a.PersonID); err != nil {
				log.Printf("Warning: failed to persist assignment of face %d to person %d: %v", a.FaceID, a.PersonID, err)
				continue
			}
			touched[a.PersonID] = struct{}{}
			result.AssignedToExisting++
		}
	}

	if opts.Mode != facecluster.ModeAssignExisting {
		clusterResult := facecluster.ClusterFaces(remaining, facecluster.ClusterOptions{
			Threshold:            opts.SimilarityThreshold,
			MaxComparisons:       opts.MaxComparisons,
			PreCluster:           opts.PreCluster,
			Bands:                opts.Bands,
			RowsPerBand:          opts.RowsPerBand,
			MaxBucketComparisons: opts.MaxBucketComparisons,
			Seed:                 opts.Seed,
		})

		for i, group := range clusterResult.Groups {
			person := &models.Person{
				Name:      autoPersonName(i),
				Confirmed: false,
			}
			if err := s.personRepo.Create(person); err != nil {
				log.Printf("Warning: failed to create person for cluster of %d faces: %v", len(group), err)
				continue
			}
			affected, err := s.faceRepo.BulkAssignPerson(group, person.ID)
			if err != nil {
				log.Printf("Warning: failed to assign cluster faces to person %d: %v", person.ID, err)
				continue
			}
			touched[person.ID] = struct{}{}
			result.NewPeople++
			result.CreatedGroups++
			result.Processed += int(affected)
		}
	}

	result.Processed += result.AssignedToExisting

	// Centroid updates must complete before the run reports success, but
	// a single person's failure never fails the batch.
	for personID := range touched {
		if err := s.centroids.UpdateCentroid(personID); err != nil {
			log.Printf("Warning: centroid update failed for person %d: %v", personID, err)
		}
	}

	return result, nil
}

// autoPersonName produces a time-based display name for an auto-created
// person; the per-run index keeps names within one batch distinct.
func autoPersonName(index int) string {
	return fmt.Sprintf("Person %s #%d", time.Now().UTC().Format("2006-01-02 15:04:05"), index+1)
}
