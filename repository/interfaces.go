package repository

import (
	"github.com/torvik/lumengallery/models"
)

// FaceRepositoryInterface defines the methods for face data operations
type FaceRepositoryInterface interface {
	Create(face *models.Face) error
	GetByID(id uint) (*models.Face, error)

	// ListUnassigned returns a bounded batch of unassigned, non-ignored
	// faces with valid embeddings, confidence-descending unless randomized.
	ListUnassigned(limit, offset int, randomize bool) ([]models.Face, error)
	// ListByPersonID returns a person's non-ignored faces with valid
	// embeddings, confidence-descending, capped at limit (0 = no cap).
	ListByPersonID(personID uint, limit int) ([]models.Face, error)
	CountUnassigned() (int64, error)

	AssignPerson(faceID uint, personID uint) error
	BulkAssignPerson(faceIDs []uint, personID uint) (int64, error)
	UnassignPerson(faceID uint) error
	// BulkDisable marks faces ignored and clears any person assignment,
	// permanently excluding them from future matching and clustering.
	BulkDisable(faceIDs []uint) (int64, error)
	SetIgnored(faceID uint, ignored bool) error
}

// PersonRepositoryInterface defines the methods for person data operations
type PersonRepositoryInterface interface {
	Create(person *models.Person) error
	GetByID(id uint) (*models.Person, error)
	ListAll() ([]models.Person, error)
	// ListWithCentroids returns only persons whose centroid is set.
	ListWithCentroids() ([]models.Person, error)
	Update(person *models.Person) error
	// UpdateCentroid persists a recomputed centroid; nil clears it.
	UpdateCentroid(personID uint, centroid []float32) error
	Delete(id uint) error
}

// SettingRepositoryInterface defines the methods for persisted
// configuration values
type SettingRepositoryInterface interface {
	Get(key string) (string, error)
	Set(key, value string) error
	// GetFloat parses the value as float64, returning fallback when the
	// key is missing or malformed.
	GetFloat(key string, fallback float64) float64
}
