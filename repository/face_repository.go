package repository

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/torvik/lumengallery/database"
	"github.com/torvik/lumengallery/models"
)

// FaceRepository handles database operations for Face entities
type FaceRepository struct {
	DB *gorm.DB
}

// Ensure FaceRepository implements FaceRepositoryInterface
var _ FaceRepositoryInterface = (*FaceRepository)(nil)

// NewFaceRepository creates a new instance of FaceRepository
func NewFaceRepository(db *gorm.DB) *FaceRepository {
	return &FaceRepository{DB: db}
}

// Create creates a new face record in the database
func (r *FaceRepository) Create(face *models.Face) error {
	now := time.Now().Unix()
	if face.CreatedAt == 0 {
		face.CreatedAt = now
	}
	face.UpdatedAt = now
	face.HasEmbedding = len(face.GetEmbedding()) > 0

	err := r.DB.Create(face).Error
	if err != nil {
		return fmt.Errorf("failed to create face: %w", err)
	}
	return nil
}

// GetByID retrieves a face by its ID, preloading the associated Person
func (r *FaceRepository) GetByID(id uint) (*models.Face, error) {
	var face models.Face
	err := r.DB.Preload("Person").First(&face, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get face by ID %d: %w", id, err)
	}
	return &face, nil
}

// ListUnassigned retrieves a batch of unassigned, non-ignored faces with
// valid embeddings. It prefers the raw-SQL fast path and falls back to the
// ORM when the raw handle is unavailable; both return the same shape.
func (r *FaceRepository) ListUnassigned(limit, offset int, randomize bool) ([]models.Face, error) {
	sqlDB, err := r.DB.DB()
	if err == nil {
		rows, fastErr := database.ListUnassignedFaces(sqlDB, limit, offset, randomize)
		if fastErr == nil {
			faces := make([]models.Face, 0, len(rows))
			for _, row := range rows {
				faces = append(faces, models.Face{
					ID:            row.ID,
					Confidence:    row.Confidence,
					EmbeddingData: row.EmbeddingData,
					HasEmbedding:  true,
				})
			}
			return faces, nil
		}
		log.Printf("Warning: fast-path unassigned face query failed, falling back to ORM: %v", fastErr)
	}

	query := r.DB.Where("person_id IS NULL AND ignored = ? AND has_embedding = ?", false, true)
	if randomize {
		query = query.Order("RANDOM()")
	} else {
		query = query.Order("confidence DESC, id ASC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var faces []models.Face
	if err := query.Find(&faces).Error; err != nil {
		return nil, fmt.Errorf("failed to list unassigned faces: %w", err)
	}
	return faces, nil
}

// ListByPersonID retrieves a person's non-ignored faces with valid
// embeddings, most confident first, capped at limit when positive.
func (r *FaceRepository) ListByPersonID(personID uint, limit int) ([]models.Face, error) {
	query := r.DB.
		Where("person_id = ? AND ignored = ? AND has_embedding = ?", personID, false, true).
		Order("confidence DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var faces []models.Face
	if err := query.Find(&faces).Error; err != nil {
		return nil, fmt.Errorf("failed to list faces for person ID %d: %w", personID, err)
	}
	return faces, nil
}

// CountUnassigned counts faces still eligible for clustering batches.
func (r *FaceRepository) CountUnassigned() (int64, error) {
	sqlDB, err := r.DB.DB()
	if err == nil {
		count, fastErr := database.CountUnassignedFaces(sqlDB)
		if fastErr == nil {
			return count, nil
		}
		log.Printf("Warning: fast-path unassigned face count failed, falling back to ORM: %v", fastErr)
	}

	var count int64
	err = r.DB.Model(&models.Face{}).
		Where("person_id IS NULL AND ignored = ? AND has_embedding = ?", false, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unassigned faces: %w", err)
	}
	return count, nil
}

// AssignPerson assigns a person to an existing face
func (r *FaceRepository) AssignPerson(faceID uint, personID uint) error {
	updates := map[string]interface{}{
		"person_id":  personID,
		"updated_at": time.Now().Unix(),
	}
	result := r.DB.Model(&models.Face{}).Where("id = ?", faceID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to assign face ID %d to person ID %d: %w", faceID, personID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BulkAssignPerson assigns all given faces to a person in one statement.
// Returns the number of rows affected.
func (r *FaceRepository) BulkAssignPerson(faceIDs []uint, personID uint) (int64, error) {
	if len(faceIDs) == 0 {
		return 0, nil
	}
	updates := map[string]interface{}{
		"person_id":  personID,
		"updated_at": time.Now().Unix(),
	}
	result := r.DB.Model(&models.Face{}).Where("id IN ?", faceIDs).Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk assign %d faces to person ID %d: %w", len(faceIDs), personID, result.Error)
	}
	return result.RowsAffected, nil
}

// UnassignPerson sets the PersonID of an existing face to NULL.
func (r *FaceRepository) UnassignPerson(faceID uint) error {
	updates := map[string]interface{}{
		"person_id":  gorm.Expr("NULL"),
		"updated_at": time.Now().Unix(),
	}
	result := r.DB.Model(&models.Face{}).Where("id = ?", faceID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to unassign face ID %d: %w", faceID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BulkDisable marks faces as ignored and clears any person assignment.
// Ignored faces are never returned by the unassigned query and can never
// be (re)assigned automatically.
func (r *FaceRepository) BulkDisable(faceIDs []uint) (int64, error) {
	if len(faceIDs) == 0 {
		return 0, nil
	}
	updates := map[string]interface{}{
		"ignored":    true,
		"person_id":  gorm.Expr("NULL"),
		"updated_at": time.Now().Unix(),
	}
	result := r.DB.Model(&models.Face{}).Where("id IN ?", faceIDs).Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk disable %d faces: %w", len(faceIDs), result.Error)
	}
	return result.RowsAffected, nil
}

// SetIgnored flips the ignored flag for one face; ignoring also clears the
// person assignment.
func (r *FaceRepository) SetIgnored(faceID uint, ignored bool) error {
	updates := map[string]interface{}{
		"ignored":    ignored,
		"updated_at": time.Now().Unix(),
	}
	if ignored {
		updates["person_id"] = gorm.Expr("NULL")
	}
	result := r.DB.Model(&models.Face{}).Where("id = ?", faceID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set ignored=%v on face ID %d: %w", ignored, faceID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
