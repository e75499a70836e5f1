package repository

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/facette/natsort"
	"gorm.io/gorm"

	"github.com/torvik/lumengallery/models"
)

// PersonRepository handles database operations for Person entities
type PersonRepository struct {
	DB *gorm.DB
}

// Ensure PersonRepository implements PersonRepositoryInterface
var _ PersonRepositoryInterface = (*PersonRepository)(nil)

// NewPersonRepository creates a new instance of PersonRepository
func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{DB: db}
}

// Create creates a new person record in the database
func (r *PersonRepository) Create(person *models.Person) error {
	now := time.Now().Unix()
	if person.CreatedAt == 0 {
		person.CreatedAt = now
	}
	if person.UpdatedAt == 0 {
		person.UpdatedAt = now
	}

	err := r.DB.Create(person).Error
	if err != nil {
		return fmt.Errorf("failed to create person %s: %w", person.Name, err)
	}
	return nil
}

// GetByID retrieves a person by their ID
func (r *PersonRepository) GetByID(id uint) (*models.Person, error) {
	var person models.Person
	err := r.DB.First(&person, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by ID %d: %w", id, err)
	}
	return &person, nil
}

// ListAll retrieves all people in natural name order, so auto-generated
// names like "Person 2" and "Person 10" sort the way humans expect.
func (r *PersonRepository) ListAll() ([]models.Person, error) {
	var people []models.Person
	err := r.DB.Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}

	sort.SliceStable(people, func(i, j int) bool {
		return natsort.Compare(people[i].Name, people[j].Name)
	})
	return people, nil
}

// ListWithCentroids retrieves only persons that currently have a centroid,
// the candidate set the assignment engine matches against.
func (r *PersonRepository) ListWithCentroids() ([]models.Person, error) {
	var people []models.Person
	err := r.DB.Where("centroid_data IS NOT NULL").Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list people with centroids: %w", err)
	}
	return people, nil
}

// Update updates an existing person's mutable details
func (r *PersonRepository) Update(person *models.Person) error {
	person.UpdatedAt = time.Now().Unix()
	result := r.DB.Model(&models.Person{ID: person.ID}).Updates(map[string]interface{}{
		"name":       person.Name,
		"confirmed":  person.Confirmed,
		"updated_at": person.UpdatedAt,
	})

	if result.Error != nil {
		return fmt.Errorf("failed to update person ID %d: %w", person.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateCentroid persists a freshly recomputed centroid; nil clears it.
// Recomputation is always from current face membership, never an
// incremental patch, so concurrent writers resolve last-writer-wins.
func (r *PersonRepository) UpdateCentroid(personID uint, centroid []float32) error {
	updates := map[string]interface{}{
		"centroid_data": models.EncodeVectorBlob(centroid),
		"updated_at":    time.Now().Unix(),
	}
	if len(centroid) == 0 {
		updates["centroid_data"] = gorm.Expr("NULL")
	}
	result := r.DB.Model(&models.Person{}).Where("id = ?", personID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update centroid for person ID %d: %w", personID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a person by their ID; member faces fall back to
// unassigned via the FK's SET NULL.
func (r *PersonRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Person{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete person ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
