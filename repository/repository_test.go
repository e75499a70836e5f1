package repository

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/torvik/lumengallery/models"
)

// setupTestDB opens a per-test in-memory SQLite database. The named shared
// cache keeps every pooled connection on the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Person{}, &models.Face{}, &models.Setting{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestFace(t *testing.T, repo *FaceRepository, embedding []float32, confidence float64, personID *uint) *models.Face {
	t.Helper()
	face := &models.Face{Confidence: confidence, PersonID: personID}
	face.SetEmbedding(embedding)
	if err := repo.Create(face); err != nil {
		t.Fatalf("failed to create test face: %v", err)
	}
	return face
}

func createTestPerson(t *testing.T, repo *PersonRepository, name string) *models.Person {
	t.Helper()
	person := &models.Person{Name: name}
	if err := repo.Create(person); err != nil {
		t.Fatalf("failed to create test person: %v", err)
	}
	return person
}
