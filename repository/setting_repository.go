package repository

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/torvik/lumengallery/models"
)

// SettingRepository handles persisted key/value configuration entries
type SettingRepository struct {
	DB *gorm.DB
}

// Ensure SettingRepository implements SettingRepositoryInterface
var _ SettingRepositoryInterface = (*SettingRepository)(nil)

// NewSettingRepository creates a new instance of SettingRepository
func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{DB: db}
}

// Get returns the raw value for a key
func (r *SettingRepository) Get(key string) (string, error) {
	var setting models.Setting
	err := r.DB.First(&setting, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return setting.Value, nil
}

// Set inserts or updates a setting value
func (r *SettingRepository) Set(key, value string) error {
	setting := models.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().Unix(),
	}
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// GetFloat parses the value for a key as float64, returning fallback when
// the key is missing or malformed.
func (r *SettingRepository) GetFloat(key string, fallback float64) float64 {
	raw, err := r.Get(key)
	if err != nil {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Warning: setting %s has non-numeric value %q, using fallback %v", key, raw, fallback)
		return fallback
	}
	return value
}
