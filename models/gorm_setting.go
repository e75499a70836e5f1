package models

// Setting is a persisted key/value configuration entry.
// It corresponds to the 'settings' table.
type Setting struct {
	Key       string `gorm:"primaryKey" json:"key"`
	Value     string `gorm:"not null" json:"value"`
	UpdatedAt int64  `gorm:"not null" json:"updated_at"` // Stored as INTEGER in SQLite, Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Setting) TableName() string {
	return "settings"
}

// Setting keys used by the face clustering pipeline.
const (
	SettingFaceSimilarityThreshold = "face_similarity_threshold"
)
