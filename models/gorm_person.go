package models

// Person represents a named cluster of faces believed to be the same
// individual. It corresponds to the 'people' table. Persons are created
// either manually through the admin surface or automatically by the
// clustering engine (auto-created persons start unconfirmed).
type Person struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	Confirmed    bool   `gorm:"not null;default:false" json:"confirmed"`
	CentroidData []byte `gorm:"column:centroid_data" json:"-"` // mean of normalized member embeddings as BLOB, nullable
	CreatedAt    int64  `gorm:"not null" json:"created_at"`    // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt    int64  `gorm:"not null" json:"updated_at"`    // Stored as INTEGER in SQLite, Unix timestamp

	// omitempty hides faces when they are not preloaded
	Faces []Face `gorm:"foreignKey:PersonID;constraint:OnDelete:SET NULL" json:"faces,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "people"
}

// GetCentroid converts the centroid BLOB to []float32, nil when unset
func (p *Person) GetCentroid() []float32 {
	return DecodeVectorBlob(p.CentroidData)
}

// SetCentroid converts []float32 to BLOB data; nil clears the centroid
func (p *Person) SetCentroid(centroid []float32) {
	p.CentroidData = EncodeVectorBlob(centroid)
}
