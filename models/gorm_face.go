package models

import (
	"math"

	"gorm.io/gorm"
)

// Face represents a single detected face occurrence, linked to a person
// once assigned. It corresponds to the 'faces' table. Detection and
// embedding extraction happen upstream; the record arrives with the
// embedding blob already populated (or absent).
type Face struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	PersonID      *uint          `gorm:"index" json:"person_id,omitempty"` // Nullable foreign key to people table
	Confidence    float64        `gorm:"not null;default:0" json:"confidence"`
	EmbeddingData []byte         `gorm:"column:embedding_data" json:"-"`                     // face embedding vector as BLOB
	HasEmbedding  bool           `gorm:"not null;default:false;index" json:"has_embedding"`  // denormalized for fast filtering
	Ignored       bool           `gorm:"not null;default:false;index" json:"ignored"`        // excluded from matching, clustering and centroids
	CreatedAt     int64          `gorm:"not null" json:"created_at"`                         // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt     int64          `gorm:"not null" json:"updated_at"`                         // Stored as INTEGER in SQLite, Unix timestamp
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Person *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"` // Belongs to Person
}

// TableName explicitly sets the table name for GORM.
func (Face) TableName() string {
	return "faces"
}

// GetEmbedding converts the BLOB data to []float32
func (f *Face) GetEmbedding() []float32 {
	return DecodeVectorBlob(f.EmbeddingData)
}

// SetEmbedding converts []float32 to BLOB data and keeps the
// HasEmbedding flag consistent with it
func (f *Face) SetEmbedding(embedding []float32) {
	f.EmbeddingData = EncodeVectorBlob(embedding)
	f.HasEmbedding = len(embedding) > 0
}

// DecodeVectorBlob converts a little-endian float32 BLOB to []float32.
// Returns nil for empty or truncated blobs.
func DecodeVectorBlob(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}

	vector := make([]float32, len(data)/4) // 4 bytes per float32
	for i := 0; i < len(vector); i++ {
		offset := i * 4
		bits := uint32(data[offset]) |
			uint32(data[offset+1])<<8 |
			uint32(data[offset+2])<<16 |
			uint32(data[offset+3])<<24
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// EncodeVectorBlob converts []float32 to a little-endian BLOB
func EncodeVectorBlob(vector []float32) []byte {
	if len(vector) == 0 {
		return nil
	}

	data := make([]byte, len(vector)*4) // 4 bytes per float32
	for i, val := range vector {
		offset := i * 4
		bits := math.Float32bits(val)
		data[offset] = byte(bits)
		data[offset+1] = byte(bits >> 8)
		data[offset+2] = byte(bits >> 16)
		data[offset+3] = byte(bits >> 24)
	}
	return data
}
