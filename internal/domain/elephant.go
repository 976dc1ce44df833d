package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Elephant is one cataloged image for a periodic-table element. BlobKey is
// the media-store deletion handle; deleting the row does not delete the
// object, both deletions must be issued.
type Elephant struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ElementSymbol string `gorm:"type:text;not null;index" json:"elementSymbol"`
	ImageURL      string `gorm:"type:text;not null" json:"imageUrl"`
	BlobKey       string `gorm:"type:text;not null" json:"blobKey"`
	Caption       string `gorm:"type:text;not null;default:''" json:"caption"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Elephant) TableName() string { return "elephant" }

func (e *Elephant) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
