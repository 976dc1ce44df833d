package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Story is generated prose tied to one elephant. GenMeta records how the
// content was produced (model, prompt fingerprint); empty for hand-written
// stories.
type Story struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ElephantID uuid.UUID      `gorm:"type:uuid;not null;index" json:"elephantId"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	GenMeta    datatypes.JSON `gorm:"type:jsonb" json:"genMeta,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (Story) TableName() string { return "story" }

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
