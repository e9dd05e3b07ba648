package entities

import (
	"github.com/google/uuid"
)

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	ColorCode string    `json:"color_code"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`

	Timestamp
}
