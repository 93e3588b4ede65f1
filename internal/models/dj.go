package models

import (
	"time"

	"gorm.io/datatypes"
)

// DJ represents a DJ profile. The opaque ID doubles as the login credential,
// so it is never auto-incremented.
type DJ struct {
	ID           string         `gorm:"primaryKey;size:64" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	ContactEmail *string        `gorm:"size:255" json:"contact_email"`
	ContactPhone *string        `gorm:"size:64" json:"contact_phone"`
	LibraryPaths datatypes.JSON `gorm:"type:json" json:"library_paths"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	Events  []Event        `gorm:"foreignKey:DJID;constraint:OnDelete:CASCADE" json:"-"`
	Library []LibraryTrack `gorm:"foreignKey:DJID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name for DJ
func (DJ) TableName() string {
	return "djs"
}
