package models

import "time"

// Event represents a single gig instance guests interact with via a shared
// link. Closing is one-way: once IsActive is false there is no reopen.
type Event struct {
	ID             string     `gorm:"primaryKey;size:64" json:"id"`
	DJID           string     `gorm:"size:64;not null;index" json:"dj_id"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	EventDate      *string    `gorm:"size:32" json:"event_date"`
	DownloadFolder *string    `gorm:"size:1024" json:"download_folder"`
	FooterText     *string    `json:"footer_text"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	ClosedAt       *time.Time `json:"closed_at"`
	CreatedAt      time.Time  `json:"created_at"`

	Requests []Request `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	Guests   []Guest   `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	Contacts []Contact `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}

// Guest represents an anonymous event participant. The ID is the only
// credential; the display name starts as a generated "Adjective Animal" pair.
type Guest struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	EventID     string    `gorm:"size:64;not null;index" json:"event_id"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Contact is an append-only message left by a guest after an event closed.
type Contact struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	EventID     string    `gorm:"size:64;not null;index" json:"event_id"`
	GuestName   string    `gorm:"size:255;not null" json:"guest_name"`
	ContactInfo string    `gorm:"size:255;not null" json:"contact_info"`
	Message     *string   `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides the table name for Event
func (Event) TableName() string {
	return "events"
}

// TableName overrides the table name for Guest
func (Guest) TableName() string {
	return "guests"
}

// TableName overrides the table name for Contact
func (Contact) TableName() string {
	return "contacts"
}
