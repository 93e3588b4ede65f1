package models

import "time"

// Request is a de-duplicated song request. The (event_id, source_url) unique
// index is the dedup key: concurrent submissions of the same URL race on this
// constraint instead of on an application-level check. VoteCount is a
// denormalized cache of the vote rows and is only ever adjusted inside the
// same transaction as a Vote insert or delete.
type Request struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	EventID         string    `gorm:"size:64;not null;index:idx_event_source_url,unique" json:"event_id"`
	Title           string    `gorm:"size:512;not null" json:"title"`
	Artist          *string   `gorm:"size:255" json:"artist"`
	Source          string    `gorm:"size:32;not null" json:"source"`
	SourceURL       string    `gorm:"size:1024;not null;index:idx_event_source_url,unique" json:"source_url"`
	ThumbnailURL    *string   `gorm:"size:1024" json:"thumbnail_url"`
	DurationSeconds *int      `json:"duration_seconds"`
	VoteCount       int       `gorm:"not null;default:0" json:"vote_count"`
	CreatedAt       time.Time `json:"created_at"`

	Votes     []Vote     `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"-"`
	Downloads []Download `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"-"`
}

// Vote is one guest's endorsement of a Request. At most one vote per
// (request_id, guest_id), enforced by the unique index.
type Vote struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	RequestID string    `gorm:"size:64;not null;index:idx_request_guest,unique" json:"request_id"`
	GuestID   string    `gorm:"size:64;not null;index:idx_request_guest,unique" json:"guest_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name for Request
func (Request) TableName() string {
	return "requests"
}

// TableName overrides the table name for Vote
func (Vote) TableName() string {
	return "votes"
}
