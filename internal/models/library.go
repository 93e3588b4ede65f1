package models

import "time"

// LibraryTrack is a locally scanned audio file belonging to a DJ. Re-scanning
// a known (dj_id, file_path) pair reuses the row instead of duplicating it.
type LibraryTrack struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	DJID            string    `gorm:"size:64;not null;index:idx_dj_file_path,unique" json:"dj_id"`
	FilePath        string    `gorm:"size:1024;not null;index:idx_dj_file_path,unique" json:"file_path"`
	Filename        string    `gorm:"size:512;not null" json:"filename"`
	Title           *string   `gorm:"size:512" json:"title"`
	Artist          *string   `gorm:"size:255" json:"artist"`
	Album           *string   `gorm:"size:255" json:"album"`
	DurationSeconds *int      `json:"duration_seconds"`
	Format          string    `gorm:"size:16;not null" json:"format"`
	Bitrate         *int      `json:"bitrate"`
	FileSizeBytes   int64     `json:"file_size_bytes"`
	LastScanned     time.Time `json:"last_scanned"`
}

// Download records a completed download for a request. Append-only; the most
// recent row answers "is this request downloaded".
type Download struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	RequestID    string    `gorm:"size:64;not null;index" json:"request_id"`
	FilePath     string    `gorm:"size:1024;not null" json:"file_path"`
	QualityLevel string    `gorm:"size:16;not null;default:unknown" json:"quality_level"`
	Bitrate      *int      `json:"bitrate"`
	DownloadedAt time.Time `gorm:"autoCreateTime" json:"downloaded_at"`
}

// TableName overrides the table name for LibraryTrack
func (LibraryTrack) TableName() string {
	return "library"
}

// TableName overrides the table name for Download
func (Download) TableName() string {
	return "downloads"
}
