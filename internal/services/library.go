package services

import (
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/models"
)

// ListLibrary returns a DJ's scanned tracks ordered by artist then title,
// optionally filtered by a substring search over title/artist/filename.
func ListLibrary(db *gorm.DB, djID, search string) ([]models.LibraryTrack, error) {
	query := db.Where("dj_id = ?", djID)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR artist LIKE ? OR filename LIKE ?", pattern, pattern, pattern)
	}

	var tracks []models.LibraryTrack
	if err := query.Order("artist, title").Find(&tracks).Error; err != nil {
		return nil, err
	}
	return tracks, nil
}

// ClearLibrary removes all of a DJ's scanned tracks and reports how many
// rows were deleted.
func ClearLibrary(db *gorm.DB, djID string) (int64, error) {
	result := db.Delete(&models.LibraryTrack{}, "dj_id = ?", djID)
	return result.RowsAffected, result.Error
}
