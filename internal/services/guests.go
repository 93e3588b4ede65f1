package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/models"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// CreateGuest lazily creates a guest for an active event with a generated
// display name. The returned ID is the guest's capability token.
func CreateGuest(db *gorm.DB, eventID string) (*models.Guest, error) {
	var event models.Event
	if err := db.Select("id", "is_active").First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !event.IsActive {
		return nil, ErrEventClosed
	}

	guest := models.Guest{
		ID:          utils.NewID(utils.PrefixGuest),
		EventID:     eventID,
		DisplayName: GenerateGuestName(),
	}
	if err := db.Create(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

// GetGuest looks up a guest by ID.
func GetGuest(db *gorm.DB, guestID string) (*models.Guest, error) {
	var guest models.Guest
	if err := db.First(&guest, "id = ?", guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	return &guest, nil
}

// RenameGuest updates a guest's display name.
func RenameGuest(db *gorm.DB, guestID, displayName string) (*models.Guest, error) {
	guest, err := GetGuest(db, guestID)
	if err != nil {
		return nil, err
	}

	if err := db.Model(guest).Update("display_name", displayName).Error; err != nil {
		return nil, err
	}
	guest.DisplayName = displayName
	return guest, nil
}
