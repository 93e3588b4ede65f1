package services

import (
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/models"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// CreateContactInput carries one contact form submission.
type CreateContactInput struct {
	EventID     string
	GuestName   string
	ContactInfo string
	Message     *string
}

// CreateContact records a message left after an event closed. Append-only.
func CreateContact(db *gorm.DB, in CreateContactInput) (*models.Contact, error) {
	if err := eventExists(db, in.EventID); err != nil {
		return nil, err
	}

	contact := models.Contact{
		ID:          utils.NewID(utils.PrefixContact),
		EventID:     in.EventID,
		GuestName:   in.GuestName,
		ContactInfo: in.ContactInfo,
		Message:     in.Message,
	}
	if err := db.Create(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// ListEventContacts returns an event's contact messages, newest first.
func ListEventContacts(db *gorm.DB, eventID string) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := db.Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}
