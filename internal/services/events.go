package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/models"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// EventWithStats is an event plus request/vote aggregates for the DJ console.
type EventWithStats struct {
	models.Event
	RequestCount int64 `json:"request_count"`
	TotalVotes   int64 `json:"total_votes"`
}

// CreateEventInput carries the fields a DJ sets when creating an event.
type CreateEventInput struct {
	DJID           string
	Name           string
	EventDate      *string
	DownloadFolder *string
}

// CreateEvent creates an active event owned by the DJ.
func CreateEvent(db *gorm.DB, in CreateEventInput) (*models.Event, error) {
	if err := djExists(db, in.DJID); err != nil {
		return nil, err
	}

	event := models.Event{
		ID:             utils.NewID(utils.PrefixEvent),
		DJID:           in.DJID,
		Name:           in.Name,
		EventDate:      in.EventDate,
		DownloadFolder: in.DownloadFolder,
		IsActive:       true,
	}
	if err := db.Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEvent returns one event with its aggregates.
func GetEvent(db *gorm.DB, eventID string) (*EventWithStats, error) {
	var event models.Event
	if err := db.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	stats := EventWithStats{Event: event}
	if err := eventStats(db, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListDJEvents returns all of a DJ's events, newest first, with aggregates.
func ListDJEvents(db *gorm.DB, djID string) ([]EventWithStats, error) {
	var events []models.Event
	if err := db.Where("dj_id = ?", djID).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}

	result := make([]EventWithStats, 0, len(events))
	for _, event := range events {
		stats := EventWithStats{Event: event}
		if err := eventStats(db, &stats); err != nil {
			return nil, err
		}
		result = append(result, stats)
	}
	return result, nil
}

// CloseEvent deactivates an event. Closing is terminal but idempotent:
// re-closing a closed event is a harmless no-op with the same result.
func CloseEvent(db *gorm.DB, eventID string) (*models.Event, error) {
	var event models.Event
	if err := db.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	if err := db.Model(&event).Updates(map[string]interface{}{
		"is_active": false,
		"closed_at": now,
	}).Error; err != nil {
		return nil, err
	}

	event.IsActive = false
	event.ClosedAt = &now
	return &event, nil
}

// UpdateEventInput carries the mutable event settings. Nil means "leave as is".
type UpdateEventInput struct {
	FooterText     *string
	DownloadFolder *string
}

// UpdateEvent applies partial settings updates to an event.
func UpdateEvent(db *gorm.DB, eventID string, in UpdateEventInput) (*models.Event, error) {
	var event models.Event
	if err := db.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.FooterText != nil {
		updates["footer_text"] = nullable(*in.FooterText)
	}
	if in.DownloadFolder != nil {
		updates["download_folder"] = nullable(*in.DownloadFolder)
	}

	if len(updates) > 0 {
		if err := db.Model(&event).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if err := db.First(&event, "id = ?", eventID).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes an event and everything it owns: guests, requests and
// their votes, downloads, contacts.
func DeleteEvent(db *gorm.DB, eventID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := eventExists(tx, eventID); err != nil {
			return err
		}

		var requestIDs []string
		if err := tx.Model(&models.Request{}).
			Where("event_id = ?", eventID).
			Pluck("id", &requestIDs).Error; err != nil {
			return err
		}
		if len(requestIDs) > 0 {
			if err := tx.Delete(&models.Vote{}, "request_id IN ?", requestIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Download{}, "request_id IN ?", requestIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Request{}, "id IN ?", requestIDs).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.Guest{}, "event_id = ?", eventID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Contact{}, "event_id = ?", eventID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, "id = ?", eventID).Error
	})
}

// eventStats fills the request/vote aggregates for one event.
func eventStats(db *gorm.DB, stats *EventWithStats) error {
	if err := db.Model(&models.Request{}).
		Where("event_id = ?", stats.ID).
		Count(&stats.RequestCount).Error; err != nil {
		return err
	}

	var total *int64
	if err := db.Model(&models.Request{}).
		Where("event_id = ?", stats.ID).
		Select("SUM(vote_count)").
		Scan(&total).Error; err != nil {
		return err
	}
	if total != nil {
		stats.TotalVotes = *total
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
