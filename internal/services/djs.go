package services

import (
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/models"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// CreateDJInput carries the self-service profile creation fields.
type CreateDJInput struct {
	Name         string
	ContactEmail *string
	ContactPhone *string
}

// CreateDJ creates a new DJ profile. The returned ID is the only credential.
func CreateDJ(db *gorm.DB, in CreateDJInput) (*models.DJ, error) {
	dj := models.DJ{
		ID:           utils.NewID(utils.PrefixDJ),
		Name:         in.Name,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
	}
	if err := db.Create(&dj).Error; err != nil {
		return nil, err
	}
	return &dj, nil
}

// GetDJ looks up a DJ profile by its opaque ID.
func GetDJ(db *gorm.DB, djID string) (*models.DJ, error) {
	var dj models.DJ
	if err := db.First(&dj, "id = ?", djID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDJNotFound
		}
		return nil, err
	}
	return &dj, nil
}

// UpdateDJInput carries partial profile updates. Nil means "leave as is".
type UpdateDJInput struct {
	Name         *string
	ContactEmail *string
	ContactPhone *string
	LibraryPaths []string
}

// UpdateDJ applies a partial profile update.
func UpdateDJ(db *gorm.DB, djID string, in UpdateDJInput) (*models.DJ, error) {
	var dj models.DJ
	if err := db.First(&dj, "id = ?", djID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDJNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil && *in.Name != "" {
		updates["name"] = *in.Name
	}
	if in.ContactEmail != nil {
		updates["contact_email"] = nullable(*in.ContactEmail)
	}
	if in.ContactPhone != nil {
		updates["contact_phone"] = nullable(*in.ContactPhone)
	}
	if in.LibraryPaths != nil {
		encoded, err := json.Marshal(in.LibraryPaths)
		if err != nil {
			return nil, err
		}
		updates["library_paths"] = datatypes.JSON(encoded)
	}

	if len(updates) > 0 {
		if err := db.Model(&dj).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if err := db.First(&dj, "id = ?", djID).Error; err != nil {
		return nil, err
	}
	return &dj, nil
}
