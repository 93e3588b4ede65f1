package services

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crowdqueue/crowdqueue/internal/models"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// newTestDB opens a throwaway sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.DJ{},
		&models.Event{},
		&models.Guest{},
		&models.Request{},
		&models.Vote{},
		&models.LibraryTrack{},
		&models.Download{},
		&models.Contact{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// quietLogger returns a logger that discards everything.
func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seedDJ(t *testing.T, db *gorm.DB) *models.DJ {
	t.Helper()
	dj := models.DJ{ID: utils.NewID(utils.PrefixDJ), Name: "Test DJ"}
	if err := db.Create(&dj).Error; err != nil {
		t.Fatalf("failed to seed DJ: %v", err)
	}
	return &dj
}

func seedEvent(t *testing.T, db *gorm.DB, djID string, active bool) *models.Event {
	t.Helper()
	event := models.Event{
		ID:       utils.NewID(utils.PrefixEvent),
		DJID:     djID,
		Name:     "Test Event",
		IsActive: active,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	if !active {
		// Create's default:true tag overrides the zero value, force it back.
		if err := db.Model(&event).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate event: %v", err)
		}
		event.IsActive = false
	}
	return &event
}

func seedGuest(t *testing.T, db *gorm.DB, eventID, name string) *models.Guest {
	t.Helper()
	guest := models.Guest{
		ID:          utils.NewID(utils.PrefixGuest),
		EventID:     eventID,
		DisplayName: name,
	}
	if err := db.Create(&guest).Error; err != nil {
		t.Fatalf("failed to seed guest: %v", err)
	}
	return &guest
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
