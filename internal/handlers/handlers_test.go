package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crowdqueue/crowdqueue/internal/handlers"
	"github.com/crowdqueue/crowdqueue/internal/metadata"
	"github.com/crowdqueue/crowdqueue/internal/models"
	"github.com/crowdqueue/crowdqueue/internal/services"
)

// setupTestDB creates a throwaway SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.DJ{},
		&models.Event{},
		&models.Guest{},
		&models.Request{},
		&models.Vote{},
		&models.LibraryTrack{},
		&models.Download{},
		&models.Contact{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// setupApp wires the routes under test against a fresh database
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	app := fiber.New()

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	downloader := services.NewDownloader(db, metadata.TagReader{}, quiet, "yt-dlp")

	djHandler := &handlers.DJHandler{DB: db}
	eventsHandler := &handlers.EventsHandler{DB: db}
	guestsHandler := &handlers.GuestsHandler{DB: db}
	requestsHandler := &handlers.RequestsHandler{DB: db}
	downloadsHandler := &handlers.DownloadsHandler{DB: db, Downloader: downloader}

	api := app.Group("/api")
	api.Post("/dj/create", djHandler.CreateDJ)
	api.Post("/dj/login", djHandler.Login)
	api.Post("/events", eventsHandler.CreateEvent)
	api.Put("/events/:id/close", eventsHandler.CloseEvent)
	api.Get("/events/:id", eventsHandler.GetEvent)
	api.Post("/guests", guestsHandler.CreateGuest)
	api.Put("/guests/:id/name", guestsHandler.RenameGuest)
	api.Post("/requests", requestsHandler.SubmitRequest)
	api.Get("/requests/event/:eventId", requestsHandler.ListEventRequests)
	api.Post("/requests/votes", requestsHandler.AddVote)
	api.Delete("/requests/:id/guest/:guestId", requestsHandler.GuestDeleteRequest)
	api.Post("/downloads/cancel/:requestId", downloadsHandler.CancelDownload)
	api.Get("/downloads/progress/:requestId", downloadsHandler.GetProgress)

	return app, db
}

func jsonRequest(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

// createEventFixture drives the API to produce a DJ, an event and one guest
func createEventFixture(t *testing.T, app *fiber.App) (djID, eventID, guestID string) {
	t.Helper()

	status, dj := jsonRequest(t, app, "POST", "/api/dj/create",
		map[string]interface{}{"name": "Test DJ"})
	if status != 201 {
		t.Fatalf("Expected status 201 creating DJ, got %d", status)
	}
	djID = dj["id"].(string)

	status, event := jsonRequest(t, app, "POST", "/api/events",
		map[string]interface{}{"dj_id": djID, "name": "Test Event"})
	if status != 201 {
		t.Fatalf("Expected status 201 creating event, got %d", status)
	}
	eventID = event["id"].(string)

	status, guest := jsonRequest(t, app, "POST", "/api/guests",
		map[string]interface{}{"event_id": eventID})
	if status != 201 {
		t.Fatalf("Expected status 201 creating guest, got %d", status)
	}
	guestID = guest["id"].(string)

	return djID, eventID, guestID
}

func TestCreateDJ(t *testing.T) {
	app, _ := setupApp(t)

	status, result := jsonRequest(t, app, "POST", "/api/dj/create",
		map[string]interface{}{"name": "DJ Test"})
	if status != 201 {
		t.Fatalf("Expected status 201, got %d", status)
	}

	id, _ := result["id"].(string)
	if !strings.HasPrefix(id, "dj_") {
		t.Errorf("Expected dj_ prefixed id, got %q", id)
	}
	if result["name"] != "DJ Test" {
		t.Errorf("Expected name to round-trip, got %v", result["name"])
	}
}

func TestCreateDJRequiresName(t *testing.T) {
	app, _ := setupApp(t)

	status, _ := jsonRequest(t, app, "POST", "/api/dj/create",
		map[string]interface{}{"name": "   "})
	if status != 400 {
		t.Errorf("Expected status 400 for blank name, got %d", status)
	}
}

func TestDJLoginUnknownID(t *testing.T) {
	app, _ := setupApp(t)

	status, _ := jsonRequest(t, app, "POST", "/api/dj/login",
		map[string]interface{}{"id": "dj_missing"})
	if status != 404 {
		t.Errorf("Expected status 404, got %d", status)
	}
}

func TestSubmitRequestLifecycle(t *testing.T) {
	app, _ := setupApp(t)
	_, eventID, guestID := createEventFixture(t, app)

	submission := map[string]interface{}{
		"event_id":   eventID,
		"guest_id":   guestID,
		"title":      "Test Song",
		"artist":     "Test Artist",
		"source_url": "https://youtube.com/watch?v=abc",
	}

	// First submission creates.
	status, created := jsonRequest(t, app, "POST", "/api/requests", submission)
	if status != 201 {
		t.Fatalf("Expected status 201, got %d", status)
	}
	if created["merged"] != false {
		t.Error("First submission should not be merged")
	}

	// A second guest submitting the same URL merges.
	status, guest2 := jsonRequest(t, app, "POST", "/api/guests",
		map[string]interface{}{"event_id": eventID})
	if status != 201 {
		t.Fatalf("Expected status 201 creating second guest, got %d", status)
	}
	submission["guest_id"] = guest2["id"]

	status, merged := jsonRequest(t, app, "POST", "/api/requests", submission)
	if status != 200 {
		t.Fatalf("Expected status 200 for merge, got %d", status)
	}
	if merged["merged"] != true {
		t.Error("Duplicate URL should merge")
	}
	request := merged["request"].(map[string]interface{})
	if request["vote_count"].(float64) != 2 {
		t.Errorf("Expected vote_count 2, got %v", request["vote_count"])
	}

	// Same guest again conflicts, carrying the current request state.
	status, conflict := jsonRequest(t, app, "POST", "/api/requests", submission)
	if status != 409 {
		t.Fatalf("Expected status 409, got %d", status)
	}
	if conflict["request"] == nil {
		t.Error("Conflict response should include the current request")
	}
}

func TestSubmitRequestAcceptsStringDuration(t *testing.T) {
	app, _ := setupApp(t)
	_, eventID, guestID := createEventFixture(t, app)

	status, created := jsonRequest(t, app, "POST", "/api/requests", map[string]interface{}{
		"event_id":         eventID,
		"guest_id":         guestID,
		"title":            "Test Song",
		"source_url":       "https://youtube.com/watch?v=abc",
		"duration_seconds": "245",
	})
	if status != 201 {
		t.Fatalf("Expected status 201, got %d", status)
	}
	request := created["request"].(map[string]interface{})
	if request["duration_seconds"].(float64) != 245 {
		t.Errorf("Expected duration 245, got %v", request["duration_seconds"])
	}
}

func TestSubmitRequestClosedEvent(t *testing.T) {
	app, _ := setupApp(t)
	_, eventID, guestID := createEventFixture(t, app)

	status, _ := jsonRequest(t, app, "PUT", "/api/events/"+eventID+"/close", nil)
	if status != 200 {
		t.Fatalf("Expected status 200 closing event, got %d", status)
	}

	status, _ = jsonRequest(t, app, "POST", "/api/requests", map[string]interface{}{
		"event_id":   eventID,
		"guest_id":   guestID,
		"title":      "Too Late",
		"source_url": "https://youtube.com/watch?v=late",
	})
	if status != 400 {
		t.Errorf("Expected status 400 for closed event, got %d", status)
	}
}

func TestCloseEventIdempotent(t *testing.T) {
	app, _ := setupApp(t)
	_, eventID, _ := createEventFixture(t, app)

	for i := 0; i < 2; i++ {
		status, event := jsonRequest(t, app, "PUT", "/api/events/"+eventID+"/close", nil)
		if status != 200 {
			t.Fatalf("Close attempt %d: expected status 200, got %d", i+1, status)
		}
		if event["is_active"] != false {
			t.Errorf("Close attempt %d: event should be inactive", i+1)
		}
	}
}

func TestGuestDeleteRequiresSoleVoter(t *testing.T) {
	app, _ := setupApp(t)
	_, eventID, guestID := createEventFixture(t, app)

	status, created := jsonRequest(t, app, "POST", "/api/requests", map[string]interface{}{
		"event_id":   eventID,
		"guest_id":   guestID,
		"title":      "Test Song",
		"source_url": "https://youtube.com/watch?v=abc",
	})
	if status != 201 {
		t.Fatalf("Expected status 201, got %d", status)
	}
	request := created["request"].(map[string]interface{})
	requestID := request["id"].(string)

	status, guest2 := jsonRequest(t, app, "POST", "/api/guests",
		map[string]interface{}{"event_id": eventID})
	if status != 201 {
		t.Fatalf("Expected status 201 creating second guest, got %d", status)
	}
	status, _ = jsonRequest(t, app, "POST", "/api/requests/votes", map[string]interface{}{
		"request_id": requestID,
		"guest_id":   guest2["id"],
	})
	if status != 200 {
		t.Fatalf("Expected status 200 voting, got %d", status)
	}

	status, _ = jsonRequest(t, app, "DELETE",
		"/api/requests/"+requestID+"/guest/"+guestID, nil)
	if status != 403 {
		t.Errorf("Expected status 403 with two voters, got %d", status)
	}
}

func TestCancelWithoutActiveDownload(t *testing.T) {
	app, _ := setupApp(t)

	status, result := jsonRequest(t, app, "POST", "/api/downloads/cancel/req_nothing", nil)
	if status != 400 {
		t.Errorf("Expected status 400 with nothing to cancel, got %d", status)
	}
	if result["ok"] != false {
		t.Errorf("Expected error envelope, got %v", result)
	}
}

func TestDownloadProgressNotStarted(t *testing.T) {
	app, _ := setupApp(t)

	status, result := jsonRequest(t, app, "GET", "/api/downloads/progress/req_nothing", nil)
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if result["status"] != "not_started" {
		t.Errorf("Expected not_started, got %v", result["status"])
	}
}

func TestListEventRequestsUnknownEvent(t *testing.T) {
	app, _ := setupApp(t)

	status, _ := jsonRequest(t, app, "GET", "/api/requests/event/evt_missing", nil)
	if status != 404 {
		t.Errorf("Expected status 404, got %d", status)
	}
}

func TestRenameGuest(t *testing.T) {
	app, _ := setupApp(t)
	_, _, guestID := createEventFixture(t, app)

	status, guest := jsonRequest(t, app, "PUT", "/api/guests/"+guestID+"/name",
		map[string]interface{}{"display_name": "Disco Dave"})
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if guest["display_name"] != "Disco Dave" {
		t.Errorf("Expected renamed guest, got %v", guest["display_name"])
	}

	status, _ = jsonRequest(t, app, "PUT", "/api/guests/"+guestID+"/name",
		map[string]interface{}{"display_name": "  "})
	if status != 400 {
		t.Errorf("Expected status 400 for blank name, got %d", status)
	}
}
