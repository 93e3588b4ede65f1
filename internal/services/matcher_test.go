package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/models"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

func seedTrack(t *testing.T, db *gorm.DB, djID, filename string, title, artist *string) string {
	t.Helper()
	track := models.LibraryTrack{
		ID:          utils.NewID(utils.PrefixLibrary),
		DJID:        djID,
		FilePath:    "/music/" + filename,
		Filename:    filename,
		Title:       title,
		Artist:      artist,
		Format:      "mp3",
		LastScanned: time.Now().UTC(),
	}
	if err := db.Create(&track).Error; err != nil {
		t.Fatalf("failed to seed track: %v", err)
	}
	return track.ID
}

func TestNormalizeText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Bohemian Rhapsody", "bohemian rhapsody"},
		{"  AC/DC - T.N.T.!  ", "acdc  tnt"},
		{"", ""},
		{"Queen", "queen"},
	}
	for _, tc := range cases {
		if got := normalizeText(tc.in); got != tc.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCoreName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Bohemian Rhapsody (Official Video) | Queen", "Bohemian Rhapsody"},
		{"Song [Lyrics]", "Song"},
		{"Plain Title", "Plain Title"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := coreName(tc.in); got != tc.want {
			t.Errorf("coreName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatchRequestExact(t *testing.T) {
	db := newTestDB(t)
	dj := seedDJ(t, db)
	id := seedTrack(t, db, dj.ID, "queen_bohemian.mp3",
		strPtr("Bohemian Rhapsody"), strPtr("Queen"))

	matches, err := MatchRequest(db, dj.ID, "Bohemian Rhapsody", strPtr("Queen"))
	if err != nil {
		t.Fatalf("MatchRequest failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Confidence != 100 || matches[0].LibraryID != id {
		t.Errorf("expected exact match at confidence 100, got %+v", matches[0])
	}
}

func TestMatchRequestCoreTitleStripsDecoration(t *testing.T) {
	db := newTestDB(t)
	dj := seedDJ(t, db)
	seedTrack(t, db, dj.ID, "queen_bohemian.mp3",
		strPtr("Bohemian Rhapsody"), strPtr("Queen"))

	matches, err := MatchRequest(db, dj.ID,
		"Bohemian Rhapsody (Official Video) | Queen", strPtr("Queen"))
	if err != nil {
		t.Fatalf("MatchRequest failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Confidence != 100 {
		t.Fatalf("decorated title should still match exactly, got %+v", matches)
	}
}

func TestMatchRequestPartialArtist(t *testing.T) {
	db := newTestDB(t)
	dj := seedDJ(t, db)
	seedTrack(t, db, dj.ID, "queen_bohemian.mp3",
		strPtr("Bohemian Rhapsody"), strPtr("Queen Official"))

	matches, err := MatchRequest(db, dj.ID, "Bohemian Rhapsody", strPtr("Queen"))
	if err != nil {
		t.Fatalf("MatchRequest failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Confidence != 80 {
		t.Fatalf("expected partial match at confidence 80, got %+v", matches)
	}
}

func TestMatchRequestTitleOnly(t *testing.T) {
	db := newTestDB(t)
	dj := seedDJ(t, db)
	seedTrack(t, db, dj.ID, "cover.mp3",
		strPtr("Bohemian Rhapsody"), strPtr("Some Cover Band"))

	matches, err := MatchRequest(db, dj.ID, "Bohemian Rhapsody", strPtr("Queen"))
	if err != nil {
		t.Fatalf("MatchRequest failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Confidence != 50 {
		t.Fatalf("expected title-only match at confidence 50, got %+v", matches)
	}
}

func TestMatchRequestFilenameFallback(t *testing.T) {
	db := newTestDB(t)
	dj := seedDJ(t, db)
	// No tags at all, the filename is the only evidence.
	seedTrack(t, db, dj.ID, "Queen - Bohemian Rhapsody.mp3", nil, nil)

	matches, err := MatchRequest(db, dj.ID, "Bohemian Rhapsody", strPtr("Queen"))
	if err != nil {
		t.Fatalf("MatchRequest failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Confidence != 40 {
		t.Fatalf("expected filename match at confidence 40, got %+v", matches)
	}
}

func TestMatchRequestOrderingAndCap(t *testing.T) {
	db := newTestDB(t)
	dj := seedDJ(t, db)

	seedTrack(t, db, dj.ID, "exact.mp3", strPtr("Song Name"), strPtr("Artist"))
	seedTrack(t, db, dj.ID, "titleonly.mp3", strPtr("Song Name"), strPtr("Other"))
	seedTrack(t, db, dj.ID, "Artist - Song Name.mp3", nil, nil)
	seedTrack(t, db, dj.ID, "another Song Name file.mp3", nil, nil)

	matches, err := MatchRequest(db, dj.ID, "Song Name", strPtr("Artist"))
	if err != nil {
		t.Fatalf("MatchRequest failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected matches capped at 3, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Confidence > matches[i-1].Confidence {
			t.Errorf("matches out of confidence order: %+v", matches)
		}
	}
	if matches[0].Confidence != 100 {
		t.Errorf("best match should be the exact one, got %+v", matches[0])
	}
}

func TestMatchRequestNoMatch(t *testing.T) {
	db := newTestDB(t)
	dj := seedDJ(t, db)
	seedTrack(t, db, dj.ID, "unrelated.mp3", strPtr("Completely Different"), strPtr("Nobody"))

	matches, err := MatchRequest(db, dj.ID, "Bohemian Rhapsody", strPtr("Queen"))
	if err != nil {
		t.Fatalf("MatchRequest failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %+v", matches)
	}
}

func TestMatchForRequestResolvesDJ(t *testing.T) {
	db := newTestDB(t)
	dj := seedDJ(t, db)
	event := seedEvent(t, db, dj.ID, true)
	guest := seedGuest(t, db, event.ID, "Brave Fox")

	seedTrack(t, db, dj.ID, "queen_bohemian.mp3",
		strPtr("Bohemian Rhapsody"), strPtr("Queen"))

	created, err := SubmitRequest(db, SubmitInput{
		EventID:   event.ID,
		GuestID:   guest.ID,
		Title:     "Bohemian Rhapsody",
		Artist:    strPtr("Queen"),
		Source:    "youtube",
		SourceURL: "https://youtube.com/watch?v=abc",
	})
	if err != nil {
		t.Fatalf("submission failed: %v", err)
	}

	request, matches, err := MatchForRequest(db, created.Request.ID)
	if err != nil {
		t.Fatalf("MatchForRequest failed: %v", err)
	}
	if request.ID != created.Request.ID {
		t.Errorf("wrong request returned: %s", request.ID)
	}
	if len(matches) != 1 || matches[0].Confidence != 100 {
		t.Fatalf("expected the DJ's library to match, got %+v", matches)
	}
}
