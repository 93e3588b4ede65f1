package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/crowdqueue/crowdqueue/internal/metadata"
	"github.com/crowdqueue/crowdqueue/internal/models"
)

// fakeReader serves canned metadata keyed by filename, erroring on anything
// listed as corrupt.
type fakeReader struct {
	corrupt map[string]bool
}

func (f fakeReader) ReadFile(path string) (*metadata.Info, error) {
	if f.corrupt[filepath.Base(path)] {
		return nil, errors.New("unreadable tags")
	}
	return &metadata.Info{
		Title:           "Title of " + filepath.Base(path),
		Artist:          "Artist",
		DurationSeconds: 180,
		Bitrate:         256,
	}, nil
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("audio"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestScanFolder(t *testing.T) {
	db := newTestDB(t)
	dj := seedDJ(t, db)

	dir := t.TempDir()
	writeFile(t, dir, "one.mp3")
	writeFile(t, dir, "two.flac")
	writeFile(t, dir, "three.wav")
	writeFile(t, dir, "four.m4a")
	writeFile(t, dir, "broken.mp3")
	writeFile(t, dir, "notes.txt") // not audio, not counted

	// Nested folders are walked too.
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "five.ogg")

	scanner := &Scanner{
		DB:   db,
		Meta: fakeReader{corrupt: map[string]bool{"broken.mp3": true}},
		Log:  quietLogger(),
	}

	result, err := scanner.ScanFolder(dj.ID, dir)
	if err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}

	if result.Total != 6 {
		t.Errorf("expected 6 audio files found, got %d", result.Total)
	}
	if result.Scanned != 5 {
		t.Errorf("expected 5 scanned, got %d", result.Scanned)
	}
	if result.Errors != 1 {
		t.Errorf("expected 1 error, got %d", result.Errors)
	}

	var count int64
	db.Model(&models.LibraryTrack{}).Where("dj_id = ?", dj.ID).Count(&count)
	if count != 5 {
		t.Errorf("expected 5 library rows, got %d", count)
	}
}

func TestScanFolderRescanNoDuplicates(t *testing.T) {
	db := newTestDB(t)
	dj := seedDJ(t, db)

	dir := t.TempDir()
	writeFile(t, dir, "one.mp3")
	writeFile(t, dir, "two.mp3")

	scanner := &Scanner{DB: db, Meta: fakeReader{}, Log: quietLogger()}

	if _, err := scanner.ScanFolder(dj.ID, dir); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}

	var first []models.LibraryTrack
	db.Where("dj_id = ?", dj.ID).Order("file_path").Find(&first)

	if _, err := scanner.ScanFolder(dj.ID, dir); err != nil {
		t.Fatalf("re-scan failed: %v", err)
	}

	var second []models.LibraryTrack
	db.Where("dj_id = ?", dj.ID).Order("file_path").Find(&second)

	if len(second) != 2 {
		t.Fatalf("re-scan should not duplicate rows, got %d", len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("re-scan should reuse row ids, %s became %s", first[i].ID, second[i].ID)
		}
	}
}

func TestScanFolderMissingFolder(t *testing.T) {
	db := newTestDB(t)
	dj := seedDJ(t, db)

	scanner := &Scanner{DB: db, Meta: fakeReader{}, Log: quietLogger()}
	_, err := scanner.ScanFolder(dj.ID, filepath.Join(t.TempDir(), "does-not-exist"))
	if !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("expected ErrFolderNotFound, got %v", err)
	}
}

func TestScanFolderUnknownDJ(t *testing.T) {
	db := newTestDB(t)
	scanner := &Scanner{DB: db, Meta: fakeReader{}, Log: quietLogger()}

	_, err := scanner.ScanFolder("dj_missing", t.TempDir())
	if !errors.Is(err, ErrDJNotFound) {
		t.Errorf("expected ErrDJNotFound, got %v", err)
	}
}
