package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/metadata"
	"github.com/crowdqueue/crowdqueue/internal/models"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// supportedFormats is the fixed set of scannable audio extensions.
var supportedFormats = map[string]struct{}{
	".mp3":  {},
	".flac": {},
	".wav":  {},
	".m4a":  {},
	".ogg":  {},
	".aac":  {},
	".wma":  {},
}

// ScanResult summarizes one library scan.
type ScanResult struct {
	Total   int `json:"total"`
	Scanned int `json:"scanned"`
	Errors  int `json:"errors"`
}

// Scanner walks a DJ's music folders and upserts library tracks.
type Scanner struct {
	DB   *gorm.DB
	Meta metadata.Reader
	Log  *logrus.Logger
}

// ScanFolder recursively scans folderPath for supported audio files and
// upserts each into the DJ's library keyed by (dj_id, file_path). Per-file
// metadata failures are counted and skipped; they never abort the scan.
func (s *Scanner) ScanFolder(djID, folderPath string) (*ScanResult, error) {
	if err := djExists(s.DB, djID); err != nil {
		return nil, err
	}

	if _, err := os.Stat(folderPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folderPath)
	}

	files, err := collectAudioFiles(folderPath)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{Total: len(files)}

	for _, filePath := range files {
		if err := s.scanFile(djID, filePath); err != nil {
			s.Log.WithError(err).WithField("file", filePath).Warn("library scan: file skipped")
			result.Errors++
			continue
		}
		result.Scanned++
	}

	s.Log.WithFields(logrus.Fields{
		"dj_id":   djID,
		"folder":  folderPath,
		"total":   result.Total,
		"scanned": result.Scanned,
		"errors":  result.Errors,
	}).Info("library scan complete")

	return result, nil
}

// scanFile reads one file's metadata and upserts its library row, reusing the
// existing row id for a known (dj_id, file_path) pair.
func (s *Scanner) scanFile(djID, filePath string) error {
	info, err := s.Meta.ReadFile(filePath)
	if err != nil {
		return err
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	track := models.LibraryTrack{
		DJID:          djID,
		FilePath:      filePath,
		Filename:      filepath.Base(filePath),
		Title:         optional(info.Title),
		Artist:        optional(info.Artist),
		Album:         optional(info.Album),
		Format:        strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), "."),
		FileSizeBytes: stat.Size(),
		LastScanned:   time.Now().UTC(),
	}
	if info.DurationSeconds > 0 {
		track.DurationSeconds = &info.DurationSeconds
	}
	if info.Bitrate > 0 {
		track.Bitrate = &info.Bitrate
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.LibraryTrack
		err := tx.Where("dj_id = ? AND file_path = ?", djID, filePath).First(&existing).Error
		switch {
		case err == nil:
			track.ID = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			track.ID = utils.NewID(utils.PrefixLibrary)
		default:
			return err
		}
		return tx.Save(&track).Error
	})
}

// collectAudioFiles enumerates supported audio files under root.
func collectAudioFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := supportedFormats[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func djExists(db *gorm.DB, djID string) error {
	var count int64
	if err := db.Model(&models.DJ{}).Where("id = ?", djID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrDJNotFound
	}
	return nil
}
