package services

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/models"
)

// Match is one scored library candidate for a request.
type Match struct {
	LibraryID       string  `json:"library_id"`
	FilePath        string  `json:"file_path"`
	Filename        string  `json:"filename"`
	Title           *string `json:"title"`
	Artist          *string `json:"artist"`
	Album           *string `json:"album"`
	DurationSeconds *int    `json:"duration_seconds"`
	Bitrate         *int    `json:"bitrate"`
	Confidence      int     `json:"confidence"`
	Reason          string  `json:"reason"`
}

// Confidence tiers. Fixed product decision, not tunable.
const (
	confidenceExact        = 100
	confidencePartialBoth  = 80
	confidenceTitleOnly    = 50
	confidenceFilename     = 40
	confidencePartialTitle = 30
)

// weakMatchMinTitleLength guards the weakest tier against trivially short
// titles matching everything.
const weakMatchMinTitleLength = 3

// maxMatches caps the candidate list returned to the DJ console.
const maxMatches = 3

var (
	nonAlnumRe  = regexp.MustCompile(`[^a-z0-9\s]+`)
	bracketedRe = regexp.MustCompile(`[\(\[].*?[\)\]]`)
)

// normalizeText lower-cases, strips everything outside [a-z0-9 whitespace],
// and trims.
func normalizeText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(strings.ToLower(s), ""))
}

// coreName derives the "core title": the segment before the first " | "
// delimiter with parenthesized/bracketed suffixes like "(Official Video)" or
// "[Lyrics]" stripped.
func coreName(s string) string {
	if s == "" {
		return s
	}
	core := strings.SplitN(s, " | ", 2)[0]
	return strings.TrimSpace(bracketedRe.ReplaceAllString(core, ""))
}

// MatchRequest scores the DJ's library tracks against a requested title and
// artist, returning at most three candidates in confidence order. Missing
// metadata never errors; it just doesn't match.
func MatchRequest(db *gorm.DB, djID, requestTitle string, requestArtist *string) ([]Match, error) {
	var library []models.LibraryTrack
	if err := db.Where("dj_id = ?", djID).Find(&library).Error; err != nil {
		return nil, err
	}

	normTitle := normalizeText(requestTitle)
	coreTitle := normalizeText(coreName(requestTitle))
	normArtist := ""
	if requestArtist != nil {
		normArtist = normalizeText(*requestArtist)
	}

	matches := make([]Match, 0, maxMatches)
	for _, track := range library {
		confidence, reason := scoreTrack(track, normTitle, coreTitle, normArtist)
		if confidence == 0 {
			continue
		}
		matches = append(matches, Match{
			LibraryID:       track.ID,
			FilePath:        track.FilePath,
			Filename:        track.Filename,
			Title:           track.Title,
			Artist:          track.Artist,
			Album:           track.Album,
			DurationSeconds: track.DurationSeconds,
			Bitrate:         track.Bitrate,
			Confidence:      confidence,
			Reason:          reason,
		})
	}

	// Stable sort: ties keep scan order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}

	return matches, nil
}

// scoreTrack evaluates the tiers in strict precedence; the first condition
// that holds wins, there is no score accumulation.
func scoreTrack(track models.LibraryTrack, normTitle, coreTitle, normArtist string) (int, string) {
	trackTitle := normalizeText(deref(track.Title))
	trackArtist := normalizeText(deref(track.Artist))
	trackFilename := normalizeText(track.Filename)

	titleEq := func(t string) bool {
		if t == normTitle {
			return true
		}
		return coreTitle != "" && coreTitle != normTitle && t == coreTitle
	}
	titleIncludes := func(a, b string) bool {
		return strings.Contains(a, b) || strings.Contains(b, a)
	}

	switch {
	case trackTitle != "" && titleEq(trackTitle) && trackArtist != "" && trackArtist == normArtist:
		return confidenceExact, "Exact title and artist match"

	case trackTitle != "" && trackArtist != "" && normArtist != "" &&
		(titleIncludes(trackTitle, normTitle) || (coreTitle != "" && titleIncludes(trackTitle, coreTitle))) &&
		titleIncludes(trackArtist, normArtist):
		return confidencePartialBoth, "Partial title and artist match"

	case trackTitle != "" && titleEq(trackTitle):
		return confidenceTitleOnly, "Title match (no artist match)"

	case trackFilename != "" && normTitle != "" &&
		(strings.Contains(trackFilename, normTitle) ||
			(coreTitle != "" && strings.Contains(trackFilename, coreTitle))):
		return confidenceFilename, "Filename contains title"

	case trackTitle != "" && normTitle != "" &&
		(titleIncludes(trackTitle, normTitle) ||
			(len(coreTitle) >= weakMatchMinTitleLength && titleIncludes(trackTitle, coreTitle))) &&
		(len(normTitle) >= weakMatchMinTitleLength || len(coreTitle) >= weakMatchMinTitleLength):
		return confidencePartialTitle, "Partial title match"
	}

	return 0, ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MatchForRequest resolves the DJ owning a request's event and matches the
// request against that DJ's library.
func MatchForRequest(db *gorm.DB, requestID string) (*models.Request, []Match, error) {
	var request models.Request
	if err := db.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRequestNotFound
		}
		return nil, nil, err
	}

	var event models.Event
	if err := db.Select("id", "dj_id").First(&event, "id = ?", request.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, err
	}

	matches, err := MatchRequest(db, event.DJID, request.Title, request.Artist)
	if err != nil {
		return nil, nil, err
	}
	return &request, matches, nil
}
