// Package metadata reads embedded audio metadata from local files.
package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

// Info holds best-effort metadata for a single audio file. Zero values mean
// the field could not be determined.
type Info struct {
	Title           string
	Artist          string
	Album           string
	DurationSeconds int
	Bitrate         int // kbps
}

// Reader extracts metadata from an audio file on disk.
type Reader interface {
	ReadFile(path string) (*Info, error)
}

// TagReader is the default Reader. Tags come from the embedded metadata
// (ID3v1/v2, MP4, FLAC/OGG vorbis comments); duration and bitrate are decoded
// from the MP3 frame stream where the container is MP3, and left unknown
// otherwise.
type TagReader struct{}

// ReadFile implements Reader.
func (TagReader) ReadFile(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
	}

	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		// Decode failures here only lose duration/bitrate, not the tags.
		if dur, rate, err := scanMP3Frames(path); err == nil {
			info.DurationSeconds = dur
			info.Bitrate = rate
		}
	}

	return info, nil
}

// scanMP3Frames walks the MP3 frame stream accumulating play time and bits,
// returning the total duration in seconds and the average bitrate in kbps.
func scanMP3Frames(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	dec := mp3.NewDecoder(f)

	var frame mp3.Frame
	var skipped int
	var seconds float64
	var bits int64

	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			break
		}
		seconds += frame.Duration().Seconds()
		bits += int64(frame.Size()) * 8
	}

	if seconds <= 0 {
		return 0, 0, errNoFrames
	}

	kbps := int(float64(bits) / seconds / 1000)
	return int(seconds + 0.5), kbps, nil
}

var errNoFrames = errors.New("no mp3 frames decoded")
