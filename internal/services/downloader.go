package services

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/metadata"
	"github.com/crowdqueue/crowdqueue/internal/models"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// Download states. In-memory while active; only terminal success is persisted.
const (
	StatusNotStarted  = "not_started"
	StatusDownloading = "downloading"
	StatusComplete    = "complete"
	StatusError       = "error"
	StatusCancelled   = "cancelled"
)

// Quality tiers derived from bitrate.
const (
	QualityHigh    = "high"
	QualityGood    = "good"
	QualityLow     = "low"
	QualityUnknown = "unknown"
)

// Progress is a point-in-time snapshot of one request's download.
type Progress struct {
	RequestID    string  `json:"request_id"`
	Status       string  `json:"status"`
	Progress     float64 `json:"progress"`
	Speed        string  `json:"speed,omitempty"`
	ETA          string  `json:"eta,omitempty"`
	Filename     string  `json:"filename,omitempty"`
	FilePath     string  `json:"file_path,omitempty"`
	Bitrate      *int    `json:"bitrate,omitempty"`
	QualityLevel string  `json:"quality_level,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// downloadState is the mutable per-request record in the active registry.
// Guarded by Downloader.mu.
type downloadState struct {
	requestID    string
	status       string
	progress     float64
	speed        string
	eta          string
	filename     string
	filePath     string
	bitrate      *int
	qualityLevel string
	lastError    string
	cmd          *exec.Cmd
	done         chan struct{}
}

// Downloader runs the external download tool and tracks per-request progress.
type Downloader struct {
	DB   *gorm.DB
	Meta metadata.Reader
	Log  *logrus.Logger
	Bin  string // external tool name or path, e.g. "yt-dlp"

	mu     sync.Mutex
	active map[string]*downloadState
}

// NewDownloader creates a Downloader around the given external tool.
func NewDownloader(db *gorm.DB, meta metadata.Reader, log *logrus.Logger, bin string) *Downloader {
	return &Downloader{
		DB:     db,
		Meta:   meta,
		Log:    log,
		Bin:    bin,
		active: make(map[string]*downloadState),
	}
}

// yt-dlp output, e.g.:
//
//	[download]  45.2% of 3.50MiB at 1.23MiB/s ETA 00:02
//	[download] Destination: /tmp/out/Song Title.webm
//	[ExtractAudio] Destination: /tmp/out/Song Title.mp3
var (
	progressRe = regexp.MustCompile(`\[download\]\s+([\d.]+)%\s+of\s+\S+\s+at\s+(\S+)\s+ETA\s+(\S+)`)
	destRe     = regexp.MustCompile(`\[download\]\s+Destination:\s+(.+)`)
	extractRe  = regexp.MustCompile(`\[ExtractAudio\]\s+Destination:\s+(.+)`)
)

var unsafePathRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Start launches a download for the request's source URL into outputDir and
// returns immediately; progress is reported via Progress(). Returns
// ErrDownloadInProgress if the request is already downloading.
func (d *Downloader) Start(requestID, outputDir string) error {
	var request models.Request
	if err := d.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	outputTemplate := filepath.Join(outputDir, "%(title)s.%(ext)s")
	args := []string{
		"-f", "bestaudio",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"--output", outputTemplate,
		"--newline",
		"--no-playlist",
		request.SourceURL,
	}

	d.mu.Lock()
	if current, ok := d.active[requestID]; ok && current.status == StatusDownloading {
		d.mu.Unlock()
		return ErrDownloadInProgress
	}

	cmd := exec.Command(d.Bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		d.mu.Unlock()
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		d.mu.Unlock()
		return err
	}
	if err := cmd.Start(); err != nil {
		d.mu.Unlock()
		return err
	}

	state := &downloadState{
		requestID: requestID,
		status:    StatusDownloading,
		cmd:       cmd,
		done:      make(chan struct{}),
	}
	d.active[requestID] = state
	d.mu.Unlock()

	d.Log.WithFields(logrus.Fields{
		"request_id": requestID,
		"output_dir": outputDir,
	}).Info("download started")

	go d.consumeOutput(state, bufio.NewScanner(stdout), bufio.NewScanner(stderr))
	go d.awaitCompletion(state, outputDir)

	return nil
}

// consumeOutput parses the tool's streamed output opportunistically. Lines
// that match nothing leave prior values unchanged.
func (d *Downloader) consumeOutput(state *downloadState, stdout, stderr *bufio.Scanner) {
	go func() {
		for stderr.Scan() {
			line := stderr.Text()
			if strings.Contains(line, "ERROR") {
				d.mu.Lock()
				state.lastError = strings.TrimSpace(line)
				d.mu.Unlock()
			}
		}
	}()

	for stdout.Scan() {
		line := stdout.Text()

		if m := progressRe.FindStringSubmatch(line); m != nil {
			pct, err := strconv.ParseFloat(m[1], 64)
			d.mu.Lock()
			if err == nil {
				state.progress = pct
			}
			state.speed = m[2]
			state.eta = m[3]
			d.mu.Unlock()
			continue
		}

		// ExtractAudio destination supersedes the raw download destination.
		if m := extractRe.FindStringSubmatch(line); m != nil {
			d.mu.Lock()
			state.filename = strings.TrimSpace(m[1])
			d.mu.Unlock()
			continue
		}
		if m := destRe.FindStringSubmatch(line); m != nil {
			d.mu.Lock()
			state.filename = strings.TrimSpace(m[1])
			d.mu.Unlock()
		}
	}
}

// awaitCompletion waits for the external process to exit and finalizes the
// state machine: persist a Download row on success, capture the error detail
// on failure, leave a cancellation as cancelled.
func (d *Downloader) awaitCompletion(state *downloadState, outputDir string) {
	defer close(state.done)

	err := state.cmd.Wait()

	d.mu.Lock()
	cancelled := state.status == StatusCancelled
	d.mu.Unlock()

	if cancelled {
		d.Log.WithField("request_id", state.requestID).Info("download cancelled")
		return
	}

	if err != nil {
		d.mu.Lock()
		state.status = StatusError
		if state.lastError == "" {
			state.lastError = fmt.Sprintf("%s exited: %v", d.Bin, err)
		}
		detail := state.lastError
		d.mu.Unlock()
		d.Log.WithField("request_id", state.requestID).WithError(err).Error("download failed: " + detail)
		return
	}

	d.finalize(state, outputDir)
}

// finalize resolves the produced file, classifies quality and persists the
// Download row. Metadata failures degrade to quality "unknown".
func (d *Downloader) finalize(state *downloadState, outputDir string) {
	d.mu.Lock()
	filePath := state.filename
	d.mu.Unlock()

	if filePath == "" {
		filePath = newestByExtension(outputDir, ".mp3")
	}

	var bitrate *int
	qualityLevel := QualityUnknown
	if filePath != "" {
		if info, err := d.Meta.ReadFile(filePath); err == nil && info.Bitrate > 0 {
			b := info.Bitrate
			bitrate = &b
			qualityLevel = ClassifyQuality(b)
		}
	}

	record := models.Download{
		ID:           utils.NewID(utils.PrefixDownload),
		RequestID:    state.requestID,
		FilePath:     filePath,
		QualityLevel: qualityLevel,
		Bitrate:      bitrate,
	}
	if err := d.DB.Create(&record).Error; err != nil {
		d.mu.Lock()
		state.status = StatusError
		state.lastError = "failed to persist download: " + err.Error()
		d.mu.Unlock()
		d.Log.WithError(err).WithField("request_id", state.requestID).Error("failed to persist download")
		return
	}

	d.mu.Lock()
	state.status = StatusComplete
	state.progress = 100
	state.filePath = filePath
	state.bitrate = bitrate
	state.qualityLevel = qualityLevel
	d.mu.Unlock()

	d.Log.WithFields(logrus.Fields{
		"request_id": state.requestID,
		"file":       filePath,
		"quality":    qualityLevel,
	}).Info("download complete")
}

// Progress reports the request's download state: the in-memory registry
// first, then the most recent persisted Download row, else not_started.
func (d *Downloader) Progress(requestID string) Progress {
	d.mu.Lock()
	if state, ok := d.active[requestID]; ok {
		p := Progress{
			RequestID:    requestID,
			Status:       state.status,
			Progress:     state.progress,
			Speed:        state.speed,
			ETA:          state.eta,
			Filename:     state.filename,
			FilePath:     state.filePath,
			Bitrate:      state.bitrate,
			QualityLevel: state.qualityLevel,
			Error:        state.lastError,
		}
		d.mu.Unlock()
		return p
	}
	d.mu.Unlock()

	var record models.Download
	err := d.DB.Where("request_id = ?", requestID).
		Order("downloaded_at DESC").
		First(&record).Error
	if err == nil {
		return Progress{
			RequestID:    requestID,
			Status:       StatusComplete,
			Progress:     100,
			FilePath:     record.FilePath,
			Bitrate:      record.Bitrate,
			QualityLevel: record.QualityLevel,
		}
	}

	return Progress{RequestID: requestID, Status: StatusNotStarted}
}

// Cancel signals termination to an active download. Only valid while
// downloading; anything else reports false. The state flips to cancelled
// immediately even though process teardown is asynchronous.
func (d *Downloader) Cancel(requestID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, ok := d.active[requestID]
	if !ok || state.status != StatusDownloading {
		return false
	}

	state.status = StatusCancelled
	if state.cmd != nil && state.cmd.Process != nil {
		_ = state.cmd.Process.Signal(syscall.SIGTERM)
	}
	return true
}

// Wait blocks until the request's active download finishes. Used by tests;
// returns immediately when nothing is active.
func (d *Downloader) Wait(requestID string) {
	d.mu.Lock()
	state, ok := d.active[requestID]
	d.mu.Unlock()
	if !ok {
		return
	}
	<-state.done
}

// ClassifyQuality maps a bitrate in kbps onto a quality tier.
func ClassifyQuality(bitrate int) string {
	switch {
	case bitrate >= 256:
		return QualityHigh
	case bitrate >= 192:
		return QualityGood
	default:
		return QualityLow
	}
}

// newestByExtension returns the most recently modified file in dir with the
// given extension, or "" when none exists.
func newestByExtension(dir, ext string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var newest string
	var newestMod int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = filepath.Join(dir, entry.Name())
			newestMod = mod
		}
	}
	return newest
}

// DefaultOutputDir derives the fallback download directory for an event:
// ~/Music/DJ_Events/<date>_<safe event name>/downloaded.
func DefaultOutputDir(event *models.Event) string {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.TempDir()
	}

	date := "undated"
	if event.EventDate != nil && *event.EventDate != "" {
		date = *event.EventDate
	}

	safeName := unsafePathRe.ReplaceAllString(event.Name, "_")
	return filepath.Join(home, "Music", "DJ_Events", date+"_"+safeName, "downloaded")
}
