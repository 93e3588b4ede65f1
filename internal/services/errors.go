package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/models"
)

// Sentinel errors surfaced to handlers. Handlers map these onto HTTP statuses;
// anything else is an internal fault and reported generically.
var (
	ErrDJNotFound      = errors.New("dj not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrGuestNotFound   = errors.New("guest not found")
	ErrRequestNotFound = errors.New("request not found")
	ErrVoteNotFound    = errors.New("vote not found")
	ErrEventClosed     = errors.New("event is closed")
	ErrNotSoleVoter    = errors.New("guest is not the sole voter")
	ErrFolderNotFound  = errors.New("folder not found")

	// ErrDownloadInProgress is returned when a download is started for a
	// request that is already downloading.
	ErrDownloadInProgress = errors.New("download already in progress")
)

// AlreadyVotedError reports a duplicate vote. It carries the current request
// state so the caller can reconcile its UI.
type AlreadyVotedError struct {
	Request models.Request
}

func (e *AlreadyVotedError) Error() string {
	return "already voted for this request"
}

// isUniqueViolation reports whether err is a store-level uniqueness
// constraint failure. GORM's error translation covers most drivers; the
// string check catches sqlite messages that slip through untranslated.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isLockContention reports whether err is a transient sqlite write-lock
// failure. A deferred transaction that upgrades to a write after another
// connection committed gets SQLITE_BUSY immediately, bypassing busy_timeout,
// so callers must retry the whole transaction.
func isLockContention(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
