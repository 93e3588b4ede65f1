package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ID prefixes, one per entity kind.
const (
	PrefixDJ       = "dj"
	PrefixEvent    = "evt"
	PrefixGuest    = "guest"
	PrefixRequest  = "req"
	PrefixVote     = "vote"
	PrefixLibrary  = "lib"
	PrefixDownload = "dl"
	PrefixContact  = "contact"
)

// NewID produces an opaque prefixed identifier: "<prefix>_" followed by the
// first 12 hex characters of a dashless random UUID.
func NewID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
