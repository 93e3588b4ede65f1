package services

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirectoryEntry is one browsable subdirectory.
type DirectoryEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// DirectoryListing is the folder-picker view of one directory.
type DirectoryListing struct {
	Current     string           `json:"current"`
	Parent      *string          `json:"parent"`
	Directories []DirectoryEntry `json:"directories"`
}

// ErrPermissionDenied reports an unreadable directory during browsing.
var ErrPermissionDenied = errors.New("permission denied")

// BrowseDirectory lists the non-hidden subdirectories of path, sorted by
// name, for the DJ console's folder picker. An empty path starts at the
// user's home directory.
func BrowseDirectory(path string) (*DirectoryListing, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		path = home
	}

	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, ErrPermissionDenied
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFolderNotFound
		}
		return nil, err
	}

	directories := make([]DirectoryEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		directories = append(directories, DirectoryEntry{
			Name: entry.Name(),
			Path: filepath.Join(resolved, entry.Name()),
		})
	}
	sort.Slice(directories, func(i, j int) bool {
		return directories[i].Name < directories[j].Name
	})

	listing := &DirectoryListing{
		Current:     resolved,
		Directories: directories,
	}
	if parent := filepath.Dir(resolved); parent != resolved {
		listing.Parent = &parent
	}

	return listing, nil
}
