// Package fileutil provides file system utility functions.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MIDIExtensions lists the accepted Standard MIDI File extensions.
var MIDIExtensions = []string{".mid", ".midi"}

// HasExtension reports whether path ends with one of exts.
// The comparison is case-insensitive, so "SONG.MID" matches ".mid".
func HasExtension(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// IsMIDIPath reports whether path carries a .mid or .midi extension.
func IsMIDIPath(path string) bool {
	return HasExtension(path, MIDIExtensions...)
}

// IsRegularFile reports whether path exists and is not a directory.
func IsRegularFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// FindFileCaseInsensitive searches dir for a file named filename, ignoring case.
//
// Example:
//
//	path, err := FindFileCaseInsensitive("/songs", "DrumVis.YAML")
//	// finds "drumvis.yaml", "DRUMVIS.YAML", ...
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	searchName := strings.ToLower(filename)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(entry.Name()) == searchName {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s)", filename, dir)
}
