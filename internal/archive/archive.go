// Package archive moves the persisted state aside so the next run starts
// with an empty store.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNothingToArchive is returned when the state path does not exist
var ErrNothingToArchive = errors.New("nothing to archive")

// ArchiveState moves the state database file or state directory at path
// into a sibling "archive" directory, with a timestamp in its name. It
// returns the new location. Stores must be closed before archiving.
func ArchiveState(path string, now time.Time) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNothingToArchive, path)
	} else if err != nil {
		return "", fmt.Errorf("failed to stat state: %w", err)
	}

	archiveDir := filepath.Join(filepath.Dir(path), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", name, now.Format("20060102-150405"), ext))

	// Two archives within the same second get a finer timestamp
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", name, now.Format("20060102-150405.000000"), ext))
	}
	if _, err := os.Stat(archivePath); err == nil {
		return "", fmt.Errorf("archive %s already exists", archivePath)
	}

	if err := os.Rename(path, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive state: %w", err)
	}
	return archivePath, nil
}

// List returns the archived entries next to path, oldest first
func List(path string) ([]string, error) {
	archiveDir := filepath.Join(filepath.Dir(path), "archive")
	entries, err := os.ReadDir(archiveDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	// ReadDir sorts by name and names sort by timestamp
	var out []string
	prefix := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "-"
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			out = append(out, filepath.Join(archiveDir, entry.Name()))
		}
	}
	return out, nil
}
