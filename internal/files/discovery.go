// Package files provides filesystem discovery helpers for locating
// meter exports, most notably the newest download matching a name
// pattern.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileInfo describes one discovered file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// FindByPattern returns the files in dir whose names match the glob
// pattern. Directories and unreadable entries are skipped.
func FindByPattern(dir, pattern string) ([]FileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// Latest returns the most recently modified file from a list.
func Latest(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}
	latest := files[0]
	for _, f := range files[1:] {
		if f.ModTime.After(latest.ModTime) {
			latest = f
		}
	}
	return latest, true
}

// LatestMatching finds the newest file in dir matching the glob
// pattern. ok is false when nothing matches.
func LatestMatching(dir, pattern string) (FileInfo, bool, error) {
	files, err := FindByPattern(dir, pattern)
	if err != nil {
		return FileInfo{}, false, err
	}
	latest, ok := Latest(files)
	return latest, ok, nil
}
