package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/labreport-import/constants"
)

// SkippedFile is a path the walk could not read.
type SkippedFile struct {
	Path string
	Err  string
}

type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// ScanDirectory walks root and returns the importable report files in
// lexical order. Unreadable entries are reported and the walk continues.
func ScanDirectory(root string, skipHidden bool) ([]string, []SkippedFile, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, errors.New("root path is required")
	}

	var (
		paths   []string
		skipped []SkippedFile
		stats   DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			skipped = append(skipped, SkippedFile{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, skipped, stats, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(paths)
	return paths, skipped, stats, nil
}

// AllowedExt checks if a file extension is importable.
func AllowedExt(ext string) bool {
	return constants.IsAllowedExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
