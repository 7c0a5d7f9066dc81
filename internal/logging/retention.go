package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PruneOldFiles removes files in dir whose names match pattern and whose
// modification time is older than retentionDays. The active path, when set,
// is never removed. A retentionDays value of 0 disables pruning. It returns
// the number of files removed.
func PruneOldFiles(logger *slog.Logger, retentionDays int, dir, pattern, active string) int {
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	if active != "" {
		if abs, err := filepath.Abs(active); err == nil {
			active = abs
		}
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matched, err := filepath.Match(pattern, entry.Name()); err != nil || !matched {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if path == active {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "retention remove failed; file remains", "retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions on the data directory"),
				String(FieldImpact, "old file remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("old file pruned", String("path", path), String(FieldEventType, "file_pruned"))
		}
	}
	return removed
}
