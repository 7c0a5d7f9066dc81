package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// SelectForExport returns episodes matching filter, newest published first.
// Episodes without a published date sort last.
func (s *Store) SelectForExport(ctx context.Context, filter ExportFilter) ([]*Episode, error) {
	var (
		clauses []string
		args    []any
	)
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, "cleaning_status IN ("+makePlaceholders(len(filter.Statuses))+")")
		for _, status := range filter.Statuses {
			args = append(args, string(status))
		}
	}
	if filter.Since != nil {
		clauses = append(clauses, "published_date >= ?")
		args = append(args, formatTime(*filter.Since))
	}
	if filter.TaggedOnly {
		clauses = append(clauses, "tags IS NOT NULL")
	}

	query := "SELECT " + episodeColumns + " FROM episodes"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY published_date IS NULL, published_date DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	episodes, err := s.queryMany(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select for export: %w", err)
	}
	return episodes, nil
}

// Stats aggregates episode counts by cleaning status.
func (s *Store) Stats(ctx context.Context) (Summary, error) {
	summary := Summary{ByStatus: make(map[CleaningStatus]int, len(CleaningStatuses))}
	for _, status := range CleaningStatuses {
		summary.ByStatus[status] = 0
	}

	rows, err := s.db.QueryContext(ctx, "SELECT cleaning_status, COUNT(1) FROM episodes GROUP BY cleaning_status")
	if err != nil {
		return Summary{}, fmt.Errorf("episode stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, fmt.Errorf("scan stats: %w", err)
		}
		summary.ByStatus[CleaningStatus(status)] = count
		summary.Total += count
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("iterate stats: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM episodes WHERE tags IS NOT NULL").Scan(&summary.Tagged); err != nil {
		return Summary{}, fmt.Errorf("count tagged: %w", err)
	}
	return summary, nil
}

// CheckHealth reports schema version and SQLite integrity for the open
// database. Problems are reported in Health.Error rather than returned.
func (s *Store) CheckHealth(ctx context.Context) Health {
	health := Health{Path: s.target.Path, Environment: s.target.Environment}
	if _, err := os.Stat(s.target.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.Error = "database file does not exist"
			return health
		}
		health.Error = fmt.Sprintf("stat database: %v", err)
		return health
	}
	health.Exists = true

	version, err := s.schemaVersion(ctx)
	if err != nil {
		health.Error = err.Error()
		return health
	}
	health.Readable = true
	health.SchemaVersion = version

	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&health.Integrity); err != nil {
		health.Error = fmt.Sprintf("integrity check: %v", err)
		return health
	}
	if health.Integrity != "ok" {
		health.Error = "integrity check failed: " + health.Integrity
	} else if version != schemaVersion {
		health.Error = fmt.Sprintf("schema version %d, expected %d", version, schemaVersion)
	}
	return health
}

// Healthy reports whether CheckHealth found no problems.
func (h Health) Healthy() bool {
	return h.Exists && h.Readable && h.Error == ""
}
