package export

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"episodic/internal/fileutil"
	"episodic/internal/logging"
	"episodic/internal/services"
	"episodic/internal/store"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" or "csv" in any case.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", services.Wrap(services.ErrValidation, "export", "format", fmt.Sprintf("unsupported format %q (json or csv)", value), nil)
	}
}

// Record is one exported episode keyed by column name.
type Record map[string]any

// Options controls an export.
type Options struct {
	Format Format
	Fields []string
	Filter store.ExportFilter
}

// Exporter selects episodes from a store and encodes them.
type Exporter struct {
	store  *store.Store
	logger *slog.Logger
}

// NewExporter builds an exporter over st.
func NewExporter(st *store.Store, logger *slog.Logger) *Exporter {
	return &Exporter{store: st, logger: logging.NewComponentLogger(logger, "export")}
}

// Export encodes the selected episodes to w and returns how many were written.
func (e *Exporter) Export(ctx context.Context, opts Options, w io.Writer) (int, error) {
	fields, err := ValidateFields(opts.Fields)
	if err != nil {
		return 0, err
	}
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}

	episodes, err := e.store.SelectForExport(ctx, opts.Filter)
	if err != nil {
		return 0, services.Wrap(services.ErrService, "export", "select", "", err)
	}
	records := Records(episodes, fields)

	switch format {
	case FormatJSON:
		err = WriteJSON(w, fields, records)
	case FormatCSV:
		err = WriteCSV(w, fields, records)
	default:
		_, err = ParseFormat(string(format))
	}
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// ExportFile writes the export to path, creating parent directories. The
// file is replaced atomically.
func (e *Exporter) ExportFile(ctx context.Context, opts Options, path string) (int, error) {
	var count int
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		var err error
		count, err = e.Export(ctx, opts, w)
		return err
	})
	if err != nil {
		return 0, err
	}

	logging.WithContext(ctx, e.logger).Info("export written",
		logging.String(logging.FieldEventType, "export_complete"),
		logging.String("path", path),
		logging.String("format", string(cmp.Or(opts.Format, FormatJSON))),
		logging.Int("episodes", count),
	)
	return count, nil
}

// DefaultPath returns the timestamped export location under dir.
func DefaultPath(dir string, format Format, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("podcast_episodes_%s.%s", at.UTC().Format("20060102_150405"), format))
}

// Records projects episodes onto fields.
func Records(episodes []*store.Episode, fields []string) []Record {
	records := make([]Record, 0, len(episodes))
	for _, ep := range episodes {
		record := make(Record, len(fields))
		for _, name := range fields {
			if c, ok := lookupColumn(name); ok {
				record[name] = c.value(ep)
			}
		}
		records = append(records, record)
	}
	return records
}
