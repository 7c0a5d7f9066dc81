package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"episodic/internal/fileutil"
	"episodic/internal/logging"
	"episodic/internal/services"
	"episodic/internal/store"
	"episodic/internal/taxonomy"
)

const reportTimestampLayout = "20060102_150405"

// Options controls which episodes are audited.
type Options struct {
	// IncludeUntagged audits episodes without tags as an empty tag set, so
	// each one reports its missing labels.
	IncludeUntagged bool
}

// EpisodeResult lists the violations found for one episode.
type EpisodeResult struct {
	EpisodeID  int64                `json:"episode_id"`
	Title      string               `json:"title"`
	Tags       []string             `json:"tags"`
	Violations []taxonomy.Violation `json:"violations"`
}

// Report is the serialized audit output.
type Report struct {
	GeneratedAt     time.Time       `json:"generated_at"`
	Environment     string          `json:"environment"`
	RunID           string          `json:"run_id,omitempty"`
	TaxonomyVersion string          `json:"taxonomy_version"`
	TotalEpisodes   int             `json:"total_episodes"`
	Audited         int             `json:"audited"`
	TotalIssues     int             `json:"total_issues"`
	Results         []EpisodeResult `json:"results"`
}

// Auditor validates every stored episode.
type Auditor struct {
	store     *store.Store
	validator *taxonomy.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuditor builds an auditor over st.
func NewAuditor(st *store.Store, validator *taxonomy.Validator, logger *slog.Logger) *Auditor {
	if validator == nil {
		validator = taxonomy.NewValidator(nil)
	}
	return &Auditor{
		store:     st,
		validator: validator,
		logger:    logging.NewComponentLogger(logger, "audit"),
		now:       time.Now,
	}
}

// Run validates the stored episodes and returns the report.
func (a *Auditor) Run(ctx context.Context, opts Options) (*Report, error) {
	episodes, err := a.store.All(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrService, "validate", "load episodes", "", err)
	}

	report := &Report{
		GeneratedAt:     a.now().UTC(),
		Environment:     string(a.store.Target().Environment),
		TaxonomyVersion: a.validator.Taxonomy().Version(),
		TotalEpisodes:   len(episodes),
		Results:         []EpisodeResult{},
	}
	if runID, ok := services.RunIDFromContext(ctx); ok {
		report.RunID = runID
	}

	logger := logging.WithContext(ctx, a.logger)
	for _, ep := range episodes {
		if !ep.IsTagged() && !opts.IncludeUntagged {
			continue
		}
		report.Audited++

		result := a.validator.Validate(ep.Tags, ep.Title)
		if result.OK {
			continue
		}
		report.TotalIssues += len(result.Violations)
		tags := []string(ep.Tags)
		if tags == nil {
			tags = []string{}
		}
		report.Results = append(report.Results, EpisodeResult{
			EpisodeID:  ep.ID,
			Title:      ep.Title,
			Tags:       tags,
			Violations: result.Violations,
		})
		logger.Debug("episode failed validation",
			logging.Int64(logging.FieldEpisodeID, ep.ID),
			logging.Int("violations", len(result.Violations)),
		)
	}

	logger.Info("validation audit complete",
		logging.String(logging.FieldEventType, "audit_complete"),
		logging.Int("total_episodes", report.TotalEpisodes),
		logging.Int("audited", report.Audited),
		logging.Int("episodes_with_issues", len(report.Results)),
		logging.Int("total_issues", report.TotalIssues),
	)
	return report, nil
}

// DefaultPath returns the timestamped report location under dir.
func DefaultPath(dir string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("validation_report_%s.json", at.UTC().Format(reportTimestampLayout)))
}

// Write stores the report as indented JSON at path.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
