package cleaning

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"

	"episodic/internal/logging"
	"episodic/internal/services"
	"episodic/internal/stageexec"
	"episodic/internal/store"
)

// StageName labels cleaning in logs and reports.
const StageName = "clean"

// Rewriter rewrites rule-cleaned text into the final description.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

// Options selects which episodes a run touches.
type Options struct {
	// ID limits the run to one episode when non-zero.
	ID int64
	// Force re-cleans episodes that are already cleaned.
	Force bool
}

// Driver runs the cleaning stage against a store.
type Driver struct {
	store    *store.Store
	rules    *Rules
	rewriter Rewriter
	logger   *slog.Logger
}

// NewDriver wires the cleaning stage.
func NewDriver(st *store.Store, rules *Rules, rewriter Rewriter, logger *slog.Logger) *Driver {
	return &Driver{
		store:    st,
		rules:    rules,
		rewriter: rewriter,
		logger:   logging.NewComponentLogger(logger, "cleaning"),
	}
}

// Run cleans the selected episodes and reports per-episode outcomes.
func (d *Driver) Run(ctx context.Context, opts Options) (*stageexec.Report, error) {
	var episodes iter.Seq2[*store.Episode, error]
	if opts.ID != 0 {
		episodes = stageexec.Single(ctx, d.store, opts.ID)
	} else {
		episodes = d.store.Pending(ctx, store.StageClean, store.PendingOptions{Force: opts.Force})
	}
	return stageexec.Run(ctx, stageexec.Options{Logger: d.logger, Stage: StageName}, episodes,
		func(ctx context.Context, ep *store.Episode) (stageexec.Status, error) {
			return d.Clean(ctx, ep, opts.Force)
		})
}

// Clean processes one episode.
func (d *Driver) Clean(ctx context.Context, ep *store.Episode, force bool) (stageexec.Status, error) {
	logger := logging.WithContext(ctx, d.logger)
	if ep.IsCleaned() && !force {
		logger.Debug("episode already cleaned", logging.String(logging.FieldEventType, "clean_skipped"))
		return stageexec.StatusSkipped, nil
	}

	intermediate := d.rules.Apply(ep.Description)
	if intermediate == "" {
		if err := d.store.UpdateCleaning(ctx, ep.ID, "", store.CleaningCleaned); err != nil {
			return "", services.Wrap(nil, StageName, "persist", "", err)
		}
		logger.Info("description empty after rule pass",
			logging.String(logging.FieldEventType, "clean_empty"),
		)
		return stageexec.StatusOK, nil
	}

	final, err := d.rewrite(ctx, intermediate)
	if err != nil {
		if ep.IsCleaned() {
			logging.WarnWithContext(logger, "re-clean failed; keeping existing cleaned description", "clean_retained",
				logging.Error(err),
				logging.String(logging.FieldImpact, "episode left unchanged"),
			)
			return "", err
		}
		if markErr := d.store.UpdateCleaning(ctx, ep.ID, ep.Description, store.CleaningFailed); markErr != nil {
			return "", errors.Join(err, services.Wrap(nil, StageName, "mark failed", "", markErr))
		}
		return "", err
	}

	if err := d.store.UpdateCleaning(ctx, ep.ID, final, store.CleaningCleaned); err != nil {
		return "", services.Wrap(nil, StageName, "persist", "", err)
	}
	logger.Info("episode cleaned",
		logging.String(logging.FieldEventType, "episode_cleaned"),
		logging.Int("original_chars", len(ep.Description)),
		logging.Int("cleaned_chars", len(final)),
	)
	return stageexec.StatusOK, nil
}

func (d *Driver) rewrite(ctx context.Context, text string) (string, error) {
	if d.rewriter == nil {
		return "", services.Wrap(services.ErrConfiguration, StageName, "rewrite", "rewriter unavailable", nil)
	}
	final, err := d.rewriter.Rewrite(ctx, text)
	if err != nil {
		if services.Marker(err) != nil {
			return "", err
		}
		return "", services.Wrap(services.ErrService, StageName, "rewrite", "", err)
	}
	final = strings.TrimSpace(final)
	if final == "" {
		return "", services.Wrap(services.ErrService, StageName, "rewrite", "rewriter returned empty text", nil)
	}
	return final, nil
}
