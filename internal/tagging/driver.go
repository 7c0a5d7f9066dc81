package tagging

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"episodic/internal/logging"
	"episodic/internal/services"
	"episodic/internal/stageexec"
	"episodic/internal/store"
	"episodic/internal/taxonomy"
)

// StageName labels tagging in logs and reports.
const StageName = "tag"

// Suggester proposes tags for an episode.
type Suggester interface {
	SuggestTags(ctx context.Context, title, description string) (taxonomy.Suggestion, error)
}

// Options selects which episodes a run touches.
type Options struct {
	// ID limits the run to one episode when non-zero.
	ID int64
	// Force re-tags episodes that already have tags.
	Force bool
}

// Driver runs the tagging stage against a store.
type Driver struct {
	store     *store.Store
	suggester Suggester
	validator *taxonomy.Validator
	logger    *slog.Logger
}

// NewDriver wires the tagging stage.
func NewDriver(st *store.Store, suggester Suggester, validator *taxonomy.Validator, logger *slog.Logger) *Driver {
	if validator == nil {
		validator = taxonomy.NewValidator(nil)
	}
	return &Driver{
		store:     st,
		suggester: suggester,
		validator: validator,
		logger:    logging.NewComponentLogger(logger, "tagging"),
	}
}

// Run tags the selected episodes and reports per-episode outcomes.
func (d *Driver) Run(ctx context.Context, opts Options) (*stageexec.Report, error) {
	var episodes iter.Seq2[*store.Episode, error]
	if opts.ID != 0 {
		episodes = stageexec.Single(ctx, d.store, opts.ID)
	} else {
		episodes = d.store.Pending(ctx, store.StageTag, store.PendingOptions{Force: opts.Force})
	}
	return stageexec.Run(ctx, stageexec.Options{Logger: d.logger, Stage: StageName}, episodes,
		func(ctx context.Context, ep *store.Episode) (stageexec.Status, error) {
			return d.Tag(ctx, ep, opts.Force)
		})
}

// Tag processes one episode.
func (d *Driver) Tag(ctx context.Context, ep *store.Episode, force bool) (stageexec.Status, error) {
	logger := logging.WithContext(ctx, d.logger)
	if !ep.IsCleaned() {
		return "", fmt.Errorf("tag episode %d: %w: cleaning status is %s", ep.ID, store.ErrInvalidStateTransition, ep.CleaningStatus)
	}
	if ep.IsTagged() && !force {
		logger.Debug("episode already tagged", logging.String(logging.FieldEventType, "tag_skipped"))
		return stageexec.StatusSkipped, nil
	}

	if n, ok := taxonomy.EpisodeNumber(ep.Title); ok {
		logger.Debug("episode number extracted", logging.Int("episode_number", n))
	}

	if d.suggester == nil {
		return "", services.Wrap(services.ErrConfiguration, StageName, "suggest", "suggester unavailable", nil)
	}
	description := ""
	if ep.CleanedDescription != nil {
		description = *ep.CleanedDescription
	}
	suggestion, err := d.suggester.SuggestTags(ctx, ep.Title, description)
	if err != nil {
		if services.Marker(err) != nil {
			return "", err
		}
		return "", services.Wrap(services.ErrService, StageName, "suggest", "", err)
	}

	tax := d.validator.Taxonomy()
	tags, dropped := tax.Coerce(suggestion)
	if len(dropped) > 0 {
		logging.WarnWithContext(logger, "dropped unknown tag suggestions", "tags_dropped",
			logging.String("dropped", strings.Join(dropped, "; ")),
			logging.String(logging.FieldImpact, "unknown labels not persisted"),
		)
	}

	normalized := d.validator.Normalize(tags, ep.Title)
	result := d.validator.Validate(normalized, ep.Title)
	if !result.OK {
		messages := make([]string, 0, len(result.Violations))
		for _, v := range result.Violations {
			messages = append(messages, v.Message)
		}
		return "", services.Wrap(services.ErrValidation, StageName, "validate", strings.Join(messages, "; "), nil)
	}

	if err := d.store.UpdateTags(ctx, ep.ID, normalized); err != nil {
		return "", fmt.Errorf("persist tags: %w", err)
	}
	logger.Info("episode tagged",
		logging.String(logging.FieldEventType, "episode_tagged"),
		logging.String("title_kind", d.validator.Classify(ep.Title).String()),
		logging.String("tags", strings.Join(normalized, "; ")),
	)
	return stageexec.StatusOK, nil
}
