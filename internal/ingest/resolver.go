package ingest

import (
	"context"
	"log/slog"
	"strings"

	"episodic/internal/feed"
	"episodic/internal/logging"
	"episodic/internal/services"
	"episodic/internal/store"
	"episodic/internal/taxonomy"
	"episodic/internal/textutil"
)

// Classification is the resolver's verdict for one feed item.
type Classification string

const (
	ClassNew       Classification = "new"
	ClassDuplicate Classification = "duplicate"
	ClassSkipped   Classification = "skipped"
	ClassFailed    Classification = "failed"
)

// Outcome describes what happened to one feed item.
type Outcome struct {
	Class     Classification
	EpisodeID int64
	MatchedBy store.MatchKind
	Title     string
	GUID      string
	Err       error
}

// similarityWindow bounds how many recent titles the reuse check compares.
const similarityWindow = 200

// Resolver decides whether a feed item is already stored.
type Resolver struct {
	store     *store.Store
	logger    *slog.Logger
	threshold float64
}

// NewResolver builds a resolver. A threshold <= 0 disables the title reuse
// warning.
func NewResolver(st *store.Store, logger *slog.Logger, threshold float64) *Resolver {
	return &Resolver{
		store:     st,
		logger:    logging.NewComponentLogger(logger, "ingest"),
		threshold: threshold,
	}
}

// Resolve classifies raw and inserts it when new.
func (r *Resolver) Resolve(ctx context.Context, raw feed.RawEpisode) (Outcome, error) {
	outcome := Outcome{Title: raw.Title, GUID: raw.GUID}
	logger := logging.WithContext(ctx, r.logger)

	if strings.TrimSpace(raw.Title) == "" {
		outcome.Class = ClassSkipped
		logging.WarnWithContext(logger, "skipping feed item without title", "feed_item_skipped",
			logging.String("guid", raw.GUID),
			logging.String(logging.FieldImpact, "item not ingested"),
		)
		return outcome, nil
	}

	existing, match, err := r.store.FindByGUIDOrTitle(ctx, raw.GUID, raw.Title)
	if err != nil {
		return Outcome{Class: ClassFailed, Title: raw.Title, GUID: raw.GUID, Err: err},
			services.Wrap(nil, "ingest", "lookup", raw.Title, err)
	}
	if existing != nil {
		outcome.Class = ClassDuplicate
		outcome.EpisodeID = existing.ID
		outcome.MatchedBy = match
		logger.Info("duplicate episode detected",
			logging.String(logging.FieldEventType, "duplicate_detected"),
			logging.String("matched_by", string(match)),
			logging.Int64("existing_id", existing.ID),
			logging.String("guid", raw.GUID),
			logging.String("title", raw.Title),
		)
		return outcome, nil
	}

	r.warnOnTitleReuse(ctx, logger, raw)

	newEp := store.NewEpisode{
		GUID:          raw.GUID,
		Title:         raw.Title,
		Description:   raw.Description,
		Link:          raw.Link,
		PublishedDate: raw.PublishedDate,
		Duration:      raw.Duration,
		AudioURL:      raw.AudioURL,
	}
	if n, ok := taxonomy.EpisodeNumber(raw.Title); ok {
		newEp.EpisodeNumber = &n
	}
	id, err := r.store.Insert(ctx, newEp)
	if err != nil {
		outcome.Class = ClassFailed
		outcome.Err = err
		return outcome, services.Wrap(nil, "ingest", "insert", raw.Title, err)
	}
	outcome.Class = ClassNew
	outcome.EpisodeID = id
	logger.Debug("episode inserted",
		logging.String(logging.FieldEventType, "episode_inserted"),
		logging.Int64(logging.FieldEpisodeID, id),
		logging.String("title", raw.Title),
	)
	return outcome, nil
}

func (r *Resolver) warnOnTitleReuse(ctx context.Context, logger *slog.Logger, raw feed.RawEpisode) {
	if r.threshold <= 0 {
		return
	}
	recent, err := r.store.RecentTitles(ctx, similarityWindow)
	if err != nil {
		logger.Debug("title reuse check skipped", logging.Error(err))
		return
	}
	if len(recent) == 0 {
		return
	}
	titles := make([]string, len(recent))
	for i, ref := range recent {
		titles[i] = ref.Title
	}
	match := textutil.BestMatch(raw.Title, titles)
	if match.Index < 0 || match.Score < r.threshold {
		return
	}
	logging.WarnWithContext(logger, "title closely matches a stored episode", "possible_title_reuse",
		logging.String("title", raw.Title),
		logging.String("similar_title", recent[match.Index].Title),
		logging.Int64("similar_id", recent[match.Index].ID),
		logging.Float64("similarity", match.Score),
		logging.String(logging.FieldErrorHint, "confirm the feed did not re-publish an episode under a new guid"),
		logging.String(logging.FieldImpact, "episode stored as new"),
	)
}
