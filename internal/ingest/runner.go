package ingest

import (
	"context"
	"log/slog"
	"time"

	"episodic/internal/feed"
	"episodic/internal/logging"
	"episodic/internal/services"
)

// Report summarizes one ingest run.
type Report struct {
	FeedURL    string
	Fetched    int
	New        int
	Duplicates int
	Skipped    int
	Failed     int
	Outcomes   []Outcome
}

// Runner drives a full feed ingest.
type Runner struct {
	source   feed.Source
	resolver *Resolver
	logger   *slog.Logger
}

// NewRunner wires a feed source to a resolver.
func NewRunner(source feed.Source, resolver *Resolver, logger *slog.Logger) *Runner {
	return &Runner{
		source:   source,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "ingest"),
	}
}

// Run fetches feedURL and resolves every item. Feed fetch or parse failures
// abort the run; a store failure on one item is logged and the batch
// continues. Cancellation is honoured between items.
func (r *Runner) Run(ctx context.Context, feedURL string) (*Report, error) {
	ctx = services.WithStage(ctx, "ingest")
	logger := logging.WithContext(ctx, r.logger)
	report := &Report{FeedURL: feedURL}
	started := time.Now()

	episodes, err := r.source.FetchAndParse(ctx, feedURL)
	if err != nil {
		logging.ErrorWithContext(logger, "feed unavailable", "feed_failed",
			logging.String("url", feedURL),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check feed.url and network access"),
		)
		return report, err
	}
	report.Fetched = len(episodes)

	for _, raw := range episodes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome, err := r.resolver.Resolve(ctx, raw)
		report.Outcomes = append(report.Outcomes, outcome)
		if err != nil {
			report.Failed++
			logging.ErrorWithContext(logger, "episode ingest failed", "ingest_item_failed",
				logging.String("title", raw.Title),
				logging.String("guid", raw.GUID),
				logging.Error(err),
			)
			continue
		}
		switch outcome.Class {
		case ClassNew:
			report.New++
		case ClassDuplicate:
			report.Duplicates++
		case ClassSkipped:
			report.Skipped++
		}
	}

	logger.Info("ingest completed",
		logging.String(logging.FieldEventType, "ingest_complete"),
		logging.Int("fetched", report.Fetched),
		logging.Int("new", report.New),
		logging.Int("duplicates", report.Duplicates),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Duration("elapsed", time.Since(started)),
	)
	return report, nil
}
