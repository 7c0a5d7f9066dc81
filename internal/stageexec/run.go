package stageexec

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"episodic/internal/logging"
	"episodic/internal/services"
	"episodic/internal/store"
)

// Handler processes one episode. A nil error with StatusSkipped records a
// no-op; any error marks the episode failed.
type Handler func(ctx context.Context, ep *store.Episode) (Status, error)

// Options controls a stage run.
type Options struct {
	Logger *slog.Logger
	Stage  string
}

// Run applies handle to every episode yielded by episodes. Per-episode
// failures are logged and recorded; only an error from the sequence itself
// or cancellation ends the run early. The returned report is never nil.
func Run(ctx context.Context, opts Options, episodes iter.Seq2[*store.Episode, error], handle Handler) (*Report, error) {
	report := &Report{Stage: opts.Stage}
	if handle == nil {
		return report, fmt.Errorf("stage handler unavailable: %s", opts.Stage)
	}
	stageCtx := services.WithStage(ctx, opts.Stage)
	logger := logging.WithContext(stageCtx, opts.Logger)
	started := time.Now()

	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	var runErr error
	for ep, err := range episodes {
		if err != nil {
			runErr = fmt.Errorf("%s: list pending: %w", opts.Stage, err)
			break
		}
		report.Add(One(stageCtx, opts, ep, handle))
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}
	}

	level := slog.LevelInfo
	if runErr != nil {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Int("processed", report.Total()),
		logging.Int("succeeded", report.Count(StatusOK)),
		logging.Int("skipped", report.Count(StatusSkipped)),
		logging.Int("failed", report.Count(StatusFailed)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return report, runErr
}

// One applies handle to a single episode and records the outcome. The
// handler runs detached from ctx cancellation so an interrupted run still
// finishes the episode in flight.
func One(ctx context.Context, opts Options, ep *store.Episode, handle Handler) Result {
	itemCtx := services.WithEpisodeID(services.WithStage(context.WithoutCancel(ctx), opts.Stage), ep.ID)
	logger := logging.WithContext(itemCtx, opts.Logger)

	status, err := handle(itemCtx, ep)
	result := Result{EpisodeID: ep.ID, Title: ep.Title, Status: status}
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		result.Kind = Kind(err)
		logging.ErrorWithContext(logger, "episode failed", "stage_item_failed",
			logging.String(logging.FieldErrorKind, result.Kind),
			logging.String("title", ep.Title),
			logging.Error(err),
		)
		return result
	}
	if result.Status == "" {
		result.Status = StatusOK
	}
	logger.Debug("episode processed",
		logging.String(logging.FieldEventType, "stage_item_"+string(result.Status)),
		logging.String("title", ep.Title),
	)
	return result
}

// Single returns a one-element sequence for id, or a not-found error.
func Single(ctx context.Context, st *store.Store, id int64) iter.Seq2[*store.Episode, error] {
	return func(yield func(*store.Episode, error) bool) {
		ep, err := st.GetByID(ctx, id)
		if err != nil {
			yield(nil, err)
			return
		}
		if ep == nil {
			yield(nil, services.Wrap(services.ErrNotFound, "", "lookup", fmt.Sprintf("episode %d", id), store.ErrNotFound))
			return
		}
		yield(ep, nil)
	}
}
