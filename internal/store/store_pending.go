package store

import (
	"context"
	"fmt"
	"iter"
	"strings"
)

// pendingPageSize bounds how many rows a pending iterator holds at once.
const pendingPageSize = 100

// Pending yields the episodes awaiting stage in creation order.
//
// The iterator pages through the table with a keyset cursor on
// (created_at, id) and re-queries between pages, so rows updated during
// iteration are not revisited and rows inserted behind the cursor are not
// picked up. Stopping the range early releases all resources.
//
// For StageClean, pending means status pending or failed; Force widens it to
// every episode. For StageTag, pending means cleaned and untagged; Force
// widens it to every cleaned episode.
func (s *Store) Pending(ctx context.Context, stage Stage, opts PendingOptions) iter.Seq2[*Episode, error] {
	return func(yield func(*Episode, error) bool) {
		where, args, err := pendingFilter(stage, opts)
		if err != nil {
			yield(nil, err)
			return
		}
		var (
			cursorCreated string
			cursorID      int64
			started       bool
		)
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			clauses := []string{where}
			pageArgs := append([]any(nil), args...)
			if started {
				clauses = append(clauses, "(created_at > ? OR (created_at = ? AND id > ?))")
				pageArgs = append(pageArgs, cursorCreated, cursorCreated, cursorID)
			}
			query := "SELECT " + episodeColumns + " FROM episodes WHERE " +
				strings.Join(clauses, " AND ") +
				" ORDER BY created_at, id LIMIT ?"
			pageArgs = append(pageArgs, pendingPageSize)

			page, err := s.queryMany(ctx, query, pageArgs...)
			if err != nil {
				yield(nil, fmt.Errorf("list pending %s: %w", stage, err))
				return
			}
			for _, ep := range page {
				if !yield(ep, nil) {
					return
				}
			}
			if len(page) < pendingPageSize {
				return
			}
			last := page[len(page)-1]
			cursorCreated = formatTime(last.CreatedAt)
			cursorID = last.ID
			started = true
		}
	}
}

// CountPending reports how many episodes Pending would yield right now.
func (s *Store) CountPending(ctx context.Context, stage Stage, opts PendingOptions) (int, error) {
	where, args, err := pendingFilter(stage, opts)
	if err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM episodes WHERE "+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending %s: %w", stage, err)
	}
	return count, nil
}

func pendingFilter(stage Stage, opts PendingOptions) (string, []any, error) {
	switch stage {
	case StageClean:
		if opts.Force {
			return "1 = 1", nil, nil
		}
		return "cleaning_status IN (?, ?)", []any{string(CleaningPending), string(CleaningFailed)}, nil
	case StageTag:
		if opts.Force {
			return "cleaning_status = ?", []any{string(CleaningCleaned)}, nil
		}
		return "cleaning_status = ? AND tags IS NULL", []any{string(CleaningCleaned)}, nil
	default:
		return "", nil, fmt.Errorf("unknown stage %q", stage)
	}
}
