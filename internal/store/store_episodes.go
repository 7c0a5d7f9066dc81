package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"episodic/internal/taxonomy"
)

// FindByGUIDOrTitle looks up an existing episode, first by guid (when
// non-empty) and then by exact title. It returns MatchNone and a nil episode
// when neither matches.
func (s *Store) FindByGUIDOrTitle(ctx context.Context, guid, title string) (*Episode, MatchKind, error) {
	if guid = strings.TrimSpace(guid); guid != "" {
		ep, err := s.queryOne(ctx, "SELECT "+episodeColumns+" FROM episodes WHERE guid = ?", guid)
		if err != nil {
			return nil, MatchNone, fmt.Errorf("find episode by guid: %w", err)
		}
		if ep != nil {
			return ep, MatchGUID, nil
		}
	}
	if title == "" {
		return nil, MatchNone, nil
	}
	ep, err := s.queryOne(ctx, "SELECT "+episodeColumns+" FROM episodes WHERE title = ? ORDER BY id LIMIT 1", title)
	if err != nil {
		return nil, MatchNone, fmt.Errorf("find episode by title: %w", err)
	}
	if ep != nil {
		return ep, MatchTitle, nil
	}
	return nil, MatchNone, nil
}

// Insert stores a new pending episode and returns its id.
func (s *Store) Insert(ctx context.Context, ep NewEpisode) (int64, error) {
	if strings.TrimSpace(ep.Title) == "" {
		return 0, errors.New("insert episode: title is required")
	}
	now := formatTime(s.now())
	res, err := s.execWithRetry(ctx, `INSERT INTO episodes (
            guid, title, description, link, published_date, duration, audio_url,
            cleaning_status, episode_number, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(strings.TrimSpace(ep.GUID)),
		ep.Title,
		ep.Description,
		nullableString(ep.Link),
		nullableTime(ep.PublishedDate),
		nullableString(ep.Duration),
		nullableString(ep.AudioURL),
		string(CleaningPending),
		nullableInt(ep.EpisodeNumber),
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert episode %q: %w", ep.GUID, ErrDuplicateGUID)
		}
		return 0, fmt.Errorf("insert episode: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert episode: last insert id: %w", err)
	}
	return id, nil
}

// GetByID fetches an episode. It returns nil without error when the id is
// unknown.
func (s *Store) GetByID(ctx context.Context, id int64) (*Episode, error) {
	ep, err := s.queryOne(ctx, "SELECT "+episodeColumns+" FROM episodes WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get episode %d: %w", id, err)
	}
	return ep, nil
}

// All returns every episode ordered by id.
func (s *Store) All(ctx context.Context) ([]*Episode, error) {
	return s.queryMany(ctx, "SELECT "+episodeColumns+" FROM episodes ORDER BY id")
}

// RecentTitles returns up to limit of the most recently created titles.
func (s *Store) RecentTitles(ctx context.Context, limit int) ([]TitleRef, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id, title FROM episodes ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("recent titles: %w", err)
	}
	defer rows.Close()

	var refs []TitleRef
	for rows.Next() {
		var ref TitleRef
		if err := rows.Scan(&ref.ID, &ref.Title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// UpdateCleaning records the outcome of the cleaning stage.
//
// Cleaned stores text (which may be empty) as the cleaned description.
// Failed clears the cleaned description and is refused for tagged episodes,
// since tags are only valid on cleaned rows. Pending is never a valid target.
func (s *Store) UpdateCleaning(ctx context.Context, id int64, text string, status CleaningStatus) error {
	now := formatTime(s.now())
	var (
		res sql.Result
		err error
	)
	switch status {
	case CleaningCleaned:
		res, err = s.execWithRetry(ctx, `UPDATE episodes
            SET cleaned_description = ?, cleaning_status = ?, cleaning_timestamp = ?, updated_at = ?
            WHERE id = ?`, text, string(CleaningCleaned), now, now, id)
	case CleaningFailed:
		res, err = s.execWithRetry(ctx, `UPDATE episodes
            SET cleaned_description = NULL, cleaning_status = ?, cleaning_timestamp = ?, updated_at = ?
            WHERE id = ? AND tags IS NULL`, string(CleaningFailed), now, now, id)
	default:
		return fmt.Errorf("update cleaning for episode %d: %w: cannot set status %q", id, ErrInvalidStateTransition, status)
	}
	if err != nil {
		return fmt.Errorf("update cleaning for episode %d: %w", id, err)
	}
	return s.checkAffected(ctx, res, id, "update cleaning", "episode is tagged")
}

// UpdateTags stores a non-empty tag set on a cleaned episode. The state check
// and the write happen in one statement.
func (s *Store) UpdateTags(ctx context.Context, id int64, tags taxonomy.TagSet) error {
	if tags.Empty() {
		return fmt.Errorf("update tags for episode %d: tag set is empty", id)
	}
	encoded, err := encodeTags(tags)
	if err != nil {
		return err
	}
	now := formatTime(s.now())
	res, err := s.execWithRetry(ctx, `UPDATE episodes
        SET tags = ?, tagging_timestamp = ?, updated_at = ?
        WHERE id = ? AND cleaning_status = ?`, encoded, now, now, id, string(CleaningCleaned))
	if err != nil {
		return fmt.Errorf("update tags for episode %d: %w", id, err)
	}
	return s.checkAffected(ctx, res, id, "update tags", "episode is not cleaned")
}

// checkAffected maps a zero-row conditional update to ErrNotFound or
// ErrInvalidStateTransition.
func (s *Store) checkAffected(ctx context.Context, res sql.Result, id int64, op, reason string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s for episode %d: rows affected: %w", op, id, err)
	}
	if affected > 0 {
		return nil
	}
	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM episodes WHERE id = ?", id).Scan(&exists); err != nil {
		return fmt.Errorf("%s for episode %d: %w", op, id, err)
	}
	if exists == 0 {
		return fmt.Errorf("%s for episode %d: %w", op, id, ErrNotFound)
	}
	return fmt.Errorf("%s for episode %d: %w: %s", op, id, ErrInvalidStateTransition, reason)
}

func (s *Store) queryOne(ctx context.Context, query string, args ...any) (*Episode, error) {
	ep, err := scanEpisode(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ep, nil
}

func (s *Store) queryMany(ctx context.Context, query string, args ...any) ([]*Episode, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}
	return episodes, nil
}
