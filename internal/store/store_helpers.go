package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"episodic/internal/taxonomy"
)

const episodeColumns = "id, guid, title, description, cleaned_description, link, published_date, duration, audio_url, cleaning_status, cleaning_timestamp, tags, tagging_timestamp, episode_number, created_at, updated_at"

// timestampLayout is fixed width so stored values sort chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func scanEpisode(scanner interface{ Scan(dest ...any) error }) (*Episode, error) {
	var (
		id            int64
		guid          sql.NullString
		title         string
		description   sql.NullString
		cleaned       sql.NullString
		link          sql.NullString
		publishedRaw  sql.NullString
		duration      sql.NullString
		audioURL      sql.NullString
		statusStr     string
		cleanedAtRaw  sql.NullString
		tagsRaw       sql.NullString
		taggedAtRaw   sql.NullString
		episodeNumber sql.NullInt64
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&guid,
		&title,
		&description,
		&cleaned,
		&link,
		&publishedRaw,
		&duration,
		&audioURL,
		&statusStr,
		&cleanedAtRaw,
		&tagsRaw,
		&taggedAtRaw,
		&episodeNumber,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	ep := &Episode{
		ID:             id,
		GUID:           guid.String,
		Title:          title,
		Description:    description.String,
		Link:           link.String,
		Duration:       duration.String,
		AudioURL:       audioURL.String,
		CleaningStatus: CleaningStatus(statusStr),
	}
	if cleaned.Valid {
		text := cleaned.String
		ep.CleanedDescription = &text
	}
	if episodeNumber.Valid {
		n := int(episodeNumber.Int64)
		ep.EpisodeNumber = &n
	}
	if tagsRaw.Valid && tagsRaw.String != "" {
		var tags []string
		if err := json.Unmarshal([]byte(tagsRaw.String), &tags); err != nil {
			return nil, fmt.Errorf("decode tags for episode %d: %w", id, err)
		}
		ep.Tags = taxonomy.NewTagSet(tags...)
	}
	ep.PublishedDate = parseNullableTime(publishedRaw)
	ep.CleaningTimestamp = parseNullableTime(cleanedAtRaw)
	ep.TaggingTimestamp = parseNullableTime(taggedAtRaw)
	if created, err := parseTimeString(createdRaw.String); err == nil {
		ep.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		ep.UpdatedAt = updated
	}
	return ep, nil
}

func formatTime(value time.Time) string {
	return value.UTC().Format(timestampLayout)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return formatTime(*value)
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func encodeTags(tags taxonomy.TagSet) (any, error) {
	if tags.Empty() {
		return nil, nil
	}
	data, err := json.Marshal([]string(tags))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return string(data), nil
}

func parseNullableTime(raw sql.NullString) *time.Time {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	parsed, err := parseTimeString(raw.String)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
