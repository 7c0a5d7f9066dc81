package export

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"episodic/internal/services"
	"episodic/internal/store"
)

type kind int

const (
	kindString kind = iota
	kindNullableString
	kindInt
	kindNullableInt
	kindTags
)

type column struct {
	name  string
	kind  kind
	value func(*store.Episode) any
}

var columns = []column{
	{"id", kindInt, func(e *store.Episode) any { return e.ID }},
	{"guid", kindNullableString, func(e *store.Episode) any { return optionalString(e.GUID) }},
	{"title", kindString, func(e *store.Episode) any { return e.Title }},
	{"description", kindString, func(e *store.Episode) any { return e.Description }},
	{"cleaned_description", kindNullableString, func(e *store.Episode) any { return derefString(e.CleanedDescription) }},
	{"link", kindNullableString, func(e *store.Episode) any { return optionalString(e.Link) }},
	{"published_date", kindNullableString, func(e *store.Episode) any { return formatTime(e.PublishedDate) }},
	{"duration", kindNullableString, func(e *store.Episode) any { return optionalString(e.Duration) }},
	{"audio_url", kindNullableString, func(e *store.Episode) any { return optionalString(e.AudioURL) }},
	{"cleaning_status", kindString, func(e *store.Episode) any { return string(e.CleaningStatus) }},
	{"cleaning_timestamp", kindNullableString, func(e *store.Episode) any { return formatTime(e.CleaningTimestamp) }},
	{"tags", kindTags, func(e *store.Episode) any { return tagsValue(e) }},
	{"tagging_timestamp", kindNullableString, func(e *store.Episode) any { return formatTime(e.TaggingTimestamp) }},
	{"episode_number", kindNullableInt, func(e *store.Episode) any { return episodeNumber(e.EpisodeNumber) }},
	{"created_at", kindString, func(e *store.Episode) any { return e.CreatedAt.UTC().Format(time.RFC3339Nano) }},
	{"updated_at", kindString, func(e *store.Episode) any { return e.UpdatedAt.UTC().Format(time.RFC3339Nano) }},
}

// Columns lists every exportable field in output order.
func Columns() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

func lookupColumn(name string) (column, bool) {
	for _, c := range columns {
		if c.name == name {
			return c, true
		}
	}
	return column{}, false
}

// ValidateFields checks a field selection against Columns. An empty
// selection means every column. Duplicates are removed, order is kept.
func ValidateFields(fields []string) ([]string, error) {
	if len(fields) == 0 {
		return Columns(), nil
	}
	var (
		selected []string
		unknown  []string
	)
	for _, field := range fields {
		name := strings.ToLower(strings.TrimSpace(field))
		if name == "" {
			continue
		}
		if _, ok := lookupColumn(name); !ok {
			unknown = append(unknown, field)
			continue
		}
		if !slices.Contains(selected, name) {
			selected = append(selected, name)
		}
	}
	if len(unknown) > 0 {
		return nil, services.Wrap(services.ErrValidation, "export", "fields",
			fmt.Sprintf("unknown fields %s (available: %s)", strings.Join(unknown, ", "), strings.Join(Columns(), ", ")), nil)
	}
	if len(selected) == 0 {
		return Columns(), nil
	}
	return selected, nil
}

func optionalString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func derefString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func formatTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func episodeNumber(value *int) any {
	if value == nil {
		return nil
	}
	return int64(*value)
}

func tagsValue(e *store.Episode) any {
	if e.Tags.Empty() {
		return nil
	}
	return []string(slices.Clone(e.Tags))
}
