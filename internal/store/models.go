package store

import (
	"time"

	"episodic/internal/config"
	"episodic/internal/taxonomy"
)

// CleaningStatus is the cleaning-stage state of an episode.
type CleaningStatus string

const (
	CleaningPending CleaningStatus = "pending"
	CleaningCleaned CleaningStatus = "cleaned"
	CleaningFailed  CleaningStatus = "failed"
)

// CleaningStatuses lists every status in lifecycle order.
var CleaningStatuses = []CleaningStatus{CleaningPending, CleaningCleaned, CleaningFailed}

// ParseCleaningStatus validates a status string.
func ParseCleaningStatus(value string) (CleaningStatus, bool) {
	for _, status := range CleaningStatuses {
		if string(status) == value {
			return status, true
		}
	}
	return "", false
}

// Stage names a pipeline stage that pulls pending work from the store.
type Stage string

const (
	StageClean Stage = "clean"
	StageTag   Stage = "tag"
)

// Episode is one stored podcast episode.
type Episode struct {
	ID                 int64
	GUID               string
	Title              string
	Description        string
	CleanedDescription *string
	Link               string
	PublishedDate      *time.Time
	Duration           string
	AudioURL           string
	CleaningStatus     CleaningStatus
	CleaningTimestamp  *time.Time
	Tags               taxonomy.TagSet
	TaggingTimestamp   *time.Time
	EpisodeNumber      *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsCleaned reports whether the cleaning stage has succeeded.
func (e *Episode) IsCleaned() bool {
	return e != nil && e.CleaningStatus == CleaningCleaned
}

// IsTagged reports whether the tagging stage has succeeded.
func (e *Episode) IsTagged() bool {
	return e != nil && !e.Tags.Empty()
}

// NewEpisode carries the caller-supplied fields of an insert. Bookkeeping
// and pipeline columns are always set by the store.
type NewEpisode struct {
	GUID          string
	Title         string
	Description   string
	Link          string
	PublishedDate *time.Time
	Duration      string
	AudioURL      string
	EpisodeNumber *int
}

// MatchKind reports how FindByGUIDOrTitle located an episode.
type MatchKind string

const (
	MatchNone  MatchKind = ""
	MatchGUID  MatchKind = "guid"
	MatchTitle MatchKind = "title"
)

// TitleRef is a lightweight id/title pair.
type TitleRef struct {
	ID    int64
	Title string
}

// PendingOptions widens the pending selection.
type PendingOptions struct {
	// Force includes episodes that already passed the stage.
	Force bool
}

// ExportFilter narrows SelectForExport.
type ExportFilter struct {
	Statuses []CleaningStatus
	// Since keeps episodes published at or after this instant.
	Since *time.Time
	// TaggedOnly keeps episodes with tags.
	TaggedOnly bool
	// Limit caps the result; zero means no limit.
	Limit int
}

// Summary aggregates episode counts.
type Summary struct {
	Total    int
	ByStatus map[CleaningStatus]int
	Tagged   int
}

// Health describes the database file backing a store.
type Health struct {
	Path          string
	Environment   config.Environment
	Exists        bool
	Readable      bool
	SchemaVersion int
	Integrity     string
	Error         string
}
