package stageexec

import (
	"context"
	"errors"
	"maps"
	"slices"

	"episodic/internal/services"
	"episodic/internal/store"
)

// Status is the outcome of one episode within a stage run.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Failure kinds reported by Kind.
const (
	KindFetch                  = "fetch"
	KindParse                  = "parse"
	KindService                = "service"
	KindInvalidStateTransition = "invalid_state_transition"
	KindValidation             = "validation"
	KindNotFound               = "not_found"
	KindCanceled               = "canceled"
	KindInternal               = "internal"
)

// Result records what happened to one episode.
type Result struct {
	EpisodeID int64
	Title     string
	Status    Status
	Kind      string
	Err       error
}

// Kind classifies err for reporting. Store sentinels take precedence over
// service markers so a wrapped state violation is never reported as a
// generic service failure.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrInvalidStateTransition):
		return KindInvalidStateTransition
	case errors.Is(err, store.ErrNotFound), errors.Is(err, services.ErrNotFound):
		return KindNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	switch services.Marker(err) {
	case services.ErrFetch:
		return KindFetch
	case services.ErrParse:
		return KindParse
	case services.ErrService:
		return KindService
	case services.ErrValidation:
		return KindValidation
	case services.ErrNotFound:
		return KindNotFound
	}
	return KindInternal
}

// Report aggregates the results of a stage run.
type Report struct {
	Stage   string
	Results []Result
}

// Add appends r to the report.
func (r *Report) Add(result Result) {
	r.Results = append(r.Results, result)
}

// Count returns how many results have status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Total is the number of episodes the run touched.
func (r *Report) Total() int { return len(r.Results) }

// KindCounts tallies failed results by kind.
func (r *Report) KindCounts() map[string]int {
	counts := make(map[string]int)
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			counts[res.Kind]++
		}
	}
	return counts
}

// Kinds returns the failure kinds present, sorted.
func (r *Report) Kinds() []string {
	return slices.Sorted(maps.Keys(r.KindCounts()))
}

// Failures returns the failed results in run order.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}
