package taxonomy

import (
	"fmt"
	"slices"
	"strings"
)

// RuleID names a validation rule.
type RuleID string

const (
	RuleSeriesFormat       RuleID = "series_format"
	RuleRIHCFormat         RuleID = "rihc_format"
	RuleStandaloneFormat   RuleID = "standalone_format"
	RuleStandaloneConflict RuleID = "standalone_conflict"
	RuleFormatCardinality  RuleID = "format_cardinality"
	RuleThemeCardinality   RuleID = "theme_cardinality"
	RuleTrackCardinality   RuleID = "track_cardinality"
	RuleUnknownLabel       RuleID = "unknown_label"
)

// MaxFormatLabels bounds the Format dimension.
const MaxFormatLabels = 2

// Violation is one broken rule.
type Violation struct {
	Rule    RuleID   `json:"rule"`
	Message string   `json:"message"`
	Labels  []string `json:"labels,omitempty"`
}

// Result is the outcome of Validate.
type Result struct {
	OK         bool        `json:"ok"`
	Violations []Violation `json:"violations,omitempty"`
}

// Rules returns the violated rule IDs in report order.
func (r Result) Rules() []RuleID {
	ids := make([]RuleID, 0, len(r.Violations))
	for _, v := range r.Violations {
		ids = append(ids, v.Rule)
	}
	return ids
}

// Validator applies the title and cardinality rules. It holds no state
// beyond its configuration and is safe to share.
type Validator struct {
	tax         *Taxonomy
	namedSeries []string
}

// NewValidator builds a validator over tax. namedSeries lists series names
// whose episodes count as series even without a part marker.
func NewValidator(tax *Taxonomy, namedSeries ...string) *Validator {
	if tax == nil {
		tax = Default()
	}
	return &Validator{tax: tax, namedSeries: slices.Clone(namedSeries)}
}

// Taxonomy returns the taxonomy the validator checks against.
func (v *Validator) Taxonomy() *Taxonomy { return v.tax }

// Classify reports how the format rules see title. RIHC wins over series.
func (v *Validator) Classify(title string) TitleKind {
	switch {
	case IsRIHC(title):
		return TitleRIHC
	case isSeriesTitle(title, v.namedSeries):
		return TitleSeries
	default:
		return TitleStandalone
	}
}

// Validate checks tags against title. Every violated rule is reported.
func (v *Validator) Validate(tags TagSet, title string) Result {
	var violations []Violation

	switch v.Classify(title) {
	case TitleRIHC:
		if missing := missingLabels(tags, RIHCSeries, SeriesEpisodes); len(missing) > 0 {
			violations = append(violations, Violation{
				Rule:    RuleRIHCFormat,
				Message: fmt.Sprintf("title starts with %q but tags lack %s", RIHCPrefix, quoteAll(missing)),
				Labels:  missing,
			})
		}
	case TitleSeries:
		if !tags.Has(SeriesEpisodes) {
			violations = append(violations, Violation{
				Rule:    RuleSeriesFormat,
				Message: fmt.Sprintf("series title requires %q", SeriesEpisodes),
				Labels:  []string{SeriesEpisodes},
			})
		}
	default:
		if !tags.Has(StandaloneEpisodes) {
			violations = append(violations, Violation{
				Rule:    RuleStandaloneFormat,
				Message: fmt.Sprintf("standalone title should include %q", StandaloneEpisodes),
				Labels:  []string{StandaloneEpisodes},
			})
		}
		var conflicting []string
		for _, label := range []string{SeriesEpisodes, RIHCSeries} {
			if tags.Has(label) {
				conflicting = append(conflicting, label)
			}
		}
		if len(conflicting) > 0 {
			violations = append(violations, Violation{
				Rule:    RuleStandaloneConflict,
				Message: fmt.Sprintf("standalone title must not include %s", quoteAll(conflicting)),
				Labels:  conflicting,
			})
		}
	}

	grouped, unknown := tags.ByDimension(v.tax)
	if n := len(grouped[DimensionFormat]); n > MaxFormatLabels {
		violations = append(violations, Violation{
			Rule:    RuleFormatCardinality,
			Message: fmt.Sprintf("%d format labels, at most %d allowed", n, MaxFormatLabels),
			Labels:  grouped[DimensionFormat],
		})
	}
	if len(grouped[DimensionTheme]) == 0 {
		violations = append(violations, Violation{Rule: RuleThemeCardinality, Message: "at least one theme label is required"})
	}
	if len(grouped[DimensionTrack]) == 0 {
		violations = append(violations, Violation{Rule: RuleTrackCardinality, Message: "at least one track label is required"})
	}
	if len(unknown) > 0 {
		violations = append(violations, Violation{
			Rule:    RuleUnknownLabel,
			Message: fmt.Sprintf("labels not in taxonomy %s: %s", v.tax.Version(), quoteAll(unknown)),
			Labels:  unknown,
		})
	}

	return Result{OK: len(violations) == 0, Violations: violations}
}

// Normalize applies the deterministic format overrides so that the result
// satisfies the title rules regardless of what the model proposed. Unknown
// labels are dropped and Format is capped, keeping required labels first.
// Theme and Track are left as suggested.
func (v *Validator) Normalize(tags TagSet, title string) TagSet {
	grouped, _ := tags.ByDimension(v.tax)
	formats := TagSet(grouped[DimensionFormat])

	var required []string
	switch v.Classify(title) {
	case TitleRIHC:
		required = []string{RIHCSeries, SeriesEpisodes}
		formats = formats.Without(StandaloneEpisodes)
	case TitleSeries:
		required = []string{SeriesEpisodes}
		formats = formats.Without(StandaloneEpisodes)
	default:
		required = []string{StandaloneEpisodes}
		formats = formats.Without(SeriesEpisodes, RIHCSeries)
	}

	ordered := NewTagSet(required...)
	for _, label := range formats {
		ordered = ordered.With(label)
	}
	if len(ordered) > MaxFormatLabels {
		ordered = ordered[:MaxFormatLabels]
	}

	out := append(TagSet(nil), ordered...)
	out = append(out, grouped[DimensionTheme]...)
	out = append(out, grouped[DimensionTrack]...)
	return out
}

func missingLabels(tags TagSet, labels ...string) []string {
	var missing []string
	for _, label := range labels {
		if !tags.Has(label) {
			missing = append(missing, label)
		}
	}
	return missing
}

func quoteAll(labels []string) string {
	quoted := make([]string, len(labels))
	for i, label := range labels {
		quoted[i] = fmt.Sprintf("%q", label)
	}
	return strings.Join(quoted, ", ")
}
