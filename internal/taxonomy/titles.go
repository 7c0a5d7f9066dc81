package taxonomy

import (
	"regexp"
	"strconv"
	"strings"
)

// RIHCPrefix marks titles that belong to the RIHC series.
const RIHCPrefix = "RIHC:"

// numberPatterns are tried in order; the first capture wins.
var numberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:episode|ep\.?|part|pt\.?|chapter)\s*#?\s*(\d+)\b`),
	regexp.MustCompile(`#\s*(\d+)\b`),
	regexp.MustCompile(`\bE(\d+)\b`),
	regexp.MustCompile(`\(\s*(\d{1,3})\s*\)`),
}

// seriesPatterns mark a title as one instalment of a multi-part story. A bare
// "#123" or "E123" is show-wide numbering and does not count.
var seriesPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:part|pt\.?|episode|ep\.?|chapter)\s*#?\s*\d+\b`),
	regexp.MustCompile(`(?i)\b(?:part|chapter)\s+(?:[ivx]+|one|two|three|four|five|six|seven|eight|nine|ten)\b`),
	regexp.MustCompile(`(?i)\(\s*(?:(?:part|pt\.?|ep\.?|episode)\s*)?\d{1,2}\s*(?:of\s*\d{1,2})?\s*\)`),
}

// EpisodeNumber extracts the episode or part number from a title.
func EpisodeNumber(title string) (int, bool) {
	for _, pattern := range numberPatterns {
		match := pattern.FindStringSubmatch(title)
		if len(match) < 2 {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// TitleKind classifies a title for the format rules.
type TitleKind int

const (
	TitleStandalone TitleKind = iota
	TitleSeries
	TitleRIHC
)

func (k TitleKind) String() string {
	switch k {
	case TitleRIHC:
		return "rihc"
	case TitleSeries:
		return "series"
	default:
		return "standalone"
	}
}

// IsRIHC reports whether the title carries the literal RIHC prefix.
func IsRIHC(title string) bool {
	return strings.HasPrefix(strings.TrimSpace(title), RIHCPrefix)
}

// isSeriesTitle reports a part marker or a configured named-series prefix.
func isSeriesTitle(title string, namedSeries []string) bool {
	for _, pattern := range seriesPatterns {
		if pattern.MatchString(title) {
			return true
		}
	}
	trimmed := strings.TrimSpace(title)
	for _, name := range namedSeries {
		if len(trimmed) < len(name) || !strings.EqualFold(trimmed[:len(name)], name) {
			continue
		}
		rest := strings.TrimSpace(trimmed[len(name):])
		if rest == "" || strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "–") {
			return true
		}
	}
	return false
}
