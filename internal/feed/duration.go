package feed

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeDuration rewrites an itunes:duration value as HH:MM:SS. It
// accepts H:M:S, M:S and a bare number of seconds. Anything else is
// returned unchanged. Overflowing minutes or seconds carry into the next
// unit.
func NormalizeDuration(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, ":")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return raw
		}
		values = append(values, n)
	}

	var total int
	switch len(values) {
	case 1:
		total = values[0]
	case 2:
		total = values[0]*60 + values[1]
	case 3:
		total = values[0]*3600 + values[1]*60 + values[2]
	default:
		return raw
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
