package youtube

import (
	"regexp"
	"strconv"
)

var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts an ISO-8601 time duration such as PT1H2M10S to
// seconds. Empty or unparseable input, including a bare "PT", reports false.
func ParseISODuration(s string) (int, bool) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	total, seen := 0, false
	for i, mult := range []int{3600, 60, 1} {
		part := m[i+1]
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, false
		}
		seen = true
		total += n * mult
	}
	if !seen {
		return 0, false
	}
	return total, true
}
