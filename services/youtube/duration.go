package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

var isoDurationR = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts the ISO-8601 durations returned by the Data API
// (PT1H2M3S, P1DT2H, PT0S) to seconds.
func ParseISODuration(s string) (int, bool) {
	m := isoDurationR.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, false
	}
	mult := []int{86400, 3600, 60, 1}
	total := 0
	for i, part := range m[1:] {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, false
		}
		total += n * mult[i]
	}
	return total, true
}

// FormatISODuration renders an ISO-8601 duration as h:mm:ss or m:ss.
func FormatISODuration(s string) string {
	secs, ok := ParseISODuration(s)
	if !ok {
		return "0:00"
	}
	h, m, sec := secs/3600, secs%3600/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
