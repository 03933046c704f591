package normalizer

import (
	"strconv"
	"strings"
	"time"
)

const (
	clockLayout      = "03:04 PM"
	defaultGradeType = "normal"
)

// FormatTime converts an HHMM integer such as "1330" into "01:30 PM".
// The second result is false when raw is a placeholder ("** TBA **") or
// does not encode a valid time of day.
func FormatTime(raw string) (string, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return "", false
	}

	hour, minute := value/100, value%100
	if hour > 23 || minute > 59 {
		return "", false
	}

	return time.Date(0, time.January, 1, hour, minute, 0, 0, time.UTC).Format(clockLayout), true
}

// GradeTypeLabel defaults an empty grade type to "normal".
func GradeTypeLabel(raw string) string {
	if raw == "" {
		return defaultGradeType
	}

	return raw
}
