package helpers

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// TimestampLayout is the fixed-width ISO-8601 form stored in every
// created_at/updated_at style column, so lexical order matches time order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// DateLayout is used for date-only columns such as exam_date or effective_from.
const DateLayout = "2006-01-02"

// Clock returns the current time; services take one so tests can pin it.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Date formats t with DateLayout.
func Date(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseTime accepts the stored timestamp layout, RFC 3339 and plain dates.
func ParseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{TimestampLayout, time.RFC3339Nano, DateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// InRange reports whether value falls inside [from, to]; empty bounds are open.
// Unparseable values are outside every bounded range.
func InRange(value, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	t, ok := ParseTime(value)
	if !ok {
		return false
	}
	if start, ok := ParseTime(from); ok && t.Before(start) {
		return false
	}
	if end, ok := ParseTime(to); ok {
		// a date-only upper bound covers the whole day
		if len(strings.TrimSpace(to)) == len(DateLayout) {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		if t.After(end) {
			return false
		}
	}
	return true
}

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}
