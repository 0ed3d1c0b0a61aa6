package date

import (
	"strings"
	"time"
)

// Fractional seconds are accepted after any seconds field by time.Parse,
// so no layout spells them out.
var iso8601Layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05 Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"20060102T150405Z0700",
	"20060102T150405Z07:00",
	"20060102T150405",
	"2006-01-02",
	"2006-01",
	"20060102",
}

func parseISO8601(s string) (time.Time, bool) {
	if len(s) < 7 || !isDigits(s[:4]) {
		return time.Time{}, false
	}
	s = strings.ToUpper(s)

	for _, layout := range iso8601Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
