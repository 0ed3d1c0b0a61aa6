package date

import (
	"strings"
	"time"
)

// The "06" forms apply the same year pivot as pivotYear.
var rfc822Layouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 06 15:04:05 -0700",
	"Mon, 2 Jan 06 15:04 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04 -0700",
	"2 Jan 06 15:04:05 -0700",
	"2 Jan 06 15:04 -0700",
}

func parseRFC822(s string) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) < 5 {
		return time.Time{}, false
	}

	zone, ok := rfcZone(fields[len(fields)-1])
	if !ok {
		return time.Time{}, false
	}
	fields[len(fields)-1] = zone
	value := strings.Join(fields, " ")

	for _, layout := range rfc822Layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
