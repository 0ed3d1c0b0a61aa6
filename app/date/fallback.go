package date

import (
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// parseFallback hands the remaining shapes to dateparse, read in UTC when
// the text carries no zone. It only sees text whose words are all month,
// weekday or zone names, meridiem markers or ordinal suffixes, so trailing
// prose such as "GMT garbage" fails instead of being dropped. Bare digit
// runs are refused because dateparse reads them as Unix timestamps.
func parseFallback(s string) (t time.Time, ok bool) {
	if isDigits(s) || !knownWords(s) {
		return time.Time{}, false
	}

	// dateparse can panic on some truncated inputs.
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || parsed.Year() < 1000 || parsed.Year() > 9999 {
		return time.Time{}, false
	}
	return parsed, true
}

var dateWords = map[string]bool{
	"am": true, "pm": true, "t": true, "at": true, "of": true, "the": true,
	"st": true, "nd": true, "rd": true, "th": true,
}

func knownWords(s string) bool {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if _, ok := monthNames[w]; ok {
			continue
		}
		if _, ok := zoneOffsets[strings.ToUpper(w)]; ok {
			continue
		}
		if !weekdayNames[w] && !dateWords[w] {
			return false
		}
	}
	return true
}
