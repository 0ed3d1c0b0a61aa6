// Package date turns the date strings found in feeds into instants.
//
// Parsers are tried in order: RFC 822/1123, ISO 8601/RFC 3339, a relaxed
// token scanner for the malformed variants seen in the wild, and finally
// dateparse. Every result is returned in UTC. Two-digit years follow one
// pivot everywhere: 00-68 is 2000-2068 and 69-99 is 1969-1999.
package date

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnparseable = errors.New("unrecognized date format")

type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse date %q: %v", e.Text, ErrUnparseable)
}

func (e *ParseError) Unwrap() error {
	return ErrUnparseable
}

// Parse never returns a default instant on failure; callers treat the error
// as an absent date.
func Parse(text string) (time.Time, error) {
	s := strings.Join(strings.Fields(text), " ")
	if s == "" || !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, &ParseError{Text: text}
	}

	for _, parse := range []func(string) (time.Time, bool){
		parseRFC822,
		parseISO8601,
		parseRelaxed,
		parseFallback,
	} {
		if t, ok := parse(s); ok {
			return t.UTC(), nil
		}
	}

	return time.Time{}, &ParseError{Text: text}
}

// pivotYear maps a two-digit year onto a full one.
func pivotYear(yy int) int {
	if yy < 69 {
		return 2000 + yy
	}
	return 1900 + yy
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
