package date

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// parseRelaxed accepts the malformed shapes observed in real feeds that the
// strict layouts reject:
//
//	missing weekday or weekday without comma   "Sat 7 Sep 2002 0:00:01 GMT"
//	missing leading zeros                      "2002-9-7 1:05", "7 Sep 2002 1:05:09"
//	date only                                  "07 Sep 2002", "Sep 7, 2002"
//	RFC 850                                    "Saturday, 07-Sep-02 00:00:01 GMT"
//	asctime                                    "Sat Sep  7 00:00:01 2002"
//	slash, dash and dot numeric dates          "2002/09/07", "09/07/2002", "07.09.2002"
//	twelve-hour clocks                         "Sep 7, 2002 1:05 PM EST"
//	ordinal days                               "September 7th, 2002"
//	zone glued to GMT                          "07 Sep 2002 10:00 GMT+0200"
//
// Numeric dates without a four-digit leading year are read month first
// unless the first number cannot be a month or dots separate the fields,
// in which case they are read day first.
func parseRelaxed(s string) (time.Time, bool) {
	s = strings.ToLower(s)

	var c clock
	datePart := s
	if loc := clockRe.FindStringSubmatchIndex(s); loc != nil {
		var ok bool
		if c, ok = readClock(s, loc); !ok {
			return time.Time{}, false
		}
		after := s[loc[1]:]
		if zl := zoneRe.FindStringSubmatchIndex(after); zl != nil {
			if c.offset, ok = readZone(after, zl); ok {
				after = after[zl[1]:]
			}
		}
		datePart = s[:loc[0]] + " " + after
	}

	var nums []string
	var month time.Month
	zoneSeen := c.offset != 0
	for _, tok := range strings.FieldsFunc(datePart, isDateSeparator) {
		if minutes, isZone := zoneOffsets[strings.ToUpper(tok)]; isZone && monthNames[tok] == 0 {
			if !zoneSeen {
				c.offset, zoneSeen = minutes, true
			}
			continue
		}
		switch {
		case isDigits(tok):
			nums = append(nums, tok)
		case ordinalDay(tok) != "":
			nums = append(nums, ordinalDay(tok))
		case monthNames[tok] != 0:
			if month != 0 {
				return time.Time{}, false
			}
			month = monthNames[tok]
		case weekdayNames[tok] || tok == "at" || tok == "the" || tok == "of":
		default:
			return time.Time{}, false
		}
	}

	var d dayParts
	var ok bool
	if month != 0 {
		d, ok = withMonthName(month, nums)
	} else {
		d, ok = numericDate(nums, strings.Contains(datePart, "."))
	}
	if !ok {
		return time.Time{}, false
	}

	return build(d, c)
}

var (
	clockRe = regexp.MustCompile(`(\d{1,2}):(\d{1,2})(?::(\d{1,2}))?(?:[.,](\d{1,9}))?(?:\s*([ap])\.?m\b\.?)?`)
	zoneRe  = regexp.MustCompile(`^\s*(?:(?:gmt|utc|ut)?([+-])(\d{1,2})(?::?(\d{2}))?|([a-z]{1,5}))\b`)
)

type clock struct {
	hour, min, sec, nsec int
	offset              int
}

type dayParts struct {
	year  int
	month time.Month
	day   int
}

func readClock(s string, loc []int) (clock, bool) {
	group := func(i int) string {
		if loc[2*i] < 0 {
			return ""
		}
		return s[loc[2*i]:loc[2*i+1]]
	}

	var c clock
	c.hour, _ = strconv.Atoi(group(1))
	c.min, _ = strconv.Atoi(group(2))
	if sec := group(3); sec != "" {
		c.sec, _ = strconv.Atoi(sec)
	}
	if frac := group(4); frac != "" {
		c.nsec, _ = strconv.Atoi((frac + "000000000")[:9])
	}

	switch group(5) {
	case "a":
		if c.hour < 1 || c.hour > 12 {
			return clock{}, false
		}
		if c.hour == 12 {
			c.hour = 0
		}
	case "p":
		if c.hour < 1 || c.hour > 12 {
			return clock{}, false
		}
		if c.hour < 12 {
			c.hour += 12
		}
	}

	if c.sec == 60 {
		c.sec = 59
	}
	if c.hour > 23 || c.min > 59 || c.sec > 59 {
		return clock{}, false
	}
	return c, true
}

// readZone returns the offset in minutes for a zone right after the clock.
// Words that are not known zones are left for the date scanner.
func readZone(s string, loc []int) (int, bool) {
	if loc[8] >= 0 {
		minutes, ok := zoneOffsets[strings.ToUpper(s[loc[8]:loc[9]])]
		return minutes, ok
	}

	hh, _ := strconv.Atoi(s[loc[4]:loc[5]])
	mm := 0
	if loc[6] >= 0 {
		mm, _ = strconv.Atoi(s[loc[6]:loc[7]])
	}
	if hh > 14 || mm > 59 {
		return 0, false
	}
	minutes := hh*60 + mm
	if s[loc[2]:loc[3]] == "-" {
		minutes = -minutes
	}
	return minutes, true
}

func withMonthName(month time.Month, nums []string) (dayParts, bool) {
	if len(nums) != 2 {
		return dayParts{}, false
	}
	dayTok, yearTok := nums[0], nums[1]
	if len(nums[0]) == 4 || atoi(nums[0]) > 31 {
		dayTok, yearTok = nums[1], nums[0]
	}
	year, ok := fullYear(yearTok)
	if !ok || len(dayTok) > 2 {
		return dayParts{}, false
	}
	return dayParts{year: year, month: month, day: atoi(dayTok)}, true
}

func numericDate(nums []string, dayFirst bool) (dayParts, bool) {
	if len(nums) != 3 {
		return dayParts{}, false
	}
	for _, n := range nums[1:] {
		if len(n) > 4 {
			return dayParts{}, false
		}
	}

	var y, m, d string
	switch {
	case len(nums[0]) == 4:
		y, m, d = nums[0], nums[1], nums[2]
	case dayFirst || atoi(nums[0]) > 12:
		d, m, y = nums[0], nums[1], nums[2]
	default:
		m, d, y = nums[0], nums[1], nums[2]
	}

	year, ok := fullYear(y)
	if !ok || len(m) > 2 || len(d) > 2 {
		return dayParts{}, false
	}
	return dayParts{year: year, month: time.Month(atoi(m)), day: atoi(d)}, true
}

func fullYear(tok string) (int, bool) {
	switch len(tok) {
	case 2:
		return pivotYear(atoi(tok)), true
	case 4:
		return atoi(tok), true
	}
	return 0, false
}

func build(d dayParts, c clock) (time.Time, bool) {
	if d.month < time.January || d.month > time.December {
		return time.Time{}, false
	}
	if d.day < 1 || d.day > daysIn(d.month, d.year) {
		return time.Time{}, false
	}
	loc := time.UTC
	if c.offset != 0 {
		loc = time.FixedZone("", c.offset*60)
	}
	return time.Date(d.year, d.month, d.day, c.hour, c.min, c.sec, c.nsec, loc), true
}

func ordinalDay(tok string) string {
	if len(tok) < 3 || len(tok) > 4 {
		return ""
	}
	n, suffix := tok[:len(tok)-2], tok[len(tok)-2:]
	switch suffix {
	case "st", "nd", "rd", "th":
		if isDigits(n) {
			return n
		}
	}
	return ""
}

func isDateSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var weekdayNames = map[string]bool{
	"mon": true, "monday": true,
	"tue": true, "tues": true, "tuesday": true,
	"wed": true, "wednesday": true,
	"thu": true, "thur": true, "thurs": true, "thursday": true,
	"fri": true, "friday": true,
	"sat": true, "saturday": true,
	"sun": true, "sunday": true,
}
