package date

import (
	"fmt"
	"strconv"
	"strings"
)

// Zone abbreviations seen in feeds, as offsets in minutes east of UTC.
// Ambiguous names take their most common meaning in feeds: IST is India,
// CST is US Central, BST is British Summer Time.
var zoneOffsets = map[string]int{
	"GMT": 0, "UT": 0, "UTC": 0, "Z": 0, "WET": 0,
	"BST": 60, "WEST": 60, "CET": 60, "MET": 60,
	"CEST": 120, "MEST": 120, "EET": 120,
	"EEST": 180, "MSK": 180,
	"IST": 330,
	"ICT": 420, "WIB": 420,
	"HKT": 480, "SGT": 480, "AWST": 480, "PHT": 480,
	"JST": 540, "KST": 540,
	"ACST": 570,
	"AEST": 600, "CHST": 600,
	"AEDT": 660,
	"NZST": 720,
	"NZDT": 780,
	"BRT": -180, "ART": -180,
	"NST": -210, "NDT": -150,
	"AST": -240, "ADT": -180,
	"EST": -300, "EDT": -240,
	"CST": -360, "CDT": -300,
	"MST": -420, "MDT": -360,
	"PST": -480, "PDT": -420,
	"AKST": -540, "AKDT": -480,
	"HST": -600, "HAST": -600, "HADT": -540,
	"SST": -660,
}

// rfcZone rewrites a trailing zone token as a numeric offset. Unknown
// alphabetic zones, military letters included, read as UTC the same way
// time.Parse handles an unknown abbreviation.
func rfcZone(token string) (string, bool) {
	upper := strings.ToUpper(token)
	if minutes, ok := zoneOffsets[upper]; ok {
		return formatOffset(minutes), true
	}
	if isAlpha(upper) && len(upper) <= 5 {
		return "+0000", true
	}
	if minutes, ok := numericOffset(token); ok {
		return formatOffset(minutes), true
	}
	return "", false
}

// numericOffset reads +HHMM, +HH:MM and +HH.
func numericOffset(s string) (int, bool) {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return 0, false
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	digits := strings.Replace(s[1:], ":", "", 1)
	if !isDigits(digits) {
		return 0, false
	}

	var hh, mm int
	switch len(digits) {
	case 1, 2:
		hh, _ = strconv.Atoi(digits)
	case 4:
		hh, _ = strconv.Atoi(digits[:2])
		mm, _ = strconv.Atoi(digits[2:])
	default:
		return 0, false
	}
	if hh > 14 || mm > 59 {
		return 0, false
	}
	return sign * (hh*60 + mm), true
}

func formatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("%c%02d%02d", sign, minutes/60, minutes%60)
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
