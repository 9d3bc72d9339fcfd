// Package duration parses human-readable duration strings ("15m", "24h",
// "14d") used in TTL configuration. time.ParseDuration stops at hours, so
// day and week units get their own parser.
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tazhibayda/identity-service/internal/apperr"
)

var units = map[string]time.Duration{
	"ms": time.Millisecond, "millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
}

// Parse converts "<integer><unit>" into a time.Duration. Units are
// case-insensitive; no whitespace is allowed between number and unit.
func Parse(s string) (time.Duration, error) {
	if s == "" {
		return 0, apperr.Validation("duration is empty")
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, apperr.Validation(fmt.Sprintf("invalid duration %q", s))
	}
	if i == len(s) {
		return 0, apperr.Validation(fmt.Sprintf("duration %q is missing a unit", s))
	}
	unit := s[i:]
	for j := 0; j < len(unit); j++ {
		c := unit[j]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return 0, apperr.Validation(fmt.Sprintf("invalid duration %q", s))
		}
	}
	mult, ok := units[strings.ToLower(unit)]
	if !ok {
		return 0, apperr.Validation(fmt.Sprintf("unknown duration unit %q", unit))
	}
	n, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, apperr.Validation(fmt.Sprintf("invalid duration %q", s))
	}
	return time.Duration(n) * mult, nil
}

// Millis is Parse with the result in milliseconds.
func Millis(s string) (int64, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return d.Milliseconds(), nil
}
