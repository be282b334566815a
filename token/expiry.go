package token

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidExpiry is returned for expiry strings that cannot be parsed
var ErrInvalidExpiry = errors.New("invalid expiresIn value")

var expiryPattern = regexp.MustCompile(`(?i)^(-?\d*\.?\d+)\s*(milliseconds?|msecs?|ms|seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|years?|yrs?|y)?$`)

const (
	day  = 24 * time.Hour
	week = 7 * day
	year = 365*day + 6*time.Hour
)

// ExpiryOf reads an expiresIn input. Numbers count seconds and strings go
// through ParseExpiry. nil means no expiry.
func ExpiryOf(v any) (time.Duration, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return positive(time.Duration(n) * time.Second)
	case int64:
		return positive(time.Duration(n) * time.Second)
	case float64:
		return positive(time.Duration(n * float64(time.Second)))
	case string:
		return ParseExpiry(n)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidExpiry, v)
	}
}

// ParseExpiry parses a token lifetime such as "1hr", "2 days" or "10m".
// A string without a unit counts milliseconds, so "3600" is 3.6 seconds.
// An empty string means no expiry (0).
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	match := expiryPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidExpiry, s)
	}

	n, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidExpiry, s)
	}

	return positive(time.Duration(n * float64(unitOf(strings.ToLower(match[2])))))
}

func unitOf(unit string) time.Duration {
	switch unit {
	case "years", "year", "yrs", "yr", "y":
		return year
	case "weeks", "week", "w":
		return week
	case "days", "day", "d":
		return day
	case "hours", "hour", "hrs", "hr", "h":
		return time.Hour
	case "minutes", "minute", "mins", "min", "m":
		return time.Minute
	case "milliseconds", "millisecond", "msecs", "msec", "ms":
		return time.Millisecond
	case "seconds", "second", "secs", "sec", "s":
		return time.Second
	default:
		return time.Millisecond
	}
}

func positive(d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidExpiry)
	}
	return d, nil
}
