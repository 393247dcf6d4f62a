package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// zoneSuffix matches a trailing Z or a numeric UTC offset (+03:00, -0500).
var zoneSuffix = regexp.MustCompile(`(?i)(z|[+-]\d{2}:?\d{2})$`)

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseLocalTime turns a timestamp string into an absolute instant.
// Strings carrying Z or an offset are taken as is; anything else is wall-clock
// time in loc (UTC when loc is nil).
func ParseLocalTime(value string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	if loc == nil {
		loc = time.UTC
	}

	if zoneSuffix.MatchString(s) && len(s) > len("2006-01-02") {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05Z0700", "2006-01-02T15:04Z07:00"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid zoned time %q", value)
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", value)
}

// LoadLocation resolves an IANA zone name, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		ErrorLogger.WithField("timezone", name).Warn("unknown timezone, using UTC")
		return time.UTC
	}
	return loc
}
