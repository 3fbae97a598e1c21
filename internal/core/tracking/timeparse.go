package tracking

import (
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for single-string timestamps. Layouts without a zone are
// read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
}

var clockLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
}

// parseTimestamp decodes a fully qualified timestamp string into UTC.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseTriple decodes a structured {date, time, timezone} value.
func parseTriple(raw map[string]any) (time.Time, bool) {
	date := stringField(raw, "date")
	clock := stringField(raw, "time")
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	loc, ok := parseZone(stringField(raw, "timezone"))
	if !ok {
		return time.Time{}, false
	}
	value := date + " " + clock
	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseZone understands "", "Z", "UTC", "GMT", "+08:00", "+0800", "+8" and
// the same offsets prefixed with UTC or GMT.
func parseZone(z string) (*time.Location, bool) {
	z = strings.ToUpper(strings.TrimSpace(z))
	z = strings.TrimPrefix(z, "UTC")
	z = strings.TrimPrefix(z, "GMT")
	if z == "" || z == "Z" {
		return time.UTC, true
	}

	sign := 1
	switch z[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return nil, false
	}
	z = strings.ReplaceAll(z[1:], ":", "")
	if !allDigits(z) {
		return nil, false
	}

	var hours, minutes int
	var err error
	switch len(z) {
	case 1, 2:
		hours, err = strconv.Atoi(z)
	case 3, 4:
		hours, err = strconv.Atoi(z[:len(z)-2])
		if err == nil {
			minutes, err = strconv.Atoi(z[len(z)-2:])
		}
	default:
		return nil, false
	}
	if err != nil || hours > 14 || minutes > 59 {
		return nil, false
	}
	return time.FixedZone("", sign*(hours*3600+minutes*60)), true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
