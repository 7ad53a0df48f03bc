package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Accepted date layouts. Date-only values are read as UTC midnight and
// date-time values in the local zone, as browsers do.
var (
	dateLayouts     = []string{"2006-01-02"}
	dateTimeLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04"}
)

// ParseDate parses a date or date-time form value.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// InclusiveDays returns floor((end-start)/day)+1 as a string, or "" when
// either date is invalid or end is before start.
func InclusiveDays(start, end string) string {
	from, to, ok := dateRange(start, end)
	if !ok {
		return ""
	}
	days := int64(math.Floor(float64(to.Sub(from)) / float64(day)))
	return strconv.FormatInt(days+1, 10)
}

// CeilDays returns ceil((end-start)/day) as a string, or "" when either
// date is invalid or end is before start.
func CeilDays(start, end string) string {
	from, to, ok := dateRange(start, end)
	if !ok {
		return ""
	}
	days := int64(math.Ceil(float64(to.Sub(from)) / float64(day)))
	return strconv.FormatInt(days, 10)
}

// DateRangeInverted reports whether both dates parse and end is before start.
func DateRangeInverted(start, end string) bool {
	from, okFrom := ParseDate(start)
	to, okTo := ParseDate(end)
	return okFrom && okTo && to.Before(from)
}

func dateRange(start, end string) (time.Time, time.Time, bool) {
	from, ok := ParseDate(start)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := ParseDate(end)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
