// Package period maps timestamps onto calendar-month keys.
//
// Event catalogues stamp their monthly summaries on the last day of the month
// while volume reports use the first day. Both collapse to the same Period,
// which is what lets the two tables be joined.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Period is a calendar month, stored as months elapsed since January of year 0.
// The integer representation keeps periods ordered and usable as map keys.
type Period int32

// ErrInvalidTimestamp is returned when no known layout matches a timestamp.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// timestampLayouts lists the layouts seen in catalogue and volume exports.
// Fractional seconds are accepted by time.Parse without being spelled out.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// Of returns the month containing t, read from t's wall clock.
func Of(t time.Time) Period {
	return New(t.Year(), t.Month())
}

// New builds a period from a year and month.
func New(year int, month time.Month) Period {
	return Period(year*12 + int(month) - 1)
}

// Year returns the calendar year.
func (p Period) Year() int {
	return int(p) / 12
}

// Month returns the calendar month.
func (p Period) Month() time.Month {
	return time.Month(int(p)%12 + 1)
}

// String renders the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year(), int(p.Month()))
}

// Parse reads a period written as YYYY-MM. A full date (YYYY-MM-DD) is also
// accepted and truncated to its month.
func Parse(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01", s); err == nil {
		return Of(t), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Of(t), nil
	}
	return 0, fmt.Errorf("invalid period %q: expected YYYY-MM", s)
}

// ParseTimestamp parses a naive timestamp using the known layouts. No time
// zone conversion is applied: an explicit offset is kept as-is so the wall
// clock month is preserved.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
