package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// DATES - Calendar dates as stored and exchanged (YYYY-MM-DD)
// =============================================================================

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ParseOptionalDate returns nil for an empty string.
func ParseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate formats t as YYYY-MM-DD; the zero time formats as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatOptionalDate formats a nullable date.
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}

// ValidMonth reports whether s is a YYYY-MM month key.
func ValidMonth(s string) bool {
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}

// MonthKey returns the YYYY-MM bucket for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// Today returns the current date at midnight UTC.
func Today() time.Time {
	return TruncateDay(time.Now().UTC())
}

// TruncateDay drops the time of day.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// PERIOD - Inclusive date range used by list filters
// =============================================================================

// Period is an inclusive [Start, End] range. A zero bound is open.
type Period struct {
	Start time.Time
	End   time.Time
}

// ParsePeriod builds a Period from optional from/to query values.
func ParsePeriod(from, to string) (Period, error) {
	var p Period
	var err error
	if from != "" {
		if p.Start, err = ParseDate(from); err != nil {
			return p, err
		}
	}
	if to != "" {
		if p.End, err = ParseDate(to); err != nil {
			return p, err
		}
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		return p, fmt.Errorf("invalid period: %s is before %s", to, from)
	}
	return p, nil
}

// Contains returns true if t falls within the period.
func (p Period) Contains(t time.Time) bool {
	d := TruncateDay(t)
	if !p.Start.IsZero() && d.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && d.After(p.End) {
		return false
	}
	return true
}

// IsOpen reports whether neither bound is set.
func (p Period) IsOpen() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

func (p Period) String() string {
	return "[" + FormatDate(p.Start) + ", " + FormatDate(p.End) + "]"
}
