package wfh

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY - Calendar-day abstraction (this system has no time-of-day)
// =============================================================================

// Day is a calendar date with no time component. All dates in the system
// (request dates, holidays, policy intervals) are Days, normalized to UTC
// midnight so that comparisons are purely date-based.
type Day struct {
	Time time.Time
}

// NewDay constructs a Day from year/month/day.
func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates an arbitrary instant to its calendar day.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// ParseDay parses a YYYY-MM-DD string, the wire format for all dates.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DayOf(t), nil
}

// Comparison
func (d Day) Before(other Day) bool        { return d.Time.Before(other.Time) }
func (d Day) Equal(other Day) bool         { return d.Time.Equal(other.Time) }
func (d Day) After(other Day) bool         { return d.Time.After(other.Time) }
func (d Day) BeforeOrEqual(other Day) bool { return d.Before(other) || d.Equal(other) }
func (d Day) AfterOrEqual(other Day) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Day) Year() int             { return d.Time.Year() }
func (d Day) Month() time.Month     { return d.Time.Month() }
func (d Day) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Day) IsZero() bool          { return d.Time.IsZero() }

func (d Day) String() string { return d.Time.Format("2006-01-02") }

// StartOfWeek returns the Monday of the ISO week containing d.
func (d Day) StartOfWeek() Day {
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDays(-offset)
}

// EndOfWeek returns the Sunday of the ISO week containing d.
func (d Day) EndOfWeek() Day {
	return d.StartOfWeek().AddDays(6)
}

// StartOfMonth returns the first day of d's month.
func (d Day) StartOfMonth() Day {
	return NewDay(d.Year(), d.Month(), 1)
}

// EndOfMonth returns the last day of d's month.
func (d Day) EndOfMonth() Day {
	return NewDay(d.Year(), d.Month()+1, 1).AddDays(-1)
}

// =============================================================================
// DATE RANGE - Inclusive [Start, End] interval of days
// =============================================================================

// DateRange is an inclusive calendar interval. Every interval in the policy
// (allowed scopes, the candidate's ISO week, the current month) is one.
type DateRange struct {
	Start Day
	End   Day
}

// Contains reports whether d falls within [Start, End], bounds included.
func (r DateRange) Contains(d Day) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// WeekOf returns the Monday-Sunday range containing d.
func WeekOf(d Day) DateRange {
	return DateRange{Start: d.StartOfWeek(), End: d.EndOfWeek()}
}

// MonthOf returns the first-to-last-day range of d's month.
func MonthOf(d Day) DateRange {
	return DateRange{Start: d.StartOfMonth(), End: d.EndOfMonth()}
}

// =============================================================================
// CLOCK - Injectable "today" for the engine
// =============================================================================

// Clock supplies the evaluation instant. The engine evaluates date scopes
// relative to Today(), so tests pin it to a fixed day.
type Clock interface {
	Today() Day
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Today() Day { return DayOf(time.Now()) }

// FixedClock always reports the same day.
type FixedClock struct {
	Day Day
}

func (c FixedClock) Today() Day { return c.Day }
