package wfh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// DAY TESTS
// =============================================================================

func TestParseDay_RoundTrip(t *testing.T) {
	// GIVEN: A wire-format date
	// WHEN: Parsing and formatting
	// THEN: The string round-trips unchanged

	d, err := ParseDay("2025-06-11")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-11", d.String())
	assert.Equal(t, time.Wednesday, d.Weekday())
}

func TestParseDay_Invalid(t *testing.T) {
	cases := []string{"", "11/06/2025", "2025-6-11", "2025-13-01", "not-a-date"}
	for _, s := range cases {
		_, err := ParseDay(s)
		assert.Error(t, err, "should reject %q", s)
	}
}

func TestDayOf_DropsTimeOfDay(t *testing.T) {
	// GIVEN: An instant late in the day in a non-UTC zone
	// WHEN: Truncating to a Day
	// THEN: Only the calendar fields survive

	loc := time.FixedZone("UTC+5", 5*3600)
	instant := time.Date(2025, time.June, 11, 23, 45, 0, 0, loc)

	d := DayOf(instant)
	assert.Equal(t, "2025-06-11", d.String())
	assert.True(t, d.Equal(NewDay(2025, time.June, 11)))
}

func TestDay_Comparisons(t *testing.T) {
	a := NewDay(2025, time.June, 11)
	b := NewDay(2025, time.June, 12)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.AfterOrEqual(a))
	assert.False(t, a.Equal(b))
}

// =============================================================================
// WEEK AND MONTH BOUNDARY TESTS
// =============================================================================

func TestStartOfWeek_MondayBased(t *testing.T) {
	// GIVEN: Each weekday of one ISO week (2025-06-09 is a Monday)
	// WHEN: Computing the start of week
	// THEN: Monday comes back for all seven, including Sunday

	monday := NewDay(2025, time.June, 9)
	for i := 0; i < 7; i++ {
		d := monday.AddDays(i)
		assert.True(t, d.StartOfWeek().Equal(monday),
			"start of week for %s should be %s, got %s", d, monday, d.StartOfWeek())
	}
}

func TestEndOfWeek_Sunday(t *testing.T) {
	wednesday := NewDay(2025, time.June, 11)
	assert.Equal(t, "2025-06-15", wednesday.EndOfWeek().String())
	assert.Equal(t, time.Sunday, wednesday.EndOfWeek().Weekday())
}

func TestWeekOf_CrossesMonthBoundary(t *testing.T) {
	// GIVEN: A day whose ISO week spans two months (2025-07-01 is a Tuesday)
	// WHEN: Computing the week range
	// THEN: The range starts in June and ends in July

	week := WeekOf(NewDay(2025, time.July, 1))
	assert.Equal(t, "2025-06-30", week.Start.String())
	assert.Equal(t, "2025-07-06", week.End.String())
}

func TestMonthOf_HandlesVaryingLengths(t *testing.T) {
	feb := MonthOf(NewDay(2024, time.February, 10)) // leap year
	assert.Equal(t, "2024-02-01", feb.Start.String())
	assert.Equal(t, "2024-02-29", feb.End.String())

	june := MonthOf(NewDay(2025, time.June, 30))
	assert.Equal(t, "2025-06-01", june.Start.String())
	assert.Equal(t, "2025-06-30", june.End.String())
}

// =============================================================================
// DATE RANGE TESTS
// =============================================================================

func TestDateRange_Contains_InclusiveBounds(t *testing.T) {
	rng := DateRange{
		Start: NewDay(2025, time.June, 9),
		End:   NewDay(2025, time.June, 15),
	}

	assert.True(t, rng.Contains(NewDay(2025, time.June, 9)), "start is inclusive")
	assert.True(t, rng.Contains(NewDay(2025, time.June, 15)), "end is inclusive")
	assert.True(t, rng.Contains(NewDay(2025, time.June, 12)))
	assert.False(t, rng.Contains(NewDay(2025, time.June, 8)))
	assert.False(t, rng.Contains(NewDay(2025, time.June, 16)))
}

// =============================================================================
// CLOCK TESTS
// =============================================================================

func TestFixedClock_ReturnsFrozenDay(t *testing.T) {
	clock := FixedClock{Day: NewDay(2025, time.June, 11)}
	assert.Equal(t, "2025-06-11", clock.Today().String())
}
