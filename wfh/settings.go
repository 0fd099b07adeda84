/*
settings.go - Administrator-configurable eligibility rules

PURPOSE:
  PolicySettings is the single, global policy document the engine reads on
  every evaluation: which calendar scopes are open for requests, which
  weekdays are blocked, and how many colleagues per position may be out on
  the same date.

SINGLETON LIFECYCLE:
  Exactly one settings value exists. SettingsStore.Current() lazily creates
  it with defaults on first read; it is mutated only through an explicit
  update and never deleted. The engine fetches it once per evaluation -
  there is no ambient global.

DEFAULTS:
  - Scopes: next week only (the legacy rule)
  - Disallowed weekdays: Monday, Friday, Saturday, Sunday
  - Position concurrency: 1 for any position without an explicit cap

SEE ALSO:
  - engine.go: Consumes these settings
  - store.go: SettingsStore interface
*/
package wfh

import "time"

// =============================================================================
// DATE SCOPES - Named intervals requests may fall into
// =============================================================================

// DateScopes enables named calendar intervals, evaluated relative to the
// day of evaluation.
type DateScopes struct {
	ThisWeek    bool
	NextWeek    bool
	WithinMonth bool
}

// Any reports whether at least one scope is enabled.
func (s DateScopes) Any() bool {
	return s.ThisWeek || s.NextWeek || s.WithinMonth
}

// =============================================================================
// POLICY SETTINGS
// =============================================================================

// PolicySettings holds the currently active eligibility rules.
type PolicySettings struct {
	AllowedDateScopes  DateScopes
	DisallowedWeekdays []time.Weekday
	// PositionConcurrency caps simultaneously approved WFH requests per
	// calendar date among users sharing a position. Use LimitFor for
	// lookups; missing entries default to 1.
	PositionConcurrency map[string]int
	UpdatedAt           time.Time
}

// DefaultPositionLimit applies to positions with no explicit cap.
const DefaultPositionLimit = 1

// defaultDisallowedWeekdays blocks Monday, Friday and the weekend, keeping
// the pre-settings behaviour when no weekdays are configured.
var defaultDisallowedWeekdays = []time.Weekday{
	time.Monday, time.Friday, time.Sunday, time.Saturday,
}

// DefaultSettings returns the settings created on first access.
func DefaultSettings() PolicySettings {
	return PolicySettings{
		AllowedDateScopes:   DateScopes{NextWeek: true},
		DisallowedWeekdays:  append([]time.Weekday(nil), defaultDisallowedWeekdays...),
		PositionConcurrency: map[string]int{},
	}
}

// LimitFor returns the concurrency cap for a position, defaulting to
// DefaultPositionLimit when no entry exists.
func (p PolicySettings) LimitFor(position string) int {
	if limit, ok := p.PositionConcurrency[position]; ok {
		return limit
	}
	return DefaultPositionLimit
}

// EffectiveDisallowedWeekdays returns the configured weekday blocklist, or
// the default set when none is configured.
func (p PolicySettings) EffectiveDisallowedWeekdays() []time.Weekday {
	if len(p.DisallowedWeekdays) == 0 {
		return defaultDisallowedWeekdays
	}
	return p.DisallowedWeekdays
}

// DisallowedOn reports whether requests may not land on d's weekday.
func (p PolicySettings) DisallowedOn(d Day) bool {
	for _, wd := range p.EffectiveDisallowedWeekdays() {
		if d.Weekday() == wd {
			return true
		}
	}
	return false
}

// AllowedIntervals builds the set of enabled intervals relative to today.
// An empty result means no scope is enabled and the legacy next-week-only
// fallback applies (the engine handles that case).
func (p PolicySettings) AllowedIntervals(today Day) []DateRange {
	var intervals []DateRange
	if p.AllowedDateScopes.ThisWeek {
		intervals = append(intervals, WeekOf(today))
	}
	if p.AllowedDateScopes.NextWeek {
		intervals = append(intervals, WeekOf(today.AddDays(7)))
	}
	if p.AllowedDateScopes.WithinMonth {
		intervals = append(intervals, MonthOf(today))
	}
	return intervals
}

// =============================================================================
// SETTINGS UPDATE - Partial, field-by-field merge
// =============================================================================

// SettingsUpdate is a partial update; nil fields are left untouched.
type SettingsUpdate struct {
	AllowedDateScopes   *DateScopes
	DisallowedWeekdays  []time.Weekday // nil = unchanged, empty = clear
	PositionConcurrency map[string]int // merged; negative caps ignored
}

// Apply merges the update into the settings. Weekdays outside 0..6 and
// negative concurrency caps are dropped rather than stored.
func (u SettingsUpdate) Apply(p *PolicySettings, now time.Time) {
	if u.AllowedDateScopes != nil {
		p.AllowedDateScopes = *u.AllowedDateScopes
	}
	if u.DisallowedWeekdays != nil {
		filtered := make([]time.Weekday, 0, len(u.DisallowedWeekdays))
		for _, wd := range u.DisallowedWeekdays {
			if wd >= time.Sunday && wd <= time.Saturday {
				filtered = append(filtered, wd)
			}
		}
		p.DisallowedWeekdays = filtered
	}
	if u.PositionConcurrency != nil {
		if p.PositionConcurrency == nil {
			p.PositionConcurrency = map[string]int{}
		}
		for position, limit := range u.PositionConcurrency {
			if limit >= 0 {
				p.PositionConcurrency[position] = limit
			}
		}
	}
	p.UpdatedAt = now
}
