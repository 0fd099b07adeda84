/*
engine.go - The eligibility rule chain

PURPOSE:
  Decides whether a (user, type, date) candidate may be requested, given
  the current policy settings, the requester's usage this week, public
  holidays, and how many colleagues of the same position are already
  approved for that date.

RULE CHAIN:
  The checks run in a fixed order and the first failure short-circuits:

    1. Date scope   - cheap date arithmetic against enabled intervals
    2. Weekday      - blocklist lookup
    3. Weekly cap   - ledger count for this user + holiday count
    4. Concurrency  - cross-user ledger count for the date/position

  Order matters twice over: rejection messages are reason-specific, and
  the checks get progressively more expensive.

PURITY:
  Evaluate performs no writes. A policy violation is a Decision, never an
  error; only store faults surface as errors.

SEE ALSO:
  - settings.go: The rules being applied
  - service.go: The only caller that acts on a Decision
*/
package wfh

import (
	"context"
	"fmt"
)

// =============================================================================
// CANDIDATE & DECISION
// =============================================================================

// Candidate is the tuple being evaluated for permission.
type Candidate struct {
	User *User
	Type RequestType
	Date Day

	// BypassDateScope skips the date-scope check only. The remaining
	// checks always run.
	BypassDateScope bool
}

// Decision is the engine's verdict: Allowed, or a tagged rejection whose
// Message is surfaced to the requester verbatim.
type Decision struct {
	Allowed bool
	Reason  RejectReason
	Message string
}

// Rejection converts a rejecting decision into its error-value form.
// Returns nil for an allowing decision.
func (d Decision) Rejection() *Rejection {
	if d.Allowed {
		return nil
	}
	return &Rejection{Reason: d.Reason, Message: d.Message}
}

func allowed() Decision {
	return Decision{Allowed: true}
}

func rejected(reason RejectReason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine evaluates candidates against the ordered rule chain. It holds
// read-only collaborators and a clock; it never mutates any of them.
type Engine struct {
	Settings SettingsStore
	Ledger   Ledger
	Holidays HolidayStore
	Clock    Clock
}

// NewEngine wires an engine over its read-side collaborators.
func NewEngine(settings SettingsStore, ledger Ledger, holidays HolidayStore) *Engine {
	return &Engine{Settings: settings, Ledger: ledger, Holidays: holidays, Clock: SystemClock{}}
}

// check is one link of the rule chain. A nil Decision pointer means pass.
type check func(ctx context.Context, c Candidate, settings PolicySettings) (*Decision, error)

// Evaluate runs the rule chain and returns the first rejection, or an
// allowing decision when every check passes. The settings document is
// fetched once per evaluation.
func (e *Engine) Evaluate(ctx context.Context, c Candidate) (Decision, error) {
	settings, err := e.Settings.Current(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("load policy settings: %w", err)
	}

	chain := []check{
		e.checkDateScope,
		e.checkWeekday,
		e.checkWeeklyAllowance,
		e.checkConcurrency,
	}

	for _, ck := range chain {
		decision, err := ck(ctx, c, settings)
		if err != nil {
			return Decision{}, err
		}
		if decision != nil {
			return *decision, nil
		}
	}

	return allowed(), nil
}

// =============================================================================
// CHECK 1: DATE SCOPE
// =============================================================================

// checkDateScope validates the candidate date against the enabled policy
// intervals, evaluated relative to today. With no scope enabled the legacy
// next-week-only rule applies, with its own more specific message.
func (e *Engine) checkDateScope(_ context.Context, c Candidate, settings PolicySettings) (*Decision, error) {
	if c.BypassDateScope {
		return nil, nil
	}

	today := e.Clock.Today()
	intervals := settings.AllowedIntervals(today)

	if len(intervals) == 0 {
		nextWeek := WeekOf(today.AddDays(7))
		if !nextWeek.Contains(c.Date) {
			d := rejected(OutsideAllowedRange, "You can only request WFH for next week.")
			return &d, nil
		}
		return nil, nil
	}

	for _, interval := range intervals {
		if interval.Contains(c.Date) {
			return nil, nil
		}
	}

	d := rejected(OutsideAllowedRange, "Selected date is outside the allowed WFH date range.")
	return &d, nil
}

// =============================================================================
// CHECK 2: WEEKDAY
// =============================================================================

// checkWeekday rejects dates landing on a blocked weekday. The rule is
// evaluated for every candidate type, matching the historical behaviour.
func (e *Engine) checkWeekday(_ context.Context, c Candidate, settings PolicySettings) (*Decision, error) {
	if settings.DisallowedOn(c.Date) {
		d := rejected(DisallowedWeekday, "WFH requests on this weekday are not allowed.")
		return &d, nil
	}
	return nil, nil
}

// =============================================================================
// CHECK 3: WEEKLY ALLOWANCE
// =============================================================================

// checkWeeklyAllowance enforces the per-user weekly WFH cap, reduced by
// any public holidays in the candidate's ISO week. The effective cap never
// goes negative.
func (e *Engine) checkWeeklyAllowance(ctx context.Context, c Candidate, _ PolicySettings) (*Decision, error) {
	week := WeekOf(c.Date)

	used, err := e.Ledger.CountByUserInRange(ctx, c.User.ID, TypeWfh, week)
	if err != nil {
		return nil, fmt.Errorf("count weekly requests: %w", err)
	}

	holidaysInWeek, err := e.Holidays.CountInRange(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("count holidays in week: %w", err)
	}

	base := c.User.WeeklyAllowance()
	effectiveMax := base - holidaysInWeek
	if effectiveMax < 0 {
		effectiveMax = 0
	}

	if effectiveMax == 0 {
		message := fmt.Sprintf("No WFH allowed this week. Your weekly allowance is %d day(s), already used.", base)
		if holidaysInWeek > 0 {
			message = "No WFH allowed this week because of public holidays."
		}
		d := rejected(NoAllowanceThisWeek, message)
		return &d, nil
	}

	if used >= effectiveMax {
		message := fmt.Sprintf("You can request up to %d WFH day(s) per week.", effectiveMax)
		if holidaysInWeek > 0 {
			message = fmt.Sprintf("You can request up to %d WFH day(s) this week due to public holidays.", effectiveMax)
		}
		d := rejected(WeeklyLimitReached, message)
		return &d, nil
	}

	return nil, nil
}

// =============================================================================
// CHECK 4: POSITION CONCURRENCY
// =============================================================================

// checkConcurrency caps how many colleagues sharing the candidate's
// position may be approved for WFH on the same date.
func (e *Engine) checkConcurrency(ctx context.Context, c Candidate, settings PolicySettings) (*Decision, error) {
	samePosition, err := e.Ledger.CountApprovedByPosition(ctx, c.Date, TypeWfh, c.User.Position)
	if err != nil {
		return nil, fmt.Errorf("count approved colleagues: %w", err)
	}

	limit := settings.LimitFor(c.User.Position)
	if samePosition >= limit {
		d := rejected(ConcurrencyLimitExceeded, fmt.Sprintf(
			"There are already %d colleague(s) with position %s working from home on this date. Maximum allowed is %d.",
			samePosition, c.User.Position, limit))
		return &d, nil
	}

	return nil, nil
}
