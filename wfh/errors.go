/*
errors.go - Centralized error types for the WFH engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The transport layer maps these to HTTP statuses without inspecting
  error strings.

ERROR CATEGORIES:
  1. Not-found errors - Referenced user/request/holiday is absent
  2. Client errors - Bad input or insufficient privilege
  3. Rejections - Engine decisions surfaced as validation failures

PROPAGATION POLICY:
  The eligibility engine never returns an error for a policy violation;
  Evaluate returns a Decision. The lifecycle Service converts a rejecting
  Decision into a *Rejection so callers get one error taxonomy. Store
  faults propagate untouched and map to a server error.

SEE ALSO:
  - engine.go: Produces Decisions
  - service.go: Converts rejecting Decisions into *Rejection
*/
package wfh

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrHolidayNotFound is returned when a referenced holiday doesn't exist.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrForbidden is returned when a non-elevated actor targets another user.
	ErrForbidden = errors.New("forbidden")

	// ErrDateRequired is returned when an operation needs a date and got none.
	ErrDateRequired = errors.New("date is required")

	// ErrInvalidType is returned for an unknown request type.
	ErrInvalidType = errors.New("invalid request type")

	// ErrDuplicateHoliday is returned when a holiday already exists on a date.
	ErrDuplicateHoliday = errors.New("a holiday already exists on this date")

	// ErrNotEligible is the sentinel every *Rejection unwraps to.
	ErrNotEligible = errors.New("request not eligible")
)

// =============================================================================
// REJECTION - An engine decision carried as an error value
// =============================================================================

// RejectReason tags why the eligibility chain rejected a candidate.
type RejectReason string

const (
	OutsideAllowedRange      RejectReason = "outside_allowed_range"
	DisallowedWeekday        RejectReason = "disallowed_weekday"
	NoAllowanceThisWeek      RejectReason = "no_allowance_this_week"
	WeeklyLimitReached       RejectReason = "weekly_limit_reached"
	ConcurrencyLimitExceeded RejectReason = "concurrency_limit_exceeded"
)

// Rejection is a failed eligibility decision. Message is client-facing and
// surfaced verbatim by the transport layer.
type Rejection struct {
	Reason  RejectReason
	Message string
}

func (r *Rejection) Error() string { return r.Message }

func (r *Rejection) Unwrap() error { return ErrNotEligible }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrHolidayNotFound)
}

// IsForbidden returns true for privilege failures.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsClientError returns true if the error is due to invalid client input
// or an engine rejection, as opposed to a dependency fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotEligible) ||
		errors.Is(err, ErrDateRequired) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrDuplicateHoliday)
}
