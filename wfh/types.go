/*
Package wfh implements the work-from-home request engine.

PURPOSE:
  This package contains the domain types and decision logic for managing
  date-scoped remote-work requests: who may request which day, how weekly
  allowances shrink around public holidays, and how many colleagues sharing
  a position may be out on the same date.

KEY CONCEPTS IN THIS FILE (types.go):
  - User: The requester/approver record (read-only to the engine)
  - Request: A dated request of type wfh/sick/timeoff with a lifecycle
  - Holiday: A public holiday that reduces weekly allowance
  - RequestView: A request joined with its owner for list projections

DESIGN PRINCIPLES:
  1. Calendar-only: every date is a Day (no time component, see calendar.go)
  2. Decisions, not errors: policy violations are values (see engine.go)
  3. Type safety: roles, request types and statuses are typed strings
  4. The engine never mutates; all writes go through the Service

SEE ALSO:
  - settings.go: Administrator-configurable eligibility rules
  - engine.go: The ordered rule chain deciding eligibility
  - service.go: Request lifecycle (create/approve/reject/reschedule)
  - store.go: Persistence interfaces the engine reads through
*/
package wfh

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleUser      Role = "user"
	RoleApprover  Role = "approver"
	RoleAdmin     Role = "admin"
	RoleSuperuser Role = "superuser"
)

// Elevated reports whether the role may act on other users' requests.
// Admins and approvers share elevated privilege.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleApprover
}

// =============================================================================
// USER - External entity, referenced by requests
// =============================================================================

// User is an employee record. The engine reads Position and WfhWeekly;
// everything else belongs to the directory and transport layers.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Position     string
	WfhWeekly    int // weekly WFH allowance, default 1

	// Annual leave allowances, in days. Decimal so half days work.
	SickDays    decimal.Decimal
	TimeOffDays decimal.Decimal

	IsActive  bool
	CreatedAt time.Time
}

// DefaultWfhWeekly is applied when a user record carries no allowance.
const DefaultWfhWeekly = 1

// DefaultLeaveDays is the yearly sick/time-off allowance for new users.
const DefaultLeaveDays int64 = 15

// WeeklyAllowance returns the user's weekly WFH quota, before holidays
// are subtracted.
func (u *User) WeeklyAllowance() int {
	if u.WfhWeekly <= 0 {
		return DefaultWfhWeekly
	}
	return u.WfhWeekly
}

// =============================================================================
// HOLIDAY
// =============================================================================

// Holiday is a public holiday. Its only effect on the engine is reducing
// the weekly allowance of the week it falls in.
type Holiday struct {
	ID   string
	Name string
	Date Day
}

// =============================================================================
// REQUEST - The unit the lifecycle manages
// =============================================================================

type RequestType string

const (
	TypeWfh     RequestType = "wfh"
	TypeSick    RequestType = "sick"
	TypeTimeOff RequestType = "timeoff"
)

// Valid reports whether t is one of the known request types.
func (t RequestType) Valid() bool {
	return t == TypeWfh || t == TypeSick || t == TypeTimeOff
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	// There is no persisted "rejected" status: rejection deletes the
	// record after notifying the owner.
)

// Request is a single-day request. Only Date (reschedule) and Status
// (approve) are mutable; deletion is permanent.
type Request struct {
	ID         string
	UserID     string
	Type       RequestType
	Date       Day
	Status     RequestStatus
	Motivation string
	CreatedAt  time.Time
}

// RequestView is a request denormalized with its owning user, used by the
// pending/approved list projections.
type RequestView struct {
	Request
	UserName     string
	UserEmail    string
	UserPosition string
	UserRole     Role
}
