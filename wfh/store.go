/*
store.go - Persistence interfaces for the WFH engine

PURPOSE:
  Defines the interfaces between the domain logic and the database. The
  engine only reads through Ledger/HolidayStore/SettingsStore; the Service
  also writes through Ledger and resolves people through UserDirectory.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite store
  - wfh/store/memory.go:    In-memory store for tests

SEE ALSO:
  - engine.go: Read-side consumer
  - service.go: Read/write consumer
*/
package wfh

import "context"

// UserDirectory resolves users. Absent users are reported as (nil, nil),
// not as an error; the caller decides whether absence is fatal.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByRole(ctx context.Context, role Role) ([]User, error)
}

// UserAdmin extends the directory with the administrative write paths:
// registration and the user listing the approval pages are built on.
type UserAdmin interface {
	UserDirectory

	// SaveUser inserts or replaces a directory record.
	SaveUser(ctx context.Context, u User) error

	// ListUsers returns every user ordered by name.
	ListUsers(ctx context.Context) ([]User, error)

	// DeleteUser removes a user and every request they own. Returns
	// ErrUserNotFound when no such user exists.
	DeleteUser(ctx context.Context, id string) error
}

// Ledger is the queryable record of requests. Appends happen on create;
// the engine only counts.
type Ledger interface {
	// Append persists a new request.
	Append(ctx context.Context, r *Request) error

	// Get returns the request or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*Request, error)

	// Update persists date/status mutations of an existing request.
	Update(ctx context.Context, r *Request) error

	// Remove deletes a request permanently.
	Remove(ctx context.Context, id string) error

	// CountByUserInRange counts persisted requests of one type for a user
	// whose date falls in the inclusive range, regardless of status.
	CountByUserInRange(ctx context.Context, userID string, typ RequestType, rng DateRange) (int, error)

	// CountApprovedByPosition counts approved requests of one type on
	// exactly the given date whose owner holds the given position.
	CountApprovedByPosition(ctx context.Context, date Day, typ RequestType, position string) (int, error)

	// ListByStatus returns requests with the given status, joined with
	// their owning user, ordered by creation time.
	ListByStatus(ctx context.Context, status RequestStatus) ([]RequestView, error)
}

// HolidayStore owns the holiday calendar. Method names are disambiguated
// so a single concrete store can implement every interface in this file.
type HolidayStore interface {
	// CountInRange counts holidays whose date falls in the inclusive range.
	CountInRange(ctx context.Context, rng DateRange) (int, error)

	// FindByDate returns the holiday on a date or (nil, nil).
	FindByDate(ctx context.Context, d Day) (*Holiday, error)

	// GetHoliday returns the holiday or (nil, nil) when absent.
	GetHoliday(ctx context.Context, id string) (*Holiday, error)

	// ListHolidays returns all holidays sorted by date.
	ListHolidays(ctx context.Context) ([]Holiday, error)

	SaveHoliday(ctx context.Context, h *Holiday) error
	UpdateHoliday(ctx context.Context, h *Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
}

// SettingsStore holds the PolicySettings singleton.
type SettingsStore interface {
	// Current returns the active settings, creating the default document
	// if none exists yet.
	Current(ctx context.Context) (PolicySettings, error)

	// SaveSettings replaces the active settings.
	SaveSettings(ctx context.Context, s PolicySettings) error
}
