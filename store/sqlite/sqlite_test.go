package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichelangeloMastroroccoDeGrandis/leaveboard-server/store/sqlite"
	"github.com/MichelangeloMastroroccoDeGrandis/leaveboard-server/wfh"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testUser(id, position string, role wfh.Role) wfh.User {
	return wfh.User{
		ID:           id,
		Name:         "User " + id,
		Email:        id + "@example.com",
		PasswordHash: "$2a$10$notarealhash",
		Role:         role,
		Position:     position,
		WfhWeekly:    wfh.DefaultWfhWeekly,
		SickDays:     decimal.NewFromInt(wfh.DefaultLeaveDays),
		TimeOffDays:  decimal.NewFromInt(wfh.DefaultLeaveDays),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

func day(year int, month time.Month, dom int) wfh.Day {
	return wfh.NewDay(year, month, dom)
}

func seedRequest(t *testing.T, store *sqlite.Store, id, userID string, d wfh.Day, status wfh.RequestStatus) *wfh.Request {
	t.Helper()
	r := &wfh.Request{
		ID:        id,
		UserID:    userID,
		Type:      wfh.TypeWfh,
		Date:      d,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Append(context.Background(), r))
	return r
}

// =============================================================================
// USER DIRECTORY TESTS
// =============================================================================

func TestStore_SaveAndFindUser(t *testing.T) {
	// GIVEN: A saved user
	// WHEN: Looking the user up by ID and by email
	// THEN: Both lookups return the same record with decimals intact

	store := newTestStore(t)
	ctx := context.Background()

	u := testUser("u-1", "developer", wfh.RoleUser)
	u.SickDays = decimal.NewFromFloat(12.5)
	require.NoError(t, store.SaveUser(ctx, u))

	byID, err := store.FindByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "u-1@example.com", byID.Email)
	assert.True(t, byID.SickDays.Equal(decimal.NewFromFloat(12.5)),
		"sick days should round-trip: got %s", byID.SickDays)

	byEmail, err := store.FindByEmail(ctx, "u-1@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, byID.ID, byEmail.ID)
}

func TestStore_FindUser_Absent_ReturnsNilNil(t *testing.T) {
	// GIVEN: An empty store
	// WHEN: Looking up an unknown user
	// THEN: Returns (nil, nil) - absence is not an error

	store := newTestStore(t)

	u, err := store.FindByID(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestStore_SaveUser_UpsertsByID(t *testing.T) {
	// GIVEN: An existing user
	// WHEN: Saving the same ID with changed fields
	// THEN: The record is updated in place, not duplicated

	store := newTestStore(t)
	ctx := context.Background()

	u := testUser("u-1", "developer", wfh.RoleUser)
	require.NoError(t, store.SaveUser(ctx, u))

	u.Position = "designer"
	u.WfhWeekly = 3
	require.NoError(t, store.SaveUser(ctx, u))

	got, err := store.FindByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "designer", got.Position)
	assert.Equal(t, 3, got.WfhWeekly)

	all, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_FindByRole(t *testing.T) {
	// GIVEN: Users across roles
	// WHEN: Querying by role
	// THEN: Only matching users come back

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, testUser("u-1", "developer", wfh.RoleUser)))
	require.NoError(t, store.SaveUser(ctx, testUser("u-2", "developer", wfh.RoleApprover)))
	require.NoError(t, store.SaveUser(ctx, testUser("u-3", "manager", wfh.RoleAdmin)))

	approvers, err := store.FindByRole(ctx, wfh.RoleApprover)
	require.NoError(t, err)
	require.Len(t, approvers, 1)
	assert.Equal(t, "u-2", approvers[0].ID)
}

func TestStore_DeleteUser_CascadesRequests(t *testing.T) {
	// GIVEN: Two users with requests
	// WHEN: Deleting one user
	// THEN: Their requests go too; the other user's data is untouched

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, testUser("u-1", "developer", wfh.RoleUser)))
	require.NoError(t, store.SaveUser(ctx, testUser("u-2", "developer", wfh.RoleUser)))
	seedRequest(t, store, "r-1", "u-1", day(2025, time.June, 17), wfh.StatusPending)
	seedRequest(t, store, "r-2", "u-2", day(2025, time.June, 17), wfh.StatusPending)

	require.NoError(t, store.DeleteUser(ctx, "u-1"))

	gone, err := store.FindByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	r1, err := store.Get(ctx, "r-1")
	require.NoError(t, err)
	assert.Nil(t, r1, "deleted user's request should be gone")

	r2, err := store.Get(ctx, "r-2")
	require.NoError(t, err)
	assert.NotNil(t, r2, "other users' requests survive")
}

func TestStore_DeleteUser_Missing_ReturnsNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.DeleteUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, wfh.ErrUserNotFound)
}

// =============================================================================
// LEDGER TESTS
// =============================================================================

func TestStore_AppendAndGetRequest(t *testing.T) {
	// GIVEN: A persisted request
	// WHEN: Fetching it by ID
	// THEN: Date and status round-trip as calendar values

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, testUser("u-1", "developer", wfh.RoleUser)))

	seedRequest(t, store, "req-1", "u-1", day(2025, time.June, 11), wfh.StatusPending)

	got, err := store.Get(ctx, "req-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2025-06-11", got.Date.String())
	assert.Equal(t, wfh.StatusPending, got.Status)
}

func TestStore_GetRequest_Absent_ReturnsNilNil(t *testing.T) {
	store := newTestStore(t)

	r, err := store.Get(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, r)
}

func TestStore_UpdateRequest_ChangesDateAndStatus(t *testing.T) {
	// GIVEN: A pending request
	// WHEN: Approving it and moving the date
	// THEN: Both mutations persist

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, testUser("u-1", "developer", wfh.RoleUser)))

	r := seedRequest(t, store, "req-1", "u-1", day(2025, time.June, 11), wfh.StatusPending)
	r.Status = wfh.StatusApproved
	r.Date = day(2025, time.June, 12)
	require.NoError(t, store.Update(ctx, r))

	got, err := store.Get(ctx, "req-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wfh.StatusApproved, got.Status)
	assert.Equal(t, "2025-06-12", got.Date.String())
}

func TestStore_UpdateRequest_Missing_ReturnsNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.Update(context.Background(), &wfh.Request{
		ID: "ghost", Date: day(2025, time.June, 11), Status: wfh.StatusApproved,
	})
	assert.ErrorIs(t, err, wfh.ErrRequestNotFound)
}

func TestStore_RemoveRequest(t *testing.T) {
	// GIVEN: A persisted request
	// WHEN: Removing it
	// THEN: It is gone; removing again reports not found

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, testUser("u-1", "developer", wfh.RoleUser)))
	seedRequest(t, store, "req-1", "u-1", day(2025, time.June, 11), wfh.StatusPending)

	require.NoError(t, store.Remove(ctx, "req-1"))

	got, err := store.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, store.Remove(ctx, "req-1"), wfh.ErrRequestNotFound)
}

func TestStore_CountByUserInRange_InclusiveBounds(t *testing.T) {
	// GIVEN: Requests on Monday, Wednesday and Sunday of one ISO week
	// WHEN: Counting over the Monday..Sunday range
	// THEN: All three count; a neighbouring week's request does not

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, testUser("u-1", "developer", wfh.RoleUser)))

	// 2025-06-09 is a Monday.
	seedRequest(t, store, "req-1", "u-1", day(2025, time.June, 9), wfh.StatusPending)
	seedRequest(t, store, "req-2", "u-1", day(2025, time.June, 11), wfh.StatusApproved)
	seedRequest(t, store, "req-3", "u-1", day(2025, time.June, 15), wfh.StatusPending)
	seedRequest(t, store, "req-4", "u-1", day(2025, time.June, 16), wfh.StatusPending)

	week := wfh.WeekOf(day(2025, time.June, 11))
	count, err := store.CountByUserInRange(ctx, "u-1", wfh.TypeWfh, week)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "Monday and Sunday are inclusive, next Monday is not")
}

func TestStore_CountApprovedByPosition(t *testing.T) {
	// GIVEN: Approved and pending requests across two positions on one date
	// WHEN: Counting approved requests for "developer"
	// THEN: Only approved developer requests count

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, testUser("dev-1", "developer", wfh.RoleUser)))
	require.NoError(t, store.SaveUser(ctx, testUser("dev-2", "developer", wfh.RoleUser)))
	require.NoError(t, store.SaveUser(ctx, testUser("qa-1", "qa", wfh.RoleUser)))

	d := day(2025, time.June, 11)
	seedRequest(t, store, "req-1", "dev-1", d, wfh.StatusApproved)
	seedRequest(t, store, "req-2", "dev-2", d, wfh.StatusPending)
	seedRequest(t, store, "req-3", "qa-1", d, wfh.StatusApproved)

	count, err := store.CountApprovedByPosition(ctx, d, wfh.TypeWfh, "developer")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_ListByStatus_JoinsUserFields(t *testing.T) {
	// GIVEN: A pending request
	// WHEN: Listing pending requests
	// THEN: The view carries the owner's name, email and position

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, testUser("u-1", "developer", wfh.RoleUser)))
	seedRequest(t, store, "req-1", "u-1", day(2025, time.June, 11), wfh.StatusPending)

	views, err := store.ListByStatus(ctx, wfh.StatusPending)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "User u-1", views[0].UserName)
	assert.Equal(t, "u-1@example.com", views[0].UserEmail)
	assert.Equal(t, "developer", views[0].UserPosition)
}

// =============================================================================
// HOLIDAY TESTS
// =============================================================================

func TestStore_Holidays_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	h := &wfh.Holiday{ID: "h-1", Name: "Midsummer", Date: day(2025, time.June, 20)}
	require.NoError(t, store.SaveHoliday(ctx, h))

	got, err := store.GetHoliday(ctx, "h-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Midsummer", got.Name)

	got.Name = "Midsummer Eve"
	got.Date = day(2025, time.June, 21)
	require.NoError(t, store.UpdateHoliday(ctx, got))

	byDate, err := store.FindByDate(ctx, day(2025, time.June, 21))
	require.NoError(t, err)
	require.NotNil(t, byDate)
	assert.Equal(t, "Midsummer Eve", byDate.Name)

	require.NoError(t, store.DeleteHoliday(ctx, "h-1"))
	assert.ErrorIs(t, store.DeleteHoliday(ctx, "h-1"), wfh.ErrHolidayNotFound)
}

func TestStore_SaveHoliday_DuplicateDate_Rejected(t *testing.T) {
	// GIVEN: A holiday on June 20
	// WHEN: Saving another holiday on the same date
	// THEN: ErrDuplicateHoliday, backed by the unique date index

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveHoliday(ctx, &wfh.Holiday{
		ID: "h-1", Name: "Midsummer", Date: day(2025, time.June, 20),
	}))

	err := store.SaveHoliday(ctx, &wfh.Holiday{
		ID: "h-2", Name: "Company Day", Date: day(2025, time.June, 20),
	})
	assert.ErrorIs(t, err, wfh.ErrDuplicateHoliday)
}

func TestStore_CountInRange_CountsHolidaysInWeek(t *testing.T) {
	// GIVEN: Holidays inside and outside an ISO week
	// WHEN: Counting over the week range
	// THEN: Only in-week holidays count

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveHoliday(ctx, &wfh.Holiday{
		ID: "h-1", Name: "In Week", Date: day(2025, time.June, 12),
	}))
	require.NoError(t, store.SaveHoliday(ctx, &wfh.Holiday{
		ID: "h-2", Name: "Next Week", Date: day(2025, time.June, 17),
	}))

	week := wfh.WeekOf(day(2025, time.June, 11))
	count, err := store.CountInRange(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// =============================================================================
// SETTINGS TESTS
// =============================================================================

func TestStore_Settings_CurrentCreatesDefaults(t *testing.T) {
	// GIVEN: A fresh database with no settings row
	// WHEN: Reading the current settings
	// THEN: The default singleton is created and returned

	store := newTestStore(t)

	settings, err := store.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, settings.AllowedDateScopes.NextWeek, "defaults allow next week only")
	assert.False(t, settings.AllowedDateScopes.ThisWeek)
	assert.False(t, settings.AllowedDateScopes.WithinMonth)
}

func TestStore_Settings_SaveAndReload(t *testing.T) {
	// GIVEN: Settings with custom weekdays and concurrency caps
	// WHEN: Saving and reloading
	// THEN: JSON-encoded fields round-trip

	store := newTestStore(t)
	ctx := context.Background()

	settings := wfh.DefaultSettings()
	settings.AllowedDateScopes.WithinMonth = true
	settings.DisallowedWeekdays = []time.Weekday{time.Saturday, time.Sunday}
	settings.PositionConcurrency = map[string]int{"developer": 2}
	settings.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.SaveSettings(ctx, settings))

	got, err := store.Current(ctx)
	require.NoError(t, err)
	assert.True(t, got.AllowedDateScopes.WithinMonth)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, got.DisallowedWeekdays)
	assert.Equal(t, 2, got.PositionConcurrency["developer"])
}
