/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence interface the wfh package defines
  (UserDirectory, Ledger, HolidayStore, SettingsStore) using SQLite.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  users:     Directory records with roles, positions and allowances
  requests:  The usage ledger (single-day requests with a status)
  holidays:  Public holiday calendar, one row per date
  settings:  The PolicySettings singleton (one row, id = 1)

INDEXES:
  - idx_requests_user_type_date: weekly allowance counts (hot path)
  - idx_requests_date_type_status: concurrency counts
  - idx_requests_status: pending/approved projections
  - idx_holidays_date (unique): one holiday per date

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The eligibility reads and the
  subsequent request insert are intentionally NOT wrapped in a single
  database transaction; the weekly and concurrency caps are soft limits
  (see wfh/service.go).

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/leaveboard.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - wfh/store.go: Interface definitions
  - wfh/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/MichelangeloMastroroccoDeGrandis/leaveboard-server/wfh"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		position TEXT NOT NULL DEFAULT '',
		wfh_weekly INTEGER NOT NULL DEFAULT 1,
		sick_days TEXT NOT NULL DEFAULT '15',
		timeoff_days TEXT NOT NULL DEFAULT '15',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
	CREATE INDEX IF NOT EXISTS idx_users_position ON users(position);

	-- Requests (the usage ledger). Dates are stored as YYYY-MM-DD so
	-- comparisons stay calendar-only.
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		motivation TEXT,
		created_at TEXT NOT NULL
	);

	-- Weekly allowance counts (hot path)
	CREATE INDEX IF NOT EXISTS idx_requests_user_type_date
		ON requests(user_id, type, date);
	-- Concurrency counts
	CREATE INDEX IF NOT EXISTS idx_requests_date_type_status
		ON requests(date, type, status);
	-- Status projections
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON requests(status);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);

	-- PolicySettings singleton: one row, id fixed to 1.
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		scope_this_week BOOLEAN NOT NULL DEFAULT FALSE,
		scope_next_week BOOLEAN NOT NULL DEFAULT TRUE,
		scope_within_month BOOLEAN NOT NULL DEFAULT FALSE,
		disallowed_weekdays TEXT NOT NULL DEFAULT '[]',
		position_concurrency TEXT NOT NULL DEFAULT '{}',
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USER DIRECTORY (wfh.UserDirectory interface)
// =============================================================================

const userColumns = `id, name, email, password_hash, role, position, wfh_weekly, sick_days, timeoff_days, is_active, created_at`

// SaveUser inserts or updates a user.
func (s *Store) SaveUser(ctx context.Context, u wfh.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			password_hash = excluded.password_hash,
			role = excluded.role,
			position = excluded.position,
			wfh_weekly = excluded.wfh_weekly,
			sick_days = excluded.sick_days,
			timeoff_days = excluded.timeoff_days,
			is_active = excluded.is_active
	`

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Position,
		u.WfhWeekly, u.SickDays.String(), u.TimeOffDays.String(),
		u.IsActive, createdAt.Format(time.RFC3339),
	)
	return err
}

// FindByID retrieves a user by ID. Returns (nil, nil) when absent.
func (s *Store) FindByID(ctx context.Context, id string) (*wfh.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// FindByEmail retrieves a user by email. Returns (nil, nil) when absent.
func (s *Store) FindByEmail(ctx context.Context, email string) (*wfh.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// FindByRole returns all users holding a role.
func (s *Store) FindByRole(ctx context.Context, role wfh.Role) ([]wfh.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY name`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []wfh.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListUsers returns all users ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]wfh.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []wfh.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser removes a user together with every request they own, in
// one transaction so a failed user delete leaves the requests intact.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM requests WHERE user_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return wfh.ErrUserNotFound
	}
	return tx.Commit()
}

func (s *Store) queryUser(ctx context.Context, query string, args ...any) (*wfh.User, error) {
	row := s.db.QueryRowContext(ctx, query, args...)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (wfh.User, error) {
	var (
		u         wfh.User
		sickDays  string
		timeOff   string
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Position, &u.WfhWeekly, &sickDays, &timeOff, &u.IsActive, &createdAt)
	if err != nil {
		return u, err
	}
	u.SickDays = mustDecimal(sickDays)
	u.TimeOffDays = mustDecimal(timeOff)
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

// =============================================================================
// LEDGER (wfh.Ledger interface)
// =============================================================================

// Append persists a new request.
func (s *Store) Append(ctx context.Context, r *wfh.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO requests (id, user_id, type, date, status, motivation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.UserID, r.Type, r.Date.String(), r.Status,
		nullString(r.Motivation), r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append request: %w", err)
	}
	return nil
}

// Get retrieves a request by ID. Returns (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, id string) (*wfh.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r          wfh.Request
		date       string
		motivation sql.NullString
		createdAt  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, type, date, status, motivation, created_at FROM requests WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.UserID, &r.Type, &date, &r.Status, &motivation, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.Date, _ = wfh.ParseDay(date)
	r.Motivation = motivation.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

// Update persists date/status mutations of an existing request.
func (s *Store) Update(ctx context.Context, r *wfh.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE requests SET date = ?, status = ? WHERE id = ?`,
		r.Date.String(), r.Status, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wfh.ErrRequestNotFound
	}
	return nil
}

// Remove deletes a request permanently.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wfh.ErrRequestNotFound
	}
	return nil
}

// CountByUserInRange counts a user's requests of one type in a date range.
func (s *Store) CountByUserInRange(ctx context.Context, userID string, typ wfh.RequestType, rng wfh.DateRange) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requests WHERE user_id = ? AND type = ? AND date >= ? AND date <= ?`,
		userID, typ, rng.Start.String(), rng.End.String(),
	).Scan(&count)
	return count, err
}

// CountApprovedByPosition counts approved requests of one type on a single
// date whose owner holds the given position.
func (s *Store) CountApprovedByPosition(ctx context.Context, date wfh.Day, typ wfh.RequestType, position string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT COUNT(*)
		FROM requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.date = ? AND r.type = ? AND r.status = ? AND u.position = ?
	`
	var count int
	err := s.db.QueryRowContext(ctx, query,
		date.String(), typ, wfh.StatusApproved, position,
	).Scan(&count)
	return count, err
}

// ListByStatus returns requests with the given status joined with their
// owning user, ordered by creation time.
func (s *Store) ListByStatus(ctx context.Context, status wfh.RequestStatus) ([]wfh.RequestView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT r.id, r.user_id, r.type, r.date, r.status, r.motivation, r.created_at,
		       u.name, u.email, u.position, u.role
		FROM requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.status = ?
		ORDER BY r.created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []wfh.RequestView
	for rows.Next() {
		var (
			v          wfh.RequestView
			date       string
			motivation sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&v.ID, &v.UserID, &v.Type, &date, &v.Status, &motivation, &createdAt,
			&v.UserName, &v.UserEmail, &v.UserPosition, &v.UserRole); err != nil {
			return nil, err
		}
		v.Date, _ = wfh.ParseDay(date)
		v.Motivation = motivation.String
		v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		views = append(views, v)
	}
	return views, rows.Err()
}

// =============================================================================
// HOLIDAY STORE (wfh.HolidayStore interface)
// =============================================================================

// CountInRange counts holidays in an inclusive date range.
func (s *Store) CountInRange(ctx context.Context, rng wfh.DateRange) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM holidays WHERE date >= ? AND date <= ?`,
		rng.Start.String(), rng.End.String(),
	).Scan(&count)
	return count, err
}

// FindByDate returns the holiday on a date, or (nil, nil).
func (s *Store) FindByDate(ctx context.Context, d wfh.Day) (*wfh.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryHoliday(ctx, `SELECT id, name, date FROM holidays WHERE date = ?`, d.String())
}

// GetHoliday retrieves a holiday by ID. Returns (nil, nil) when absent.
func (s *Store) GetHoliday(ctx context.Context, id string) (*wfh.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryHoliday(ctx, `SELECT id, name, date FROM holidays WHERE id = ?`, id)
}

func (s *Store) queryHoliday(ctx context.Context, query string, args ...any) (*wfh.Holiday, error) {
	var (
		h    wfh.Holiday
		date string
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&h.ID, &h.Name, &date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	h.Date, _ = wfh.ParseDay(date)
	return &h, nil
}

// ListHolidays returns all holidays sorted by date.
func (s *Store) ListHolidays(ctx context.Context) ([]wfh.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, date FROM holidays ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []wfh.Holiday
	for rows.Next() {
		var (
			h    wfh.Holiday
			date string
		)
		if err := rows.Scan(&h.ID, &h.Name, &date); err != nil {
			return nil, err
		}
		h.Date, _ = wfh.ParseDay(date)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// SaveHoliday inserts a holiday. The unique date index backs the
// duplicate-date guard enforced at the service level.
func (s *Store) SaveHoliday(ctx context.Context, h *wfh.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO holidays (id, name, date) VALUES (?, ?, ?)`,
		h.ID, h.Name, h.Date.String(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return wfh.ErrDuplicateHoliday
		}
		return err
	}
	return nil
}

// UpdateHoliday mutates name and date of an existing holiday.
func (s *Store) UpdateHoliday(ctx context.Context, h *wfh.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE holidays SET name = ?, date = ? WHERE id = ?`,
		h.Name, h.Date.String(), h.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return wfh.ErrDuplicateHoliday
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wfh.ErrHolidayNotFound
	}
	return nil
}

// DeleteHoliday removes a holiday.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wfh.ErrHolidayNotFound
	}
	return nil
}

// =============================================================================
// SETTINGS STORE (wfh.SettingsStore interface)
// =============================================================================

// Current returns the active settings, lazily creating the default row on
// first read.
func (s *Store) Current(ctx context.Context) (wfh.PolicySettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, found, err := s.readSettings(ctx)
	if err != nil {
		return wfh.PolicySettings{}, err
	}
	if found {
		return settings, nil
	}

	defaults := wfh.DefaultSettings()
	defaults.UpdatedAt = time.Now().UTC()
	if err := s.writeSettings(ctx, defaults); err != nil {
		return wfh.PolicySettings{}, err
	}
	return defaults, nil
}

// SaveSettings replaces the active settings.
func (s *Store) SaveSettings(ctx context.Context, settings wfh.PolicySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeSettings(ctx, settings)
}

func (s *Store) readSettings(ctx context.Context) (wfh.PolicySettings, bool, error) {
	var (
		settings    wfh.PolicySettings
		weekdays    string
		concurrency string
		updatedAt   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT scope_this_week, scope_next_week, scope_within_month,
		       disallowed_weekdays, position_concurrency, updated_at
		FROM settings WHERE id = 1
	`).Scan(
		&settings.AllowedDateScopes.ThisWeek,
		&settings.AllowedDateScopes.NextWeek,
		&settings.AllowedDateScopes.WithinMonth,
		&weekdays, &concurrency, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return settings, false, nil
	}
	if err != nil {
		return settings, false, err
	}

	if err := json.Unmarshal([]byte(weekdays), &settings.DisallowedWeekdays); err != nil {
		return settings, false, fmt.Errorf("malformed disallowed_weekdays: %w", err)
	}
	if err := json.Unmarshal([]byte(concurrency), &settings.PositionConcurrency); err != nil {
		return settings, false, fmt.Errorf("malformed position_concurrency: %w", err)
	}
	settings.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return settings, true, nil
}

func (s *Store) writeSettings(ctx context.Context, settings wfh.PolicySettings) error {
	weekdays, err := json.Marshal(settings.DisallowedWeekdays)
	if err != nil {
		return err
	}
	concurrency, err := json.Marshal(settings.PositionConcurrency)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO settings (id, scope_this_week, scope_next_week, scope_within_month,
			disallowed_weekdays, position_concurrency, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			scope_this_week = excluded.scope_this_week,
			scope_next_week = excluded.scope_next_week,
			scope_within_month = excluded.scope_within_month,
			disallowed_weekdays = excluded.disallowed_weekdays,
			position_concurrency = excluded.position_concurrency,
			updated_at = excluded.updated_at
	`
	updatedAt := settings.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, query,
		settings.AllowedDateScopes.ThisWeek,
		settings.AllowedDateScopes.NextWeek,
		settings.AllowedDateScopes.WithinMonth,
		string(weekdays), string(concurrency),
		updatedAt.Format(time.RFC3339),
	)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
