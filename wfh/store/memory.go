// Package store provides an in-memory implementation of the wfh
// persistence interfaces, used by tests and local development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/MichelangeloMastroroccoDeGrandis/leaveboard-server/wfh"
)

// =============================================================================
// MEMORY STORE - Implements every wfh persistence interface
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	users    map[string]wfh.User
	requests map[string]wfh.Request
	holidays map[string]wfh.Holiday
	settings *wfh.PolicySettings
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]wfh.User),
		requests: make(map[string]wfh.Request),
		holidays: make(map[string]wfh.Holiday),
	}
}

// =============================================================================
// USER DIRECTORY
// =============================================================================

// PutUser inserts or replaces a user (test seeding).
func (m *Memory) PutUser(u wfh.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *Memory) SaveUser(_ context.Context, u wfh.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *Memory) ListUsers(_ context.Context) ([]wfh.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]wfh.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return wfh.ErrUserNotFound
	}
	for rid, r := range m.requests {
		if r.UserID == id {
			delete(m.requests, rid)
		}
	}
	delete(m.users, id)
	return nil
}

func (m *Memory) FindByID(_ context.Context, id string) (*wfh.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		copied := u
		return &copied, nil
	}
	return nil, nil
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*wfh.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) FindByRole(_ context.Context, role wfh.Role) ([]wfh.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []wfh.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// LEDGER
// =============================================================================

func (m *Memory) Append(_ context.Context, r *wfh.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = *r
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*wfh.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.requests[id]; ok {
		copied := r
		return &copied, nil
	}
	return nil, nil
}

func (m *Memory) Update(_ context.Context, r *wfh.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.ID]; !ok {
		return wfh.ErrRequestNotFound
	}
	m.requests[r.ID] = *r
	return nil
}

func (m *Memory) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return wfh.ErrRequestNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *Memory) CountByUserInRange(_ context.Context, userID string, typ wfh.RequestType, rng wfh.DateRange) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.requests {
		if r.UserID == userID && r.Type == typ && rng.Contains(r.Date) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) CountApprovedByPosition(_ context.Context, date wfh.Day, typ wfh.RequestType, position string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.requests {
		if r.Type != typ || r.Status != wfh.StatusApproved || !r.Date.Equal(date) {
			continue
		}
		if u, ok := m.users[r.UserID]; ok && u.Position == position {
			count++
		}
	}
	return count, nil
}

func (m *Memory) ListByStatus(_ context.Context, status wfh.RequestStatus) ([]wfh.RequestView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []wfh.RequestView
	for _, r := range m.requests {
		if r.Status != status {
			continue
		}
		view := wfh.RequestView{Request: r}
		if u, ok := m.users[r.UserID]; ok {
			view.UserName = u.Name
			view.UserEmail = u.Email
			view.UserPosition = u.Position
			view.UserRole = u.Role
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// HOLIDAY STORE
// =============================================================================

func (m *Memory) CountInRange(_ context.Context, rng wfh.DateRange) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, h := range m.holidays {
		if rng.Contains(h.Date) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) FindByDate(_ context.Context, d wfh.Day) (*wfh.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, h := range m.holidays {
		if h.Date.Equal(d) {
			copied := h
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetHoliday(_ context.Context, id string) (*wfh.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.holidays[id]; ok {
		copied := h
		return &copied, nil
	}
	return nil, nil
}

func (m *Memory) ListHolidays(_ context.Context) ([]wfh.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]wfh.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) SaveHoliday(_ context.Context, h *wfh.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.holidays {
		if existing.Date.Equal(h.Date) {
			return wfh.ErrDuplicateHoliday
		}
	}
	m.holidays[h.ID] = *h
	return nil
}

func (m *Memory) UpdateHoliday(_ context.Context, h *wfh.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[h.ID]; !ok {
		return wfh.ErrHolidayNotFound
	}
	for id, existing := range m.holidays {
		if id != h.ID && existing.Date.Equal(h.Date) {
			return wfh.ErrDuplicateHoliday
		}
	}
	m.holidays[h.ID] = *h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[id]; !ok {
		return wfh.ErrHolidayNotFound
	}
	delete(m.holidays, id)
	return nil
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

func (m *Memory) Current(_ context.Context) (wfh.PolicySettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		defaults := wfh.DefaultSettings()
		m.settings = &defaults
	}
	return *m.settings, nil
}

func (m *Memory) SaveSettings(_ context.Context, s wfh.PolicySettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
	return nil
}
