/*
handlers.go - HTTP API handlers for the WFH request system

PURPOSE:
  Exposes the request lifecycle and eligibility engine via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic in the wfh package.

ENDPOINTS:
  Auth:
    POST   /api/auth/login                  Exchange credentials for a token
    POST   /api/auth/register               Create a user (admin)

  Users:
    GET    /api/users                       List the directory (elevated)
    DELETE /api/users/{id}                  Remove a user + their requests (admin)
    PUT    /api/users/{id}/password         Reset a user's password (admin)

  Requests:
    GET    /api/wfh/requests?status=        List pending/approved (elevated)
    POST   /api/wfh/requests                Submit a request
    PUT    /api/wfh/requests/{id}/approve   Approve (elevated)
    PUT    /api/wfh/requests/{id}/reject    Reject and discard (elevated)
    PUT    /api/wfh/requests/{id}/date      Reschedule (elevated)
    DELETE /api/wfh/requests/{id}           Withdraw (elevated)

  Holidays:
    GET    /api/holidays                    List holidays
    POST   /api/holidays                    Create (elevated)
    PUT    /api/holidays/{id}               Update (elevated)
    DELETE /api/holidays/{id}               Delete (elevated)

  Settings:
    GET    /api/settings/wfh                Current policy settings
    PUT    /api/settings/wfh                Partial update (elevated)

  Balance:
    GET    /api/wfh/balance                 Actor's leave balances

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, eligibility rejections (verbatim message)
  - 401: Missing or invalid token
  - 403: Role too low for the operation
  - 404: Request/holiday/user not found
  - 409: Duplicate holiday date
  - 500: Internal errors

  Eligibility rejections are client errors, not failures: the rejection
  message is returned verbatim so the frontend can show it directly.

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Token issuing and middleware
  - server.go: Router setup
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/MichelangeloMastroroccoDeGrandis/leaveboard-server/wfh"
)

func newID() string {
	return uuid.NewString()
}

// minPasswordLength applies to admin-issued password updates.
const minPasswordLength = 6

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *wfh.Service
	Auth     *Auth
	Users    wfh.UserAdmin
	Holidays wfh.HolidayStore
	Settings wfh.SettingsStore
}

// NewHandler wires the handler with its collaborators.
func NewHandler(svc *wfh.Service, auth *Auth, users wfh.UserAdmin, holidays wfh.HolidayStore, settings wfh.SettingsStore) *Handler {
	return &Handler{Service: svc, Auth: auth, Users: users, Holidays: holidays, Settings: settings}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login exchanges email/password for a bearer token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	u, err := h.Auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Login failed", err)
		return
	}
	if u == nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	token, err := h.Auth.IssueToken(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: toUserDTO(*u)})
}

// RegisterUser creates a directory record. Admin-only; approvers review
// requests but do not manage accounts.
// POST /api/auth/register
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required", nil)
		return
	}

	role := wfh.Role(req.Role)
	if req.Role == "" {
		role = wfh.RoleUser
	}
	switch role {
	case wfh.RoleUser, wfh.RoleApprover, wfh.RoleAdmin, wfh.RoleSuperuser:
	default:
		writeError(w, http.StatusBadRequest, "Unknown role: "+req.Role, nil)
		return
	}

	existing, err := h.Users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check email", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, "User already exists", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}

	sickDays := decimal.NewFromInt(wfh.DefaultLeaveDays)
	if req.SickDays > 0 {
		sickDays = decimal.NewFromFloat(req.SickDays)
	}
	timeOffDays := decimal.NewFromInt(wfh.DefaultLeaveDays)
	if req.TimeOffDays > 0 {
		timeOffDays = decimal.NewFromFloat(req.TimeOffDays)
	}

	u := wfh.User{
		ID:           newID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Position:     req.Position,
		WfhWeekly:    req.WfhWeekly,
		SickDays:     sickDays,
		TimeOffDays:  timeOffDays,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Users.SaveUser(r.Context(), u); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

// ListUsers returns the directory for the approval and on-behalf forms.
// GET /api/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteUser removes an account and every WFH request it owns.
// Admins cannot remove their own account.
// DELETE /api/users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := currentUser(r.Context())
	if actor == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}
	if actor.ID == id {
		writeError(w, http.StatusBadRequest, "You cannot delete your own account.", nil)
		return
	}

	if err := h.Users.DeleteUser(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// UpdateUserPassword replaces a user's password hash.
// PUT /api/users/{id}/password
func (h *Handler) UpdateUserPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters", nil)
		return
	}

	u, err := h.Users.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}
	u.PasswordHash = string(hash)
	if err := h.Users.SaveUser(r.Context(), *u); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update password", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "updated"})
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ListRequests returns pending or approved requests joined with their
// owners. Defaults to pending.
// GET /api/wfh/requests?status=pending|approved
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	var (
		views []wfh.RequestView
		err   error
	)
	switch status := r.URL.Query().Get("status"); status {
	case "", string(wfh.StatusPending):
		views, err = h.Service.ListPending(r.Context())
	case string(wfh.StatusApproved):
		views, err = h.Service.ListApproved(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "Unknown status: "+status, nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	dtos := make([]RequestViewDTO, len(views))
	for i, v := range views {
		dtos[i] = toRequestViewDTO(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRequest submits a new request through the eligibility engine.
// POST /api/wfh/requests
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r.Context())

	var req CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	var date wfh.Day
	if req.Date != "" {
		var err error
		date, err = wfh.ParseDay(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
			return
		}
	}

	created, err := h.Service.Create(r.Context(), wfh.CreateInput{
		Actor:           actor,
		TargetUserID:    req.UserID,
		Type:            wfh.RequestType(req.Type),
		Date:            date,
		BypassDateScope: req.AllowAnyDate,
		Motivation:      req.Motivation,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestDTO(*created))
}

// ApproveRequest marks a pending request approved and notifies the owner.
// PUT /api/wfh/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	approved, err := h.Service.Approve(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*approved))
}

// RejectRequest discards a request and notifies the owner with the reason.
// PUT /api/wfh/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RejectRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // empty body means no reason
	}

	if err := h.Service.Reject(r.Context(), id, req.Reason); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "rejected"})
}

// RescheduleRequest moves a request to a new date, keeping its status.
// PUT /api/wfh/requests/{id}/date
func (h *Handler) RescheduleRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if req.Date == "" {
		writeError(w, http.StatusBadRequest, "Date is required", nil)
		return
	}
	date, err := wfh.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
		return
	}

	moved, err := h.Service.Reschedule(r.Context(), id, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*moved))
}

// DeleteRequest withdraws a request without notifying anyone.
// DELETE /api/wfh/requests/{id}
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all holidays sorted by date.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Holidays.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, holiday := range holidays {
		dtos[i] = toHolidayDTO(holiday)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds a holiday; one holiday per date.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	holiday, ok := h.decodeHoliday(w, r)
	if !ok {
		return
	}
	holiday.ID = newID()

	if err := h.Holidays.SaveHoliday(r.Context(), holiday); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(*holiday))
}

// UpdateHoliday renames or moves an existing holiday.
// PUT /api/holidays/{id}
func (h *Handler) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	holiday, ok := h.decodeHoliday(w, r)
	if !ok {
		return
	}
	holiday.ID = chi.URLParam(r, "id")

	if err := h.Holidays.UpdateHoliday(r.Context(), holiday); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTO(*holiday))
}

// DeleteHoliday removes a holiday from the calendar.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Holidays.DeleteHoliday(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

func (h *Handler) decodeHoliday(w http.ResponseWriter, r *http.Request) (*wfh.Holiday, bool) {
	var req SaveHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return nil, false
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Holiday name is required", nil)
		return nil, false
	}
	date, err := wfh.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
		return nil, false
	}
	return &wfh.Holiday{Name: req.Name, Date: date}, true
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the active policy settings, creating defaults on
// first access.
// GET /api/settings/wfh
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

// UpdateSettings applies a partial update to the policy settings and
// returns the merged result.
// PUT /api/settings/wfh
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	settings, err := h.Settings.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	update := wfh.SettingsUpdate{PositionConcurrency: req.PositionConcurrency}
	if req.AllowedDateScopes != nil {
		update.AllowedDateScopes = &wfh.DateScopes{
			ThisWeek:    req.AllowedDateScopes.ThisWeek,
			NextWeek:    req.AllowedDateScopes.NextWeek,
			WithinMonth: req.AllowedDateScopes.WithinMonth,
		}
	}
	if req.DisallowedWeekdays != nil {
		update.DisallowedWeekdays = make([]time.Weekday, 0, len(req.DisallowedWeekdays))
		for _, wd := range req.DisallowedWeekdays {
			update.DisallowedWeekdays = append(update.DisallowedWeekdays, time.Weekday(wd))
		}
	}
	update.Apply(&settings, time.Now().UTC())

	if err := h.Settings.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetBalance returns the actor's leave balances for the current year.
// GET /api/wfh/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r.Context())

	view, err := h.Service.Balances(r.Context(), actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*view))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP statuses. Eligibility
// rejections surface their message verbatim with a 400.
func writeDomainError(w http.ResponseWriter, err error) {
	var rejection *wfh.Rejection
	switch {
	case errors.As(err, &rejection):
		writeError(w, http.StatusBadRequest, rejection.Message, nil)
	case errors.Is(err, wfh.ErrDuplicateHoliday):
		writeError(w, http.StatusConflict, "A holiday already exists on this date", nil)
	case wfh.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case wfh.IsForbidden(err):
		writeError(w, http.StatusForbidden, err.Error(), nil)
	case wfh.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
