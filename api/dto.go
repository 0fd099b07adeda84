/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Auth:      LoginRequest, LoginResponse, UserDTO
  Requests:  CreateRequestRequest, RescheduleRequest, RejectRequest,
             RequestDTO, RequestViewDTO
  Holidays:  HolidayDTO, SaveHolidayRequest
  Settings:  SettingsDTO, UpdateSettingsRequest
  Balance:   BalanceDTO, LeaveBalanceDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - wfh/types.go: Domain model these map from
*/
package api

import (
	"time"

	"github.com/MichelangeloMastroroccoDeGrandis/leaveboard-server/wfh"
)

// =============================================================================
// AUTH TYPES
// =============================================================================

// LoginRequest is the credential payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token and the authenticated user.
type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserDTO represents a user in API responses. The password hash never
// leaves the server.
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Position  string `json:"position"`
	WfhWeekly int    `json:"wfh_weekly"`
}

// RegisterUserRequest is the admin-only body for POST /api/auth/register.
// Zero allowances fall back to the schema defaults.
type RegisterUserRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Role        string  `json:"role,omitempty"`
	Position    string  `json:"position,omitempty"`
	WfhWeekly   int     `json:"wfh_weekly,omitempty"`
	SickDays    float64 `json:"sick_days,omitempty"`
	TimeOffDays float64 `json:"timeoff_days,omitempty"`
}

// UpdatePasswordRequest is the admin-only body for
// PUT /api/users/{id}/password.
type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

func toUserDTO(u wfh.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Position:  u.Position,
		WfhWeekly: u.WfhWeekly,
	}
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateRequestRequest is the body for POST /api/wfh/requests.
// UserID is honored only for elevated actors; AllowAnyDate lets an
// elevated actor bypass the date-scope check.
type CreateRequestRequest struct {
	Type         string `json:"type"`
	Date         string `json:"date"`
	UserID       string `json:"userId,omitempty"`
	AllowAnyDate bool   `json:"allowAnyDate,omitempty"`
	Motivation   string `json:"motivation,omitempty"`
}

// RescheduleRequest is the body for PUT /api/wfh/requests/{id}/date.
type RescheduleRequest struct {
	Date string `json:"date"`
}

// RejectRequest is the body for PUT /api/wfh/requests/{id}/reject.
type RejectRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RequestDTO represents a request in API responses.
type RequestDTO struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Type       string `json:"type"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Motivation string `json:"motivation,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func toRequestDTO(r wfh.Request) RequestDTO {
	return RequestDTO{
		ID:         r.ID,
		UserID:     r.UserID,
		Type:       string(r.Type),
		Date:       r.Date.String(),
		Status:     string(r.Status),
		Motivation: r.Motivation,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

// RequestViewDTO is a request joined with its owner, used by the
// approver dashboards.
type RequestViewDTO struct {
	RequestDTO
	UserName     string `json:"user_name"`
	UserEmail    string `json:"user_email"`
	UserPosition string `json:"user_position"`
	UserRole     string `json:"user_role"`
}

func toRequestViewDTO(v wfh.RequestView) RequestViewDTO {
	return RequestViewDTO{
		RequestDTO:   toRequestDTO(v.Request),
		UserName:     v.UserName,
		UserEmail:    v.UserEmail,
		UserPosition: v.UserPosition,
		UserRole:     string(v.UserRole),
	}
}

// =============================================================================
// HOLIDAY TYPES
// =============================================================================

// HolidayDTO represents a public holiday in API responses.
type HolidayDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// SaveHolidayRequest is the body for holiday create and update.
type SaveHolidayRequest struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

func toHolidayDTO(h wfh.Holiday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Name: h.Name, Date: h.Date.String()}
}

// =============================================================================
// SETTINGS TYPES
// =============================================================================

// SettingsDTO mirrors wfh.PolicySettings on the wire. Weekday indices
// follow time.Weekday: 0 = Sunday .. 6 = Saturday.
type SettingsDTO struct {
	AllowedDateScopes   DateScopesDTO  `json:"allowed_date_scopes"`
	DisallowedWeekdays  []int          `json:"disallowed_weekdays"`
	PositionConcurrency map[string]int `json:"position_concurrency"`
	UpdatedAt           string         `json:"updated_at,omitempty"`
}

// DateScopesDTO is the wire form of wfh.DateScopes.
type DateScopesDTO struct {
	ThisWeek    bool `json:"this_week"`
	NextWeek    bool `json:"next_week"`
	WithinMonth bool `json:"within_month"`
}

// UpdateSettingsRequest is a partial update: nil fields stay unchanged.
type UpdateSettingsRequest struct {
	AllowedDateScopes   *DateScopesDTO `json:"allowed_date_scopes,omitempty"`
	DisallowedWeekdays  []int          `json:"disallowed_weekdays,omitempty"`
	PositionConcurrency map[string]int `json:"position_concurrency,omitempty"`
}

func toSettingsDTO(s wfh.PolicySettings) SettingsDTO {
	weekdays := make([]int, 0, len(s.DisallowedWeekdays))
	for _, wd := range s.DisallowedWeekdays {
		weekdays = append(weekdays, int(wd))
	}
	concurrency := s.PositionConcurrency
	if concurrency == nil {
		concurrency = map[string]int{}
	}
	updatedAt := ""
	if !s.UpdatedAt.IsZero() {
		updatedAt = s.UpdatedAt.Format(time.RFC3339)
	}
	return SettingsDTO{
		AllowedDateScopes: DateScopesDTO{
			ThisWeek:    s.AllowedDateScopes.ThisWeek,
			NextWeek:    s.AllowedDateScopes.NextWeek,
			WithinMonth: s.AllowedDateScopes.WithinMonth,
		},
		DisallowedWeekdays:  weekdays,
		PositionConcurrency: concurrency,
		UpdatedAt:           updatedAt,
	}
}

// =============================================================================
// BALANCE TYPES
// =============================================================================

// LeaveBalanceDTO is the projection for one leave type.
type LeaveBalanceDTO struct {
	Type      string `json:"type"`
	Allowance string `json:"allowance"`
	Used      string `json:"used"`
	Remaining string `json:"remaining"`
}

// BalanceDTO is the actor's leave balance for the current year.
type BalanceDTO struct {
	UserID   string            `json:"user_id"`
	Year     int               `json:"year"`
	Balances []LeaveBalanceDTO `json:"balances"`
}

func toBalanceDTO(b wfh.BalanceView) BalanceDTO {
	balances := make([]LeaveBalanceDTO, len(b.Balances))
	for i, lb := range b.Balances {
		balances[i] = LeaveBalanceDTO{
			Type:      string(lb.Type),
			Allowance: lb.Allowance.String(),
			Used:      lb.Used.String(),
			Remaining: lb.Remaining.String(),
		}
	}
	return BalanceDTO{UserID: b.UserID, Year: b.Year, Balances: balances}
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StatusResponse acknowledges a mutation with no body to return.
type StatusResponse struct {
	Status string `json:"status"`
}
