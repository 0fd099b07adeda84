/*
service.go - Request lifecycle manager

PURPOSE:
  Orchestrates the life of a request: creation gated by the eligibility
  engine, approval, rejection (which deletes the record), rescheduling,
  administrative deletion, and the pending/approved list projections.

STATES:
  pending → approved            terminal success
  pending → (deleted)           rejection removes the record, not archived
  approved → approved           reschedule mutates date, no re-evaluation
  (any)   → (deleted)           administrative delete, no notification

NOTIFICATIONS:
  Every transition except administrative delete notifies someone after the
  state change has committed. Who gets notified on create depends on the
  actor: approvers escalate to admins, everyone else goes to approvers.
  Delivery is fire-and-forget (see notify.go).

CONCURRENCY NOTE:
  Evaluation reads and the subsequent append are not wrapped in a store
  transaction: two concurrent creates for the same user/week or the same
  date/position can both pass evaluation and both persist. The caps are
  soft limits; closing the race would need a serializable transaction or
  an optimistic-retry loop in the store.

SEE ALSO:
  - engine.go: The gate in front of Create
  - notify.go: Dispatch semantics
*/
package wfh

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Service is the request lifecycle manager.
type Service struct {
	Users      UserDirectory
	Ledger     Ledger
	Engine     *Engine
	Dispatcher *Dispatcher
}

// NewService wires the lifecycle manager.
func NewService(users UserDirectory, ledger Ledger, engine *Engine, dispatcher *Dispatcher) *Service {
	return &Service{Users: users, Ledger: ledger, Engine: engine, Dispatcher: dispatcher}
}

// =============================================================================
// CREATE
// =============================================================================

// CreateInput carries everything Create needs. TargetUserID is optional;
// when empty the actor requests for themselves.
type CreateInput struct {
	Actor           *User
	TargetUserID    string
	Type            RequestType
	Date            Day
	BypassDateScope bool
	Motivation      string
}

// Create evaluates the candidate and, if allowed, persists a pending
// request and notifies the approval chain. An engine rejection is returned
// as a *Rejection with no side effects.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Request, error) {
	if !in.Type.Valid() {
		return nil, ErrInvalidType
	}
	if in.Date.IsZero() {
		return nil, ErrDateRequired
	}

	target := in.Actor
	if in.TargetUserID != "" && in.TargetUserID != in.Actor.ID {
		if !in.Actor.Role.Elevated() {
			return nil, ErrForbidden
		}
		found, err := s.Users.FindByID(ctx, in.TargetUserID)
		if err != nil {
			return nil, fmt.Errorf("resolve target user: %w", err)
		}
		if found == nil {
			return nil, ErrUserNotFound
		}
		target = found
	}

	decision, err := s.Engine.Evaluate(ctx, Candidate{
		User:            target,
		Type:            in.Type,
		Date:            in.Date,
		BypassDateScope: in.BypassDateScope,
	})
	if err != nil {
		return nil, err
	}
	if rej := decision.Rejection(); rej != nil {
		return nil, rej
	}

	request := &Request{
		ID:         uuid.NewString(),
		UserID:     target.ID,
		Type:       in.Type,
		Date:       in.Date,
		Status:     StatusPending,
		Motivation: in.Motivation,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Ledger.Append(ctx, request); err != nil {
		return nil, fmt.Errorf("persist request: %w", err)
	}

	s.notifyApprovalChain(ctx, in.Actor, target, request)

	return request, nil
}

// notifyApprovalChain tells the reviewers about a new request. When the
// actor is themselves an approver, the request escalates to admins.
func (s *Service) notifyApprovalChain(ctx context.Context, actor, target *User, r *Request) {
	role := RoleApprover
	if actor.Role == RoleApprover {
		role = RoleAdmin
	}

	recipients, err := s.Users.FindByRole(ctx, role)
	if err != nil {
		// Recipient lookup failing must not undo a created request.
		log.Printf("[WFH] could not resolve %s recipients: %v", role, err)
		return
	}
	subject := fmt.Sprintf("New WFH request from %s", target.Name)
	body := fmt.Sprintf("%s has requested %s for %s.\n\nPlease review it in the approval page.",
		target.Name, r.Type, r.Date)
	for _, recipient := range recipients {
		s.Dispatcher.Dispatch(recipient.Email, subject, body)
	}
}

// =============================================================================
// APPROVE / REJECT
// =============================================================================

// Approve marks a pending request approved and notifies its owner. The
// eligibility engine is NOT re-run: approval trusts the creation-time
// decision.
func (s *Service) Approve(ctx context.Context, id string) (*Request, error) {
	request, err := s.Ledger.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}

	request.Status = StatusApproved
	if err := s.Ledger.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("persist approval: %w", err)
	}

	if owner := s.owner(ctx, request); owner != nil {
		s.Dispatcher.Dispatch(owner.Email,
			"Your WFH request has been approved",
			fmt.Sprintf("Hi %s, your WFH request for %s has been approved.", owner.Name, request.Date))
	}

	return request, nil
}

// Reject permanently deletes a pending request, then notifies the owner
// with the given reason. Deletion happens before notification is
// attempted; a failed notification never restores the record.
func (s *Service) Reject(ctx context.Context, id string, reason string) error {
	request, err := s.Ledger.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if request == nil {
		return ErrRequestNotFound
	}

	owner := s.owner(ctx, request)

	if err := s.Ledger.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}

	if reason == "" {
		reason = "No reason provided"
	}
	if owner != nil {
		s.Dispatcher.Dispatch(owner.Email,
			"Your WFH request has been rejected",
			fmt.Sprintf("Hi %s, your WFH request for %s has been rejected.\n\nReason: %s",
				owner.Name, request.Date, reason))
	}

	return nil
}

// =============================================================================
// RESCHEDULE / DELETE
// =============================================================================

// Reschedule mutates only the request's date and notifies the owner with
// the old and new dates. Owner, type and status are untouched; supplying
// the same date twice is a no-op beyond the notification.
func (s *Service) Reschedule(ctx context.Context, id string, newDate Day) (*Request, error) {
	if newDate.IsZero() {
		return nil, ErrDateRequired
	}

	request, err := s.Ledger.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}

	oldDate := request.Date
	request.Date = newDate
	if err := s.Ledger.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("persist reschedule: %w", err)
	}

	if owner := s.owner(ctx, request); owner != nil {
		s.Dispatcher.Dispatch(owner.Email,
			"Your WFH request date has been updated",
			fmt.Sprintf("Hi %s, your WFH request has been updated.\n\nOld date: %s\nNew date: %s",
				owner.Name, oldDate, newDate))
	}

	return request, nil
}

// Delete is the administrative hard delete. No notification.
func (s *Service) Delete(ctx context.Context, id string) error {
	request, err := s.Ledger.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if request == nil {
		return ErrRequestNotFound
	}
	if err := s.Ledger.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return nil
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// ListPending returns all pending requests with their owners.
func (s *Service) ListPending(ctx context.Context) ([]RequestView, error) {
	return s.Ledger.ListByStatus(ctx, StatusPending)
}

// ListApproved returns all approved requests with their owners.
func (s *Service) ListApproved(ctx context.Context) ([]RequestView, error) {
	return s.Ledger.ListByStatus(ctx, StatusApproved)
}

// owner resolves a request's owner, tolerating lookup failures: a missing
// or unreadable owner only suppresses the notification.
func (s *Service) owner(ctx context.Context, r *Request) *User {
	owner, err := s.Users.FindByID(ctx, r.UserID)
	if err != nil {
		return nil
	}
	return owner
}
