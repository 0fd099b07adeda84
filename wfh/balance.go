/*
balance.go - Leave balance projection

PURPOSE:
  Read-only view of a user's remaining sick and time-off allowance for the
  current calendar year: allowance minus persisted requests of that type.
  Allowances are decimal day counts so half days are representable.

SEE ALSO:
  - types.go: User.SickDays / User.TimeOffDays
  - store.go: Ledger.CountByUserInRange
*/
package wfh

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LeaveBalance is one line of the projection.
type LeaveBalance struct {
	Type      RequestType
	Allowance decimal.Decimal
	Used      decimal.Decimal
	Remaining decimal.Decimal
}

// BalanceView is a user's leave balances for one calendar year.
type BalanceView struct {
	UserID   string
	Year     int
	Balances []LeaveBalance
}

// yearOf returns the full calendar-year range containing d.
func yearOf(d Day) DateRange {
	return DateRange{
		Start: NewDay(d.Year(), time.January, 1),
		End:   NewDay(d.Year(), time.December, 31),
	}
}

// Balances computes the sick and time-off balances for the current year.
// Each persisted request counts as one day against its allowance.
func (s *Service) Balances(ctx context.Context, user *User) (*BalanceView, error) {
	today := s.Engine.Clock.Today()
	year := yearOf(today)

	allowances := []struct {
		typ       RequestType
		allowance decimal.Decimal
	}{
		{TypeSick, user.SickDays},
		{TypeTimeOff, user.TimeOffDays},
	}

	view := &BalanceView{UserID: user.ID, Year: today.Year()}
	for _, a := range allowances {
		used, err := s.Ledger.CountByUserInRange(ctx, user.ID, a.typ, year)
		if err != nil {
			return nil, fmt.Errorf("count %s usage: %w", a.typ, err)
		}
		usedDec := decimal.NewFromInt(int64(used))
		view.Balances = append(view.Balances, LeaveBalance{
			Type:      a.typ,
			Allowance: a.allowance,
			Used:      usedDec,
			Remaining: a.allowance.Sub(usedDec),
		})
	}
	return view, nil
}
