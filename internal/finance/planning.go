package finance

import (
	"time"

	"github.com/google/uuid"
)

// Budget is a spend ceiling for one category in one (month, year).
// At most one budget may exist per (user, category, month, year).
// The spent figure is never stored; it is derived by the budget service.
type Budget struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Category   string
	LimitMinor int64
	Month      time.Month
	Year       int
}

// PeriodWindow returns the half-open [firstOfMonth, firstOfNextMonth) UTC
// interval covered by the budget.
func (b Budget) PeriodWindow() (time.Time, time.Time) {
	start := time.Date(b.Year, b.Month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Goal is a savings target. CurrentMinor tracks explicit deposits; on top of
// that the goal service computes a virtual allocation from the user's savings
// balance at read time, in (CreatedAt, ID) order.
type Goal struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	TargetMinor int64
	CurrentMinor int64
	Deadline    *time.Time
	CreatedAt   time.Time
}

// NeededMinor returns how much is still missing to reach the target.
func (g Goal) NeededMinor() int64 {
	if n := g.TargetMinor - g.CurrentMinor; n > 0 {
		return n
	}
	return 0
}

// DebtStatus enumerates the lifecycle states of a debt.
type DebtStatus string

const (
	DebtStatusActive DebtStatus = "active"
	DebtStatusPaid   DebtStatus = "paid"
)

// Debt is an owed balance. PaidMinor only ever increases; once it reaches the
// principal the status flips to paid and never reverts automatically.
type Debt struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	AmountMinor  int64
	InterestRate float64
	DueDate      time.Time
	PaidMinor    int64
	Notes        string
	Status       DebtStatus
	CreatedAt    time.Time
}
