package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
)

// TxType classifies a transaction's direction; the sign of its effect on the
// funding account is implied by the type, amounts are always positive.
type TxType string

const (
	// TxTypeIncome adds the amount to the receiving account.
	TxTypeIncome TxType = "income"
	// TxTypeExpense subtracts the amount from the funding account.
	TxTypeExpense TxType = "expense"
)

// AccountKind enumerates the pools of money a user can hold.
type AccountKind string

const (
	AccountKindChecking AccountKind = "checking"
	AccountKindSavings  AccountKind = "savings"
	// AccountKindCash is the implicit wallet pool seeded at registration.
	AccountKindCash  AccountKind = "cash"
	AccountKindOther AccountKind = "other"
)

// User captures identity and preferences.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	// Currency is the user's preferred ISO currency code; accounts inherit it.
	Currency  string
	CreatedAt time.Time
}

// Account represents a pool of money belonging to a user.
type Account struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Kind   AccountKind
	// Name is a display name; only meaningful for checking accounts.
	Name string
	// Balance is the cached net of all transactions referencing this account
	// plus its opening balance. Only the reconciler mutates it.
	Balance   money.Amount
	CreatedAt time.Time
}

// Currency returns the ISO code of the account's balance.
func (a Account) Currency() string { return a.Balance.Curr().Code() }

// BalanceMinor returns the cached balance in minor units.
func (a Account) BalanceMinor() int64 {
	units, _ := a.Balance.MinorUnits()
	return units
}

// Transaction is a single posted monetary event.
type Transaction struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	// AccountID names the funding account for an expense or the receiving
	// account for an income.
	AccountID uuid.UUID
	Type      TxType
	Category  string
	Note      string
	Date      time.Time
	Amount    money.Amount
	// RuleID is set when the transaction was materialized from a recurring rule.
	RuleID    *uuid.UUID
	CreatedAt time.Time
}

// AmountMinor returns the positive amount in minor units.
func (t Transaction) AmountMinor() int64 {
	units, _ := t.Amount.MinorUnits()
	return units
}

// SignedMinor returns the transaction's effect on its account in minor units:
// positive for income, negative for expense.
func (t Transaction) SignedMinor() int64 {
	units, _ := t.Amount.MinorUnits()
	if t.Type == TxTypeExpense {
		return -units
	}
	return units
}

// MinorAmount builds a money.Amount from minor units in the given currency.
func MinorAmount(curr string, minor int64) (money.Amount, error) {
	return money.NewAmountFromMinorUnits(curr, minor)
}

// BalanceAdjustment is one leg of a reconciliation: apply DeltaMinor to the
// cached balance of AccountID. Stores apply the transaction write and its
// adjustments as a single atomic unit.
type BalanceAdjustment struct {
	AccountID  uuid.UUID
	DeltaMinor int64
}

// TransactionMatch describes the duplicate-detection probe used by the
// recurring processor: an existing transaction for the owner with equal
// amount, type and category dated on the same UTC calendar day as Day
// satisfies the occurrence.
type TransactionMatch struct {
	AmountMinor int64
	Type        TxType
	Category    string
	Day         time.Time
}

// Window returns the half-open [start, end) UTC day interval for the match.
func (m TransactionMatch) Window() (time.Time, time.Time) {
	d := m.Day.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
