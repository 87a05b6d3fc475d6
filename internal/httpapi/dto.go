package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/finance"
)

// Users

type registerRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Currency         string `json:"currency"`
	OpeningCashMinor int64  `json:"opening_cash_minor"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

type registerResponse struct {
	User userResponse    `json:"user"`
	Cash accountResponse `json:"cash_account"`
}

func toUserResponse(u finance.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Currency: u.Currency, CreatedAt: u.CreatedAt}
}

// Accounts

type postAccountRequest struct {
	UserID       uuid.UUID           `json:"user_id"`
	Kind         finance.AccountKind `json:"kind"`
	Name         string              `json:"name"`
	BalanceMinor int64               `json:"balance_minor"`
}

type renameAccountRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
}

type accountResponse struct {
	ID           uuid.UUID           `json:"id"`
	UserID       uuid.UUID           `json:"user_id"`
	Kind         finance.AccountKind `json:"kind"`
	Name         string              `json:"name"`
	Currency     string              `json:"currency"`
	BalanceMinor int64               `json:"balance_minor"`
	CreatedAt    time.Time           `json:"created_at"`
}

func toAccountResponse(a finance.Account) accountResponse {
	return accountResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		Kind:         a.Kind,
		Name:         a.Name,
		Currency:     a.Currency(),
		BalanceMinor: a.BalanceMinor(),
		CreatedAt:    a.CreatedAt,
	}
}

// Transactions

type postTransactionRequest struct {
	UserID      uuid.UUID      `json:"user_id"`
	AccountID   uuid.UUID      `json:"account_id"`
	Type        finance.TxType `json:"type"`
	Category    string         `json:"category"`
	Note        string         `json:"note"`
	Date        time.Time      `json:"date"`
	AmountMinor int64          `json:"amount_minor"`
}

type transactionResponse struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	AccountID   uuid.UUID      `json:"account_id"`
	Type        finance.TxType `json:"type"`
	Category    string         `json:"category"`
	Note        string         `json:"note"`
	Date        time.Time      `json:"date"`
	Currency    string         `json:"currency"`
	AmountMinor int64          `json:"amount_minor"`
	RuleID      *uuid.UUID     `json:"rule_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toTransactionResponse(t finance.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		AccountID:   t.AccountID,
		Type:        t.Type,
		Category:    t.Category,
		Note:        t.Note,
		Date:        t.Date,
		Currency:    t.Amount.Curr().Code(),
		AmountMinor: t.AmountMinor(),
		RuleID:      t.RuleID,
		CreatedAt:   t.CreatedAt,
	}
}

func toTransactionResponses(ts []finance.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

type salaryAllocationRequest struct {
	AccountID uuid.UUID `json:"account_id"`
	Percent   int       `json:"percent"`
}

type postSalaryRequest struct {
	UserID      uuid.UUID                 `json:"user_id"`
	Date        time.Time                 `json:"date"`
	AmountMinor int64                     `json:"amount_minor"`
	Allocations []salaryAllocationRequest `json:"allocations"`
}

// Recurring rules

type postRuleRequest struct {
	UserID      uuid.UUID         `json:"user_id"`
	AccountID   uuid.UUID         `json:"account_id"`
	Type        finance.TxType    `json:"type"`
	Category    string            `json:"category"`
	Note        string            `json:"note"`
	Frequency   finance.Frequency `json:"frequency"`
	StartDate   time.Time         `json:"start_date"`
	AmountMinor int64             `json:"amount_minor"`
	Active      *bool             `json:"active,omitempty"`
}

type ruleResponse struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	AccountID      uuid.UUID         `json:"account_id"`
	Type           finance.TxType    `json:"type"`
	Category       string            `json:"category"`
	Note           string            `json:"note"`
	Frequency      finance.Frequency `json:"frequency"`
	StartDate      time.Time         `json:"start_date"`
	NextOccurrence time.Time         `json:"next_occurrence"`
	Currency       string            `json:"currency"`
	AmountMinor    int64             `json:"amount_minor"`
	Active         bool              `json:"active"`
	CreatedAt      time.Time         `json:"created_at"`
}

func toRuleResponse(r finance.RecurringRule) ruleResponse {
	return ruleResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		AccountID:      r.AccountID,
		Type:           r.Type,
		Category:       r.Category,
		Note:           r.Note,
		Frequency:      r.Frequency,
		StartDate:      r.StartDate,
		NextOccurrence: r.NextOccurrence,
		Currency:       r.Amount.Curr().Code(),
		AmountMinor:    r.AmountMinor(),
		Active:         r.Active,
		CreatedAt:      r.CreatedAt,
	}
}

// Budgets

type postBudgetRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	Category   string    `json:"category"`
	LimitMinor int64     `json:"limit_minor"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
}

type budgetResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Category   string    `json:"category"`
	LimitMinor int64     `json:"limit_minor"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
}

func toBudgetResponse(b finance.Budget) budgetResponse {
	return budgetResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		Category:   b.Category,
		LimitMinor: b.LimitMinor,
		Month:      int(b.Month),
		Year:       b.Year,
	}
}

// Goals

type postGoalRequest struct {
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	TargetMinor int64      `json:"target_minor"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

type goalFundsRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	AmountMinor int64     `json:"amount_minor"`
}

type goalResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Name         string     `json:"name"`
	TargetMinor  int64      `json:"target_minor"`
	CurrentMinor int64      `json:"current_minor"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toGoalResponse(g finance.Goal) goalResponse {
	return goalResponse{
		ID:           g.ID,
		UserID:       g.UserID,
		Name:         g.Name,
		TargetMinor:  g.TargetMinor,
		CurrentMinor: g.CurrentMinor,
		Deadline:     g.Deadline,
		CreatedAt:    g.CreatedAt,
	}
}

// Debts

type postDebtRequest struct {
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	AmountMinor  int64     `json:"amount_minor"`
	InterestRate float64   `json:"interest_rate"`
	DueDate      time.Time `json:"due_date"`
	Notes        string    `json:"notes"`
}

type debtPaymentRequest struct {
	UserID        uuid.UUID  `json:"user_id"`
	AmountMinor   int64      `json:"amount_minor"`
	FromAccountID *uuid.UUID `json:"from_account_id,omitempty"`
}

type debtResponse struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	Name           string             `json:"name"`
	AmountMinor    int64              `json:"amount_minor"`
	InterestRate   float64            `json:"interest_rate"`
	DueDate        time.Time          `json:"due_date"`
	PaidMinor      int64              `json:"paid_minor"`
	RemainingMinor int64              `json:"remaining_minor"`
	Notes          string             `json:"notes"`
	Status         finance.DebtStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}

func toDebtResponse(d finance.Debt) debtResponse {
	remaining := d.AmountMinor - d.PaidMinor
	if remaining < 0 {
		remaining = 0
	}
	return debtResponse{
		ID:             d.ID,
		UserID:         d.UserID,
		Name:           d.Name,
		AmountMinor:    d.AmountMinor,
		InterestRate:   d.InterestRate,
		DueDate:        d.DueDate,
		PaidMinor:      d.PaidMinor,
		RemainingMinor: remaining,
		Notes:          d.Notes,
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
	}
}
