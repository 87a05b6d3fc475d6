// Package ledger implements the transaction service and the balance
// reconciler: all transaction-mutating code paths go through it, and each
// mutation is persisted together with its balance adjustments as one atomic
// unit.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/slug"
)

// Repo defines read operations needed by the service.
type Repo interface {
	GetAccount(ctx context.Context, userID, accountID uuid.UUID) (finance.Account, error)
	GetTransaction(ctx context.Context, userID, txID uuid.UUID) (finance.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]finance.Transaction, error)
}

// Writer defines write operations needed by the service. Implementations
// must apply the transaction write and the adjustments atomically.
type Writer interface {
	CreateTransaction(ctx context.Context, t finance.Transaction, adjs []finance.BalanceAdjustment) (finance.Transaction, error)
	CreateTransactionsBatch(ctx context.Context, ts []finance.Transaction, adjs []finance.BalanceAdjustment) ([]finance.Transaction, error)
	UpdateTransaction(ctx context.Context, t finance.Transaction, adjs []finance.BalanceAdjustment) (finance.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, txID uuid.UUID, adjs []finance.BalanceAdjustment) error
}

// SalaryAllocation is one slice of a salary split.
type SalaryAllocation struct {
	AccountID uuid.UUID
	Percent   int
}

// Service exposes validation and mutation of transactions.
type Service interface {
	Validate(ctx context.Context, t finance.Transaction) error
	Create(ctx context.Context, t finance.Transaction) (finance.Transaction, error)
	Update(ctx context.Context, t finance.Transaction) (finance.Transaction, error)
	Delete(ctx context.Context, userID, txID uuid.UUID) error
	Get(ctx context.Context, userID, txID uuid.UUID) (finance.Transaction, error)
	List(ctx context.Context, userID uuid.UUID) ([]finance.Transaction, error)
	AllocateSalary(ctx context.Context, userID uuid.UUID, date time.Time, amountMinor int64, allocs []SalaryAllocation) ([]finance.Transaction, error)
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) Validate(ctx context.Context, t finance.Transaction) error {
	if t.UserID == uuid.Nil || t.AccountID == uuid.Nil {
		return errs.ErrInvalid
	}
	switch t.Type {
	case finance.TxTypeIncome, finance.TxTypeExpense:
	default:
		return errors.New("type must be income or expense")
	}
	if t.AmountMinor() <= 0 {
		return errors.New("amount must be > 0")
	}
	if !slug.IsSlug(t.Category) {
		return errors.New("invalid category slug")
	}
	if t.Date.IsZero() {
		return errors.New("date is required")
	}
	acc, err := s.repo.GetAccount(ctx, t.UserID, t.AccountID)
	if err != nil {
		return err
	}
	if acc.Currency() != t.Amount.Curr().Code() {
		return errors.New("account currency mismatch")
	}
	return nil
}

func (s *service) Create(ctx context.Context, t finance.Transaction) (finance.Transaction, error) {
	if err := s.Validate(ctx, t); err != nil {
		return finance.Transaction{}, err
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	adjs := createDeltas(t)
	if err := s.ensureFunds(ctx, t.UserID, adjs); err != nil {
		return finance.Transaction{}, err
	}
	return s.writer.CreateTransaction(ctx, t, adjs)
}

func (s *service) Update(ctx context.Context, t finance.Transaction) (finance.Transaction, error) {
	if t.ID == uuid.Nil {
		return finance.Transaction{}, errs.ErrInvalid
	}
	old, err := s.repo.GetTransaction(ctx, t.UserID, t.ID)
	if err != nil {
		return finance.Transaction{}, err
	}
	// Provenance and creation time are immutable.
	t.RuleID = old.RuleID
	t.CreatedAt = old.CreatedAt
	if err := s.Validate(ctx, t); err != nil {
		return finance.Transaction{}, err
	}
	adjs := updateDeltas(old, t)
	if err := s.ensureFunds(ctx, t.UserID, adjs); err != nil {
		return finance.Transaction{}, err
	}
	return s.writer.UpdateTransaction(ctx, t, adjs)
}

func (s *service) Delete(ctx context.Context, userID, txID uuid.UUID) error {
	if userID == uuid.Nil || txID == uuid.Nil {
		return errs.ErrInvalid
	}
	old, err := s.repo.GetTransaction(ctx, userID, txID)
	if err != nil {
		return err
	}
	adjs := deleteDeltas(old)
	if err := s.ensureFunds(ctx, userID, adjs); err != nil {
		return err
	}
	return s.writer.DeleteTransaction(ctx, userID, txID, adjs)
}

func (s *service) Get(ctx context.Context, userID, txID uuid.UUID) (finance.Transaction, error) {
	if userID == uuid.Nil || txID == uuid.Nil {
		return finance.Transaction{}, errs.ErrInvalid
	}
	return s.repo.GetTransaction(ctx, userID, txID)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]finance.Transaction, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.ListTransactions(ctx, userID)
}

// AllocateSalary splits one salary amount across accounts by percentage and
// posts one income transaction per slice, all-or-nothing. The last slice
// absorbs the rounding remainder so the slices sum to the salary exactly.
func (s *service) AllocateSalary(ctx context.Context, userID uuid.UUID, date time.Time, amountMinor int64, allocs []SalaryAllocation) ([]finance.Transaction, error) {
	if userID == uuid.Nil || len(allocs) == 0 {
		return nil, errs.ErrInvalid
	}
	if amountMinor <= 0 {
		return nil, errors.New("amount must be > 0")
	}
	total := 0
	for _, a := range allocs {
		if a.AccountID == uuid.Nil {
			return nil, errors.New("allocation account_id required")
		}
		if a.Percent <= 0 {
			return nil, errors.New("allocation percent must be > 0")
		}
		total += a.Percent
	}
	if total != 100 {
		return nil, errors.New("allocation percents must sum to 100")
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	now := time.Now().UTC()
	txs := make([]finance.Transaction, 0, len(allocs))
	var allocated int64
	for i, a := range allocs {
		acc, err := s.repo.GetAccount(ctx, userID, a.AccountID)
		if err != nil {
			return nil, err
		}
		slice := amountMinor * int64(a.Percent) / 100
		if i == len(allocs)-1 {
			slice = amountMinor - allocated
		}
		allocated += slice
		amt, err := finance.MinorAmount(acc.Currency(), slice)
		if err != nil {
			return nil, err
		}
		txs = append(txs, finance.Transaction{
			ID:        uuid.New(),
			UserID:    userID,
			AccountID: a.AccountID,
			Type:      finance.TxTypeIncome,
			Category:  "salary",
			Note:      "salary allocation",
			Date:      date,
			Amount:    amt,
			CreatedAt: now,
		})
	}
	adjs := make([]finance.BalanceAdjustment, 0, len(txs))
	for _, t := range txs {
		adjs = append(adjs, finance.BalanceAdjustment{AccountID: t.AccountID, DeltaMinor: t.SignedMinor()})
	}
	return s.writer.CreateTransactionsBatch(ctx, txs, mergeDeltas(adjs))
}

// ensureFunds rejects any adjustment set that would drive an account balance
// negative. Stores re-check under their own atomicity; this is the
// client-visible authorization-time check.
func (s *service) ensureFunds(ctx context.Context, userID uuid.UUID, adjs []finance.BalanceAdjustment) error {
	for _, adj := range adjs {
		if adj.DeltaMinor >= 0 {
			continue
		}
		acc, err := s.repo.GetAccount(ctx, userID, adj.AccountID)
		if err != nil {
			return err
		}
		if acc.BalanceMinor()+adj.DeltaMinor < 0 {
			return errs.ErrInsufficientFunds
		}
	}
	return nil
}
