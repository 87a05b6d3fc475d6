// Package debt tracks owed balances and their repayment. PaidMinor only ever
// increases; status flips to paid at the principal and never auto-reverts.
package debt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/service/ledger"
)

type Repo interface {
	ListDebts(ctx context.Context, userID uuid.UUID) ([]finance.Debt, error)
	GetDebt(ctx context.Context, userID, debtID uuid.UUID) (finance.Debt, error)
	GetAccount(ctx context.Context, userID, accountID uuid.UUID) (finance.Account, error)
}

type Writer interface {
	CreateDebt(ctx context.Context, d finance.Debt) (finance.Debt, error)
	UpdateDebt(ctx context.Context, d finance.Debt) (finance.Debt, error)
	DeleteDebt(ctx context.Context, userID, debtID uuid.UUID) error
}

type Service interface {
	Create(ctx context.Context, d finance.Debt) (finance.Debt, error)
	Update(ctx context.Context, d finance.Debt) (finance.Debt, error)
	Delete(ctx context.Context, userID, debtID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]finance.Debt, error)
	Get(ctx context.Context, userID, debtID uuid.UUID) (finance.Debt, error)
	// RecordPayment registers a repayment. With a funding account the payment
	// is also posted as a "debt" expense through the ledger service.
	RecordPayment(ctx context.Context, userID, debtID uuid.UUID, amountMinor int64, fromAccountID *uuid.UUID) (finance.Debt, error)
}

type service struct {
	repo   Repo
	writer Writer
	ledger ledger.Service
}

func New(repo Repo, writer Writer, ledgerSvc ledger.Service) Service {
	return &service{repo: repo, writer: writer, ledger: ledgerSvc}
}

func validate(d finance.Debt) error {
	if d.UserID == uuid.Nil {
		return errs.ErrInvalid
	}
	if d.Name == "" {
		return errors.New("name is required")
	}
	if d.AmountMinor <= 0 {
		return errors.New("amount must be > 0")
	}
	if d.InterestRate < 0 {
		return errors.New("interest rate must be >= 0")
	}
	return nil
}

func (s *service) Create(ctx context.Context, d finance.Debt) (finance.Debt, error) {
	if err := validate(d); err != nil {
		return finance.Debt{}, err
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()
	d.PaidMinor = 0
	d.Status = finance.DebtStatusActive
	return s.writer.CreateDebt(ctx, d)
}

// Update edits descriptive fields. PaidMinor and Status are owned by
// RecordPayment and cannot be rewound through this path.
func (s *service) Update(ctx context.Context, d finance.Debt) (finance.Debt, error) {
	if d.ID == uuid.Nil {
		return finance.Debt{}, errs.ErrInvalid
	}
	current, err := s.repo.GetDebt(ctx, d.UserID, d.ID)
	if err != nil {
		return finance.Debt{}, err
	}
	if err := validate(d); err != nil {
		return finance.Debt{}, err
	}
	d.CreatedAt = current.CreatedAt
	d.PaidMinor = current.PaidMinor
	d.Status = current.Status
	// Raising the principal can reopen a paid debt; shrinking it below the
	// paid amount cannot strip the paid status.
	if d.Status == finance.DebtStatusPaid && d.PaidMinor < d.AmountMinor {
		d.Status = finance.DebtStatusActive
	}
	if d.Status == finance.DebtStatusActive && d.PaidMinor >= d.AmountMinor {
		d.Status = finance.DebtStatusPaid
	}
	return s.writer.UpdateDebt(ctx, d)
}

func (s *service) Delete(ctx context.Context, userID, debtID uuid.UUID) error {
	if userID == uuid.Nil || debtID == uuid.Nil {
		return errs.ErrInvalid
	}
	if _, err := s.repo.GetDebt(ctx, userID, debtID); err != nil {
		return err
	}
	return s.writer.DeleteDebt(ctx, userID, debtID)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]finance.Debt, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.ListDebts(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, debtID uuid.UUID) (finance.Debt, error) {
	if userID == uuid.Nil || debtID == uuid.Nil {
		return finance.Debt{}, errs.ErrInvalid
	}
	return s.repo.GetDebt(ctx, userID, debtID)
}

func (s *service) RecordPayment(ctx context.Context, userID, debtID uuid.UUID, amountMinor int64, fromAccountID *uuid.UUID) (finance.Debt, error) {
	if userID == uuid.Nil || debtID == uuid.Nil {
		return finance.Debt{}, errs.ErrInvalid
	}
	if amountMinor <= 0 {
		return finance.Debt{}, errors.New("amount must be > 0")
	}
	d, err := s.repo.GetDebt(ctx, userID, debtID)
	if err != nil {
		return finance.Debt{}, err
	}
	if d.Status == finance.DebtStatusPaid {
		return finance.Debt{}, errs.ErrConflict
	}
	// The funded leg posts first: if the expense is rejected (insufficient
	// funds, missing account) the debt stays untouched.
	if fromAccountID != nil {
		acc, err := s.repo.GetAccount(ctx, userID, *fromAccountID)
		if err != nil {
			return finance.Debt{}, err
		}
		amt, err := finance.MinorAmount(acc.Currency(), amountMinor)
		if err != nil {
			return finance.Debt{}, err
		}
		if _, err := s.ledger.Create(ctx, finance.Transaction{
			UserID:    userID,
			AccountID: *fromAccountID,
			Type:      finance.TxTypeExpense,
			Category:  "debt",
			Note:      "payment: " + d.Name,
			Date:      time.Now().UTC(),
			Amount:    amt,
		}); err != nil {
			return finance.Debt{}, err
		}
	}
	d.PaidMinor += amountMinor
	if d.PaidMinor >= d.AmountMinor {
		d.Status = finance.DebtStatusPaid
	}
	return s.writer.UpdateDebt(ctx, d)
}
