// Package account implements account rules: opening balances at creation,
// editable display name, and deletion blocked while transactions still
// reference the account.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
)

type Repo interface {
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]finance.Account, error)
	GetAccount(ctx context.Context, userID, accountID uuid.UUID) (finance.Account, error)
	CountTransactionsByAccount(ctx context.Context, userID, accountID uuid.UUID) (int, error)
}

type Writer interface {
	CreateAccount(ctx context.Context, a finance.Account) (finance.Account, error)
	UpdateAccount(ctx context.Context, a finance.Account) (finance.Account, error)
	DeleteAccount(ctx context.Context, userID, accountID uuid.UUID) error
}

type Service interface {
	ValidateCreate(a finance.Account) error
	Create(ctx context.Context, a finance.Account) (finance.Account, error)
	List(ctx context.Context, userID uuid.UUID) ([]finance.Account, error)
	Get(ctx context.Context, userID, accountID uuid.UUID) (finance.Account, error)
	Rename(ctx context.Context, userID, accountID uuid.UUID, name string) (finance.Account, error)
	Delete(ctx context.Context, userID, accountID uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) ValidateCreate(a finance.Account) error {
	if a.UserID == uuid.Nil {
		return errs.ErrInvalid
	}
	switch a.Kind {
	case finance.AccountKindChecking, finance.AccountKindSavings, finance.AccountKindCash, finance.AccountKindOther:
	default:
		return errors.New("invalid account kind")
	}
	if a.Kind == finance.AccountKindChecking && a.Name == "" {
		return errors.New("name is required for checking accounts")
	}
	if a.BalanceMinor() < 0 {
		return errors.New("opening balance must be >= 0")
	}
	return nil
}

// Create persists a new account, opening balance included. Per-user cash is
// singular: a second cash account is rejected.
func (s *service) Create(ctx context.Context, a finance.Account) (finance.Account, error) {
	if err := s.ValidateCreate(a); err != nil {
		return finance.Account{}, err
	}
	if a.Kind == finance.AccountKindCash {
		existing, err := s.repo.ListAccounts(ctx, a.UserID)
		if err != nil {
			return finance.Account{}, err
		}
		for _, other := range existing {
			if other.Kind == finance.AccountKindCash {
				return finance.Account{}, errs.ErrConflict
			}
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	return s.writer.CreateAccount(ctx, a)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]finance.Account, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.ListAccounts(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, accountID uuid.UUID) (finance.Account, error) {
	if userID == uuid.Nil || accountID == uuid.Nil {
		return finance.Account{}, errs.ErrInvalid
	}
	return s.repo.GetAccount(ctx, userID, accountID)
}

// Rename updates the display name. Kind, currency and balance are immutable
// through this path; balances move only via the reconciler.
func (s *service) Rename(ctx context.Context, userID, accountID uuid.UUID, name string) (finance.Account, error) {
	if userID == uuid.Nil || accountID == uuid.Nil {
		return finance.Account{}, errs.ErrInvalid
	}
	acc, err := s.repo.GetAccount(ctx, userID, accountID)
	if err != nil {
		return finance.Account{}, err
	}
	if acc.Kind == finance.AccountKindChecking && name == "" {
		return finance.Account{}, errors.New("name is required for checking accounts")
	}
	acc.Name = name
	return s.writer.UpdateAccount(ctx, acc)
}

// Delete removes an account unless transactions still reference it.
func (s *service) Delete(ctx context.Context, userID, accountID uuid.UUID) error {
	if userID == uuid.Nil || accountID == uuid.Nil {
		return errs.ErrInvalid
	}
	if _, err := s.repo.GetAccount(ctx, userID, accountID); err != nil {
		return err
	}
	n, err := s.repo.CountTransactionsByAccount(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if n > 0 {
		return errs.ErrAccountInUse
	}
	return s.writer.DeleteAccount(ctx, userID, accountID)
}
