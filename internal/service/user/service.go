// Package user implements registration and preference updates. Registration
// seeds the implicit cash account from the signup form's opening balance.
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
)

type Repo interface {
	GetUser(ctx context.Context, userID uuid.UUID) (finance.User, error)
}

type Writer interface {
	// CreateUser persists the user and their seeded cash account atomically.
	// A duplicate email yields errs.ErrConflict.
	CreateUser(ctx context.Context, u finance.User, cash finance.Account) (finance.User, error)
	UpdateUser(ctx context.Context, u finance.User) (finance.User, error)
}

type Service interface {
	Register(ctx context.Context, name, email, currency string, openingCashMinor int64) (finance.User, finance.Account, error)
	Get(ctx context.Context, userID uuid.UUID) (finance.User, error)
	UpdateCurrency(ctx context.Context, userID uuid.UUID, currency string) (finance.User, error)
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) Register(ctx context.Context, name, email, currency string, openingCashMinor int64) (finance.User, finance.Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if name == "" {
		return finance.User{}, finance.Account{}, errors.New("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return finance.User{}, finance.Account{}, errors.New("valid email is required")
	}
	if len(currency) != 3 {
		return finance.User{}, finance.Account{}, errors.New("currency must be a 3-letter ISO code")
	}
	if openingCashMinor < 0 {
		return finance.User{}, finance.Account{}, errors.New("opening cash must be >= 0")
	}
	bal, err := finance.MinorAmount(currency, openingCashMinor)
	if err != nil {
		return finance.User{}, finance.Account{}, errors.New("unknown currency code")
	}
	now := time.Now().UTC()
	u := finance.User{ID: uuid.New(), Name: name, Email: email, Currency: currency, CreatedAt: now}
	cash := finance.Account{
		ID:        uuid.New(),
		UserID:    u.ID,
		Kind:      finance.AccountKindCash,
		Name:      "Cash",
		Balance:   bal,
		CreatedAt: now,
	}
	created, err := s.writer.CreateUser(ctx, u, cash)
	if err != nil {
		return finance.User{}, finance.Account{}, err
	}
	return created, cash, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (finance.User, error) {
	if userID == uuid.Nil {
		return finance.User{}, errs.ErrInvalid
	}
	return s.repo.GetUser(ctx, userID)
}

// UpdateCurrency changes the display preference only; stored balances keep
// their original currency.
func (s *service) UpdateCurrency(ctx context.Context, userID uuid.UUID, currency string) (finance.User, error) {
	if userID == uuid.Nil {
		return finance.User{}, errs.ErrInvalid
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return finance.User{}, errors.New("currency must be a 3-letter ISO code")
	}
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return finance.User{}, err
	}
	u.Currency = currency
	return s.writer.UpdateUser(ctx, u)
}
