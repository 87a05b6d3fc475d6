// Package budget implements budget CRUD, the per-period uniqueness rule and
// the read-only progress rollup.
package budget

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/slug"
)

type Repo interface {
	ListBudgets(ctx context.Context, userID uuid.UUID) ([]finance.Budget, error)
	ListBudgetsForPeriod(ctx context.Context, userID uuid.UUID, month time.Month, year int) ([]finance.Budget, error)
	GetBudget(ctx context.Context, userID, budgetID uuid.UUID) (finance.Budget, error)
	// FindBudget resolves the unique budget for (user, category, month,
	// year), reporting errs.ErrNotFound when absent.
	FindBudget(ctx context.Context, userID uuid.UUID, category string, month time.Month, year int) (finance.Budget, error)
	// SumExpensesByCategory totals expense transactions per category over the
	// half-open [from, to) window.
	SumExpensesByCategory(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[string]int64, error)
}

type Writer interface {
	CreateBudget(ctx context.Context, b finance.Budget) (finance.Budget, error)
	UpdateBudget(ctx context.Context, b finance.Budget) (finance.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID uuid.UUID) error
}

// Progress is one row of the spend-vs-limit rollup.
type Progress struct {
	Category   string `json:"category"`
	LimitMinor int64  `json:"limit_minor"`
	SpentMinor int64  `json:"spent_minor"`
}

type Service interface {
	ValidateBudget(b finance.Budget) error
	Create(ctx context.Context, b finance.Budget) (finance.Budget, error)
	Update(ctx context.Context, b finance.Budget) (finance.Budget, error)
	Delete(ctx context.Context, userID, budgetID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]finance.Budget, error)
	Progress(ctx context.Context, userID uuid.UUID, month time.Month, year int) ([]Progress, error)
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) ValidateBudget(b finance.Budget) error {
	if b.UserID == uuid.Nil {
		return errs.ErrInvalid
	}
	if !slug.IsSlug(b.Category) {
		return errors.New("invalid category slug")
	}
	if b.LimitMinor <= 0 {
		return errors.New("limit must be > 0")
	}
	if b.Month < time.January || b.Month > time.December {
		return errors.New("month must be 1-12")
	}
	if b.Year < 1970 || b.Year > 9999 {
		return errors.New("invalid year")
	}
	return nil
}

func (s *service) Create(ctx context.Context, b finance.Budget) (finance.Budget, error) {
	if err := s.ValidateBudget(b); err != nil {
		return finance.Budget{}, err
	}
	if _, err := s.repo.FindBudget(ctx, b.UserID, b.Category, b.Month, b.Year); err == nil {
		return finance.Budget{}, errs.ErrConflict
	} else if !errors.Is(err, errs.ErrNotFound) {
		return finance.Budget{}, err
	}
	b.ID = uuid.New()
	return s.writer.CreateBudget(ctx, b)
}

func (s *service) Update(ctx context.Context, b finance.Budget) (finance.Budget, error) {
	if b.ID == uuid.Nil {
		return finance.Budget{}, errs.ErrInvalid
	}
	if err := s.ValidateBudget(b); err != nil {
		return finance.Budget{}, err
	}
	if _, err := s.repo.GetBudget(ctx, b.UserID, b.ID); err != nil {
		return finance.Budget{}, err
	}
	if other, err := s.repo.FindBudget(ctx, b.UserID, b.Category, b.Month, b.Year); err == nil {
		if other.ID != b.ID {
			return finance.Budget{}, errs.ErrConflict
		}
	} else if !errors.Is(err, errs.ErrNotFound) {
		return finance.Budget{}, err
	}
	return s.writer.UpdateBudget(ctx, b)
}

func (s *service) Delete(ctx context.Context, userID, budgetID uuid.UUID) error {
	if userID == uuid.Nil || budgetID == uuid.Nil {
		return errs.ErrInvalid
	}
	if _, err := s.repo.GetBudget(ctx, userID, budgetID); err != nil {
		return err
	}
	return s.writer.DeleteBudget(ctx, userID, budgetID)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]finance.Budget, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.ListBudgets(ctx, userID)
}

// Progress reports spent-vs-limit per budget of the period. Spending is
// summed over the half-open [firstOfMonth, firstOfNextMonth) window, so a
// transaction dated on the first of the following month is excluded. An
// empty period yields an empty slice, not an error.
func (s *service) Progress(ctx context.Context, userID uuid.UUID, month time.Month, year int) ([]Progress, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	if month < time.January || month > time.December {
		return nil, errs.ErrInvalid
	}
	budgets, err := s.repo.ListBudgetsForPeriod(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}
	out := make([]Progress, 0, len(budgets))
	if len(budgets) == 0 {
		return out, nil
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	spent, err := s.repo.SumExpensesByCategory(ctx, userID, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	for _, b := range budgets {
		out = append(out, Progress{Category: b.Category, LimitMinor: b.LimitMinor, SpentMinor: spent[b.Category]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
