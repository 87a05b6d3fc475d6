// Package goal implements savings goals: CRUD, explicit funding, and the
// virtual allocation of the user's savings balance across open goals.
package goal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
)

type Repo interface {
	// ListGoals returns the user's goals in (CreatedAt, ID) order. The
	// explicit ordering key is what makes allocation deterministic.
	ListGoals(ctx context.Context, userID uuid.UUID) ([]finance.Goal, error)
	GetGoal(ctx context.Context, userID, goalID uuid.UUID) (finance.Goal, error)
	// SavingsBalanceMinor sums the balances of the user's savings accounts.
	SavingsBalanceMinor(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Writer interface {
	CreateGoal(ctx context.Context, g finance.Goal) (finance.Goal, error)
	UpdateGoal(ctx context.Context, g finance.Goal) (finance.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error
}

// Allocation is the virtual funding view for one goal. AllocatedMinor is
// recomputed on every read and never persisted.
type Allocation struct {
	GoalID         uuid.UUID `json:"goal_id"`
	Name           string    `json:"name"`
	TargetMinor    int64     `json:"target_minor"`
	CurrentMinor   int64     `json:"current_minor"`
	AllocatedMinor int64     `json:"allocated_minor"`
}

type Service interface {
	Create(ctx context.Context, g finance.Goal) (finance.Goal, error)
	Update(ctx context.Context, g finance.Goal) (finance.Goal, error)
	Delete(ctx context.Context, userID, goalID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]finance.Goal, error)
	AddFunds(ctx context.Context, userID, goalID uuid.UUID, amountMinor int64) (finance.Goal, error)
	Allocations(ctx context.Context, userID uuid.UUID) ([]Allocation, error)
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func validate(g finance.Goal) error {
	if g.UserID == uuid.Nil {
		return errs.ErrInvalid
	}
	if g.Name == "" {
		return errors.New("name is required")
	}
	if g.TargetMinor <= 0 {
		return errors.New("target must be > 0")
	}
	if g.CurrentMinor < 0 {
		return errors.New("current must be >= 0")
	}
	return nil
}

func (s *service) Create(ctx context.Context, g finance.Goal) (finance.Goal, error) {
	if err := validate(g); err != nil {
		return finance.Goal{}, err
	}
	g.ID = uuid.New()
	g.CreatedAt = time.Now().UTC()
	return s.writer.CreateGoal(ctx, g)
}

func (s *service) Update(ctx context.Context, g finance.Goal) (finance.Goal, error) {
	if g.ID == uuid.Nil {
		return finance.Goal{}, errs.ErrInvalid
	}
	current, err := s.repo.GetGoal(ctx, g.UserID, g.ID)
	if err != nil {
		return finance.Goal{}, err
	}
	if err := validate(g); err != nil {
		return finance.Goal{}, err
	}
	// CreatedAt is the allocation ordering key and never changes.
	g.CreatedAt = current.CreatedAt
	// Explicit deposits only move through AddFunds.
	g.CurrentMinor = current.CurrentMinor
	return s.writer.UpdateGoal(ctx, g)
}

func (s *service) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	if userID == uuid.Nil || goalID == uuid.Nil {
		return errs.ErrInvalid
	}
	if _, err := s.repo.GetGoal(ctx, userID, goalID); err != nil {
		return err
	}
	return s.writer.DeleteGoal(ctx, userID, goalID)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]finance.Goal, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.ListGoals(ctx, userID)
}

func (s *service) AddFunds(ctx context.Context, userID, goalID uuid.UUID, amountMinor int64) (finance.Goal, error) {
	if userID == uuid.Nil || goalID == uuid.Nil {
		return finance.Goal{}, errs.ErrInvalid
	}
	if amountMinor <= 0 {
		return finance.Goal{}, errors.New("amount must be > 0")
	}
	g, err := s.repo.GetGoal(ctx, userID, goalID)
	if err != nil {
		return finance.Goal{}, err
	}
	g.CurrentMinor += amountMinor
	return s.writer.UpdateGoal(ctx, g)
}

// Allocations spreads the user's savings balance across open goals greedily
// in creation order: needed = max(0, target-current), allocated = min(needed,
// remaining). Deterministic for unchanged inputs; the sum of allocations
// never exceeds the savings balance.
func (s *service) Allocations(ctx context.Context, userID uuid.UUID) ([]Allocation, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	goals, err := s.repo.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	remaining, err := s.repo.SavingsBalanceMinor(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Allocation, 0, len(goals))
	for _, g := range goals {
		needed := g.NeededMinor()
		allocated := needed
		if allocated > remaining {
			allocated = remaining
		}
		remaining -= allocated
		out = append(out, Allocation{
			GoalID:         g.ID,
			Name:           g.Name,
			TargetMinor:    g.TargetMinor,
			CurrentMinor:   g.CurrentMinor,
			AllocatedMinor: allocated,
		})
	}
	return out, nil
}
