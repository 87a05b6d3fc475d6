// Package recurring converts due recurring rules into concrete transactions
// exactly once per scheduled occurrence and advances each rule's cursor.
//
// Catch-up policy: a pass fast-forwards an overdue rule, materializing one
// backdated transaction per missed occurrence until the cursor passes now.
// Duplicate detection uses the same-UTC-calendar-day window; on top of that
// the store enforces a unique (rule, occurrence) claim so concurrent sweeps
// cannot double-post.
package recurring

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/service/ledger"
	"github.com/aminus007/fintrack/internal/slug"
)

// Repo defines read operations needed by the processor.
type Repo interface {
	ListRules(ctx context.Context, userID uuid.UUID) ([]finance.RecurringRule, error)
	GetRule(ctx context.Context, userID, ruleID uuid.UUID) (finance.RecurringRule, error)
	ListDueRules(ctx context.Context, now time.Time) ([]finance.RecurringRule, error)
	ListDueRulesByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]finance.RecurringRule, error)
	HasMatchingTransaction(ctx context.Context, userID uuid.UUID, m finance.TransactionMatch) (bool, error)
}

// Writer defines write operations needed by the processor.
type Writer interface {
	CreateRule(ctx context.Context, r finance.RecurringRule) (finance.RecurringRule, error)
	UpdateRule(ctx context.Context, r finance.RecurringRule) (finance.RecurringRule, error)
	DeleteRule(ctx context.Context, userID, ruleID uuid.UUID) error
	SaveRuleCursor(ctx context.Context, ruleID uuid.UUID, next time.Time) error
	// ClaimOccurrence records that the given occurrence of a rule is being
	// materialized. It returns false when another pass already holds the
	// claim; the caller must then skip the occurrence.
	ClaimOccurrence(ctx context.Context, ruleID uuid.UUID, occurrence time.Time) (bool, error)
	// ReleaseOccurrence drops a claim after a failed materialization so the
	// next pass can retry the occurrence.
	ReleaseOccurrence(ctx context.Context, ruleID uuid.UUID, occurrence time.Time) error
}

// Result summarizes one processing pass. Per-rule errors never abort the
// pass; they are counted here and logged.
type Result struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// Service exposes rule CRUD and the two invocation paths of the processor,
// which share the identical per-rule algorithm.
type Service interface {
	ValidateRule(ctx context.Context, r finance.RecurringRule) error
	CreateRule(ctx context.Context, r finance.RecurringRule) (finance.RecurringRule, error)
	UpdateRule(ctx context.Context, r finance.RecurringRule) (finance.RecurringRule, error)
	DeleteRule(ctx context.Context, userID, ruleID uuid.UUID) error
	ListRules(ctx context.Context, userID uuid.UUID) ([]finance.RecurringRule, error)
	ProcessAllDue(ctx context.Context, now time.Time) (Result, error)
	ProcessUserDue(ctx context.Context, userID uuid.UUID, now time.Time) (Result, error)
}

type service struct {
	repo   Repo
	writer Writer
	ledger ledger.Service
	log    *slog.Logger
}

func New(repo Repo, writer Writer, ledgerSvc ledger.Service, logger *slog.Logger) Service {
	return &service{repo: repo, writer: writer, ledger: ledgerSvc, log: logger}
}

func (s *service) ValidateRule(ctx context.Context, r finance.RecurringRule) error {
	if r.UserID == uuid.Nil || r.AccountID == uuid.Nil {
		return errs.ErrInvalid
	}
	switch r.Type {
	case finance.TxTypeIncome, finance.TxTypeExpense:
	default:
		return errors.New("type must be income or expense")
	}
	if r.AmountMinor() <= 0 {
		return errors.New("amount must be > 0")
	}
	if !slug.IsSlug(r.Category) {
		return errors.New("invalid category slug")
	}
	if !finance.ValidFrequency(r.Frequency) {
		return errors.New("frequency must be daily, weekly, monthly or yearly")
	}
	if r.StartDate.IsZero() {
		return errors.New("start_date is required")
	}
	return nil
}

func (s *service) CreateRule(ctx context.Context, r finance.RecurringRule) (finance.RecurringRule, error) {
	if err := s.ValidateRule(ctx, r); err != nil {
		return finance.RecurringRule{}, err
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now().UTC()
	r.Active = true
	r.NextOccurrence = r.StartDate
	return s.writer.CreateRule(ctx, r)
}

// UpdateRule applies user edits. The cursor is never taken from the caller:
// it either stays where the processor left it or, when frequency or start
// date changed, resets to the first occurrence of the new schedule.
func (s *service) UpdateRule(ctx context.Context, r finance.RecurringRule) (finance.RecurringRule, error) {
	if r.ID == uuid.Nil {
		return finance.RecurringRule{}, errs.ErrInvalid
	}
	current, err := s.repo.GetRule(ctx, r.UserID, r.ID)
	if err != nil {
		return finance.RecurringRule{}, err
	}
	if err := s.ValidateRule(ctx, r); err != nil {
		return finance.RecurringRule{}, err
	}
	r.CreatedAt = current.CreatedAt
	if current.Frequency != r.Frequency || !current.StartDate.Equal(r.StartDate) {
		r.NextOccurrence = r.FirstOnOrAfter(r.StartDate)
	} else {
		r.NextOccurrence = current.NextOccurrence
	}
	return s.writer.UpdateRule(ctx, r)
}

func (s *service) DeleteRule(ctx context.Context, userID, ruleID uuid.UUID) error {
	if userID == uuid.Nil || ruleID == uuid.Nil {
		return errs.ErrInvalid
	}
	if _, err := s.repo.GetRule(ctx, userID, ruleID); err != nil {
		return err
	}
	return s.writer.DeleteRule(ctx, userID, ruleID)
}

func (s *service) ListRules(ctx context.Context, userID uuid.UUID) ([]finance.RecurringRule, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.ListRules(ctx, userID)
}

// ProcessAllDue runs the scheduled sweep over every user's due rules.
func (s *service) ProcessAllDue(ctx context.Context, now time.Time) (Result, error) {
	rules, err := s.repo.ListDueRules(ctx, now)
	if err != nil {
		return Result{}, err
	}
	return s.processRules(ctx, rules, now), nil
}

// ProcessUserDue runs the manual trigger, scoped to one user's due rules.
func (s *service) ProcessUserDue(ctx context.Context, userID uuid.UUID, now time.Time) (Result, error) {
	if userID == uuid.Nil {
		return Result{}, errs.ErrInvalid
	}
	rules, err := s.repo.ListDueRulesByUser(ctx, userID, now)
	if err != nil {
		return Result{}, err
	}
	return s.processRules(ctx, rules, now), nil
}

func (s *service) processRules(ctx context.Context, rules []finance.RecurringRule, now time.Time) Result {
	var res Result
	for _, rule := range rules {
		posted, err := s.processRule(ctx, rule, now)
		res.Processed += posted
		if err != nil {
			res.Errors++
			s.log.Error("recurring rule failed", "rule_id", rule.ID, "user_id", rule.UserID, "err", err)
		}
	}
	return res
}

// processRule fast-forwards one rule, materializing each missed occurrence.
// The cursor only advances past an occurrence once that occurrence is
// satisfied (materialized, already present, or claimed elsewhere); on error
// the remaining occurrences are retried by the next pass.
func (s *service) processRule(ctx context.Context, rule finance.RecurringRule, now time.Time) (int, error) {
	posted := 0
	for !rule.NextOccurrence.After(now) {
		occ := rule.NextOccurrence
		match := finance.TransactionMatch{
			AmountMinor: rule.AmountMinor(),
			Type:        rule.Type,
			Category:    rule.Category,
			Day:         occ,
		}
		exists, err := s.repo.HasMatchingTransaction(ctx, rule.UserID, match)
		if err != nil {
			return posted, err
		}
		if !exists {
			day, _ := match.Window()
			claimed, err := s.writer.ClaimOccurrence(ctx, rule.ID, day)
			if err != nil {
				return posted, err
			}
			if claimed {
				if _, err := s.ledger.Create(ctx, rule.Materialize(occ)); err != nil {
					if relErr := s.writer.ReleaseOccurrence(ctx, rule.ID, day); relErr != nil {
						s.log.Error("release occurrence claim failed", "rule_id", rule.ID, "err", relErr)
					}
					return posted, err
				}
				posted++
			}
		}
		rule.NextOccurrence = rule.Advance(occ)
		if err := s.writer.SaveRuleCursor(ctx, rule.ID, rule.NextOccurrence); err != nil {
			return posted, err
		}
	}
	return posted, nil
}
