package memory

// Package memory provides a simple in-memory implementation used for
// development and tests. A single mutex gives every multi-document write
// (transaction + balance adjustments) the same atomicity the Postgres store
// gets from a database transaction.
import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
)

// Store is an in-memory implementation of every repository and writer used
// by the services. It is guarded by an RWMutex for concurrent use.
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]finance.User
	accounts     map[uuid.UUID]finance.Account
	transactions map[uuid.UUID]finance.Transaction
	rules        map[uuid.UUID]finance.RecurringRule
	budgets      map[uuid.UUID]finance.Budget
	goals        map[uuid.UUID]finance.Goal
	debts        map[uuid.UUID]finance.Debt
	// occurrence claims: ruleID -> UTC day -> taken
	claims map[uuid.UUID]map[string]struct{}
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		users:        make(map[uuid.UUID]finance.User),
		accounts:     make(map[uuid.UUID]finance.Account),
		transactions: make(map[uuid.UUID]finance.Transaction),
		rules:        make(map[uuid.UUID]finance.RecurringRule),
		budgets:      make(map[uuid.UUID]finance.Budget),
		goals:        make(map[uuid.UUID]finance.Goal),
		debts:        make(map[uuid.UUID]finance.Debt),
		claims:       make(map[uuid.UUID]map[string]struct{}),
	}
}

// Seed helpers for local dev/tests.
func (s *Store) SeedUser(u finance.User)       { s.mu.Lock(); s.users[u.ID] = u; s.mu.Unlock() }
func (s *Store) SeedAccount(a finance.Account) { s.mu.Lock(); s.accounts[a.ID] = a; s.mu.Unlock() }

// Ready implements the readiness probe; the memory store is always ready.
func (s *Store) Ready(_ context.Context) error { return nil }

// --- Users ---

func (s *Store) GetUser(_ context.Context, userID uuid.UUID) (finance.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return finance.User{}, errs.ErrNotFound
	}
	return u, nil
}

// CreateUser persists the user and the seeded cash account in one critical
// section.
func (s *Store) CreateUser(_ context.Context, u finance.User, cash finance.Account) (finance.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Email == u.Email {
			return finance.User{}, errs.ErrConflict
		}
	}
	s.users[u.ID] = u
	s.accounts[cash.ID] = cash
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u finance.User) (finance.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return finance.User{}, errs.ErrNotFound
	}
	s.users[u.ID] = u
	return u, nil
}

// --- Accounts ---

func (s *Store) GetAccount(_ context.Context, userID, accountID uuid.UUID) (finance.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getAccountLocked(userID, accountID)
}

func (s *Store) getAccountLocked(userID, accountID uuid.UUID) (finance.Account, error) {
	a, ok := s.accounts[accountID]
	if !ok || a.UserID != userID {
		return finance.Account{}, errs.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context, userID uuid.UUID) ([]finance.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]finance.Account, 0)
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) CreateAccount(_ context.Context, a finance.Account) (finance.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAccount(_ context.Context, a finance.Account) (finance.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getAccountLocked(a.UserID, a.ID); err != nil {
		return finance.Account{}, err
	}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) DeleteAccount(_ context.Context, userID, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getAccountLocked(userID, accountID); err != nil {
		return err
	}
	delete(s.accounts, accountID)
	return nil
}

func (s *Store) CountTransactionsByAccount(_ context.Context, userID, accountID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.transactions {
		if t.UserID == userID && t.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (s *Store) SavingsBalanceMinor(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, a := range s.accounts {
		if a.UserID == userID && a.Kind == finance.AccountKindSavings {
			total += a.BalanceMinor()
		}
	}
	return total, nil
}

// --- Transactions ---

func (s *Store) GetTransaction(_ context.Context, userID, txID uuid.UUID) (finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[txID]
	if !ok || t.UserID != userID {
		return finance.Transaction{}, errs.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, userID uuid.UUID) ([]finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]finance.Transaction, 0)
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// CreateTransaction applies the write and its balance adjustments in one
// critical section: either everything lands or nothing does.
func (s *Store) CreateTransaction(_ context.Context, t finance.Transaction, adjs []finance.BalanceAdjustment) (finance.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.applyAdjustmentsLocked(t.UserID, adjs); err != nil {
		return finance.Transaction{}, err
	}
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) CreateTransactionsBatch(_ context.Context, ts []finance.Transaction, adjs []finance.BalanceAdjustment) ([]finance.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ts) == 0 {
		return nil, errs.ErrInvalid
	}
	if err := s.applyAdjustmentsLocked(ts[0].UserID, adjs); err != nil {
		return nil, err
	}
	for _, t := range ts {
		s.transactions[t.ID] = t
	}
	return ts, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t finance.Transaction, adjs []finance.BalanceAdjustment) (finance.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.transactions[t.ID]
	if !ok || old.UserID != t.UserID {
		return finance.Transaction{}, errs.ErrNotFound
	}
	if err := s.applyAdjustmentsLocked(t.UserID, adjs); err != nil {
		return finance.Transaction{}, err
	}
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, txID uuid.UUID, adjs []finance.BalanceAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.transactions[txID]
	if !ok || old.UserID != userID {
		return errs.ErrNotFound
	}
	if err := s.applyAdjustmentsLocked(userID, adjs); err != nil {
		return err
	}
	delete(s.transactions, txID)
	return nil
}

func (s *Store) HasMatchingTransaction(_ context.Context, userID uuid.UUID, m finance.TransactionMatch) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start, end := m.Window()
	for _, t := range s.transactions {
		if t.UserID != userID || t.Type != m.Type || t.Category != m.Category {
			continue
		}
		if t.AmountMinor() != m.AmountMinor {
			continue
		}
		d := t.Date.UTC()
		if !d.Before(start) && d.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SumExpensesByCategory(_ context.Context, userID uuid.UUID, from, to time.Time) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64)
	for _, t := range s.transactions {
		if t.UserID != userID || t.Type != finance.TxTypeExpense {
			continue
		}
		d := t.Date.UTC()
		if d.Before(from) || !d.Before(to) {
			continue
		}
		out[t.Category] += t.AmountMinor()
	}
	return out, nil
}

// applyAdjustmentsLocked validates every leg before mutating anything so a
// failed leg leaves all balances untouched. Caller must hold the write lock.
func (s *Store) applyAdjustmentsLocked(userID uuid.UUID, adjs []finance.BalanceAdjustment) error {
	next := make(map[uuid.UUID]finance.Account, len(adjs))
	for _, adj := range adjs {
		acc, err := s.getAccountLocked(userID, adj.AccountID)
		if err != nil {
			return err
		}
		if pending, ok := next[adj.AccountID]; ok {
			acc = pending
		}
		minor := acc.BalanceMinor() + adj.DeltaMinor
		if minor < 0 {
			return errs.ErrInsufficientFunds
		}
		bal, err := finance.MinorAmount(acc.Currency(), minor)
		if err != nil {
			return err
		}
		acc.Balance = bal
		next[adj.AccountID] = acc
	}
	for id, acc := range next {
		s.accounts[id] = acc
	}
	return nil
}

// --- Recurring rules ---

func (s *Store) GetRule(_ context.Context, userID, ruleID uuid.UUID) (finance.RecurringRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[ruleID]
	if !ok || r.UserID != userID {
		return finance.RecurringRule{}, errs.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListRules(_ context.Context, userID uuid.UUID) ([]finance.RecurringRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]finance.RecurringRule, 0)
	for _, r := range s.rules {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sortRules(out)
	return out, nil
}

func (s *Store) ListDueRules(_ context.Context, now time.Time) ([]finance.RecurringRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]finance.RecurringRule, 0)
	for _, r := range s.rules {
		if r.Active && !r.NextOccurrence.After(now) {
			out = append(out, r)
		}
	}
	sortRules(out)
	return out, nil
}

func (s *Store) ListDueRulesByUser(_ context.Context, userID uuid.UUID, now time.Time) ([]finance.RecurringRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]finance.RecurringRule, 0)
	for _, r := range s.rules {
		if r.UserID == userID && r.Active && !r.NextOccurrence.After(now) {
			out = append(out, r)
		}
	}
	sortRules(out)
	return out, nil
}

func sortRules(rules []finance.RecurringRule) {
	sort.Slice(rules, func(i, j int) bool {
		if !rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].CreatedAt.Before(rules[j].CreatedAt)
		}
		return rules[i].ID.String() < rules[j].ID.String()
	})
}

func (s *Store) CreateRule(_ context.Context, r finance.RecurringRule) (finance.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.ID] = r
	return r, nil
}

func (s *Store) UpdateRule(_ context.Context, r finance.RecurringRule) (finance.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rules[r.ID]
	if !ok || old.UserID != r.UserID {
		return finance.RecurringRule{}, errs.ErrNotFound
	}
	s.rules[r.ID] = r
	return r, nil
}

func (s *Store) DeleteRule(_ context.Context, userID, ruleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rules[ruleID]
	if !ok || old.UserID != userID {
		return errs.ErrNotFound
	}
	delete(s.rules, ruleID)
	delete(s.claims, ruleID)
	return nil
}

func (s *Store) SaveRuleCursor(_ context.Context, ruleID uuid.UUID, next time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[ruleID]
	if !ok {
		return errs.ErrNotFound
	}
	r.NextOccurrence = next
	s.rules[ruleID] = r
	return nil
}

func (s *Store) ClaimOccurrence(_ context.Context, ruleID uuid.UUID, occurrence time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := occurrence.UTC().Format("2006-01-02")
	m, ok := s.claims[ruleID]
	if !ok {
		m = make(map[string]struct{})
		s.claims[ruleID] = m
	}
	if _, taken := m[key]; taken {
		return false, nil
	}
	m[key] = struct{}{}
	return true, nil
}

func (s *Store) ReleaseOccurrence(_ context.Context, ruleID uuid.UUID, occurrence time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.claims[ruleID]; ok {
		delete(m, occurrence.UTC().Format("2006-01-02"))
	}
	return nil
}

// --- Budgets ---

func (s *Store) GetBudget(_ context.Context, userID, budgetID uuid.UUID) (finance.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[budgetID]
	if !ok || b.UserID != userID {
		return finance.Budget{}, errs.ErrNotFound
	}
	return b, nil
}

func (s *Store) FindBudget(_ context.Context, userID uuid.UUID, category string, month time.Month, year int) (finance.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.budgets {
		if b.UserID == userID && b.Category == category && b.Month == month && b.Year == year {
			return b, nil
		}
	}
	return finance.Budget{}, errs.ErrNotFound
}

func (s *Store) ListBudgets(_ context.Context, userID uuid.UUID) ([]finance.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]finance.Budget, 0)
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sortBudgets(out)
	return out, nil
}

func (s *Store) ListBudgetsForPeriod(_ context.Context, userID uuid.UUID, month time.Month, year int) ([]finance.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]finance.Budget, 0)
	for _, b := range s.budgets {
		if b.UserID == userID && b.Month == month && b.Year == year {
			out = append(out, b)
		}
	}
	sortBudgets(out)
	return out, nil
}

func sortBudgets(budgets []finance.Budget) {
	sort.Slice(budgets, func(i, j int) bool {
		if budgets[i].Year != budgets[j].Year {
			return budgets[i].Year < budgets[j].Year
		}
		if budgets[i].Month != budgets[j].Month {
			return budgets[i].Month < budgets[j].Month
		}
		return budgets[i].Category < budgets[j].Category
	})
}

func (s *Store) CreateBudget(_ context.Context, b finance.Budget) (finance.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.budgets {
		if other.UserID == b.UserID && other.Category == b.Category && other.Month == b.Month && other.Year == b.Year {
			return finance.Budget{}, errs.ErrConflict
		}
	}
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b finance.Budget) (finance.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.budgets[b.ID]
	if !ok || old.UserID != b.UserID {
		return finance.Budget{}, errs.ErrNotFound
	}
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, budgetID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.budgets[budgetID]
	if !ok || old.UserID != userID {
		return errs.ErrNotFound
	}
	delete(s.budgets, budgetID)
	return nil
}

// --- Goals ---

func (s *Store) GetGoal(_ context.Context, userID, goalID uuid.UUID) (finance.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[goalID]
	if !ok || g.UserID != userID {
		return finance.Goal{}, errs.ErrNotFound
	}
	return g, nil
}

func (s *Store) ListGoals(_ context.Context, userID uuid.UUID) ([]finance.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]finance.Goal, 0)
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) CreateGoal(_ context.Context, g finance.Goal) (finance.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, g finance.Goal) (finance.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.goals[g.ID]
	if !ok || old.UserID != g.UserID {
		return finance.Goal{}, errs.ErrNotFound
	}
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, goalID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.goals[goalID]
	if !ok || old.UserID != userID {
		return errs.ErrNotFound
	}
	delete(s.goals, goalID)
	return nil
}

// --- Debts ---

func (s *Store) GetDebt(_ context.Context, userID, debtID uuid.UUID) (finance.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.debts[debtID]
	if !ok || d.UserID != userID {
		return finance.Debt{}, errs.ErrNotFound
	}
	return d, nil
}

func (s *Store) ListDebts(_ context.Context, userID uuid.UUID) ([]finance.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]finance.Debt, 0)
	for _, d := range s.debts {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) CreateDebt(_ context.Context, d finance.Debt) (finance.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts[d.ID] = d
	return d, nil
}

func (s *Store) UpdateDebt(_ context.Context, d finance.Debt) (finance.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.debts[d.ID]
	if !ok || old.UserID != d.UserID {
		return finance.Debt{}, errs.ErrNotFound
	}
	s.debts[d.ID] = d
	return d, nil
}

func (s *Store) DeleteDebt(_ context.Context, userID, debtID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.debts[debtID]
	if !ok || old.UserID != userID {
		return errs.ErrNotFound
	}
	delete(s.debts, debtID)
	return nil
}
