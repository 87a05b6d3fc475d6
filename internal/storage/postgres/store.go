package postgres

// Package postgres provides a pgx-backed storage implementation that satisfies
// the repository and writer interfaces used by the HTTP API and services.
//
// It is intentionally small and explicit. Migrations that create the expected
// schema live under db/migrations. This package focuses on mapping between the
// domain entities and SQL rows and running the necessary statements and
// transactions. Balance adjustments ride in the same database transaction as
// the ledger write they belong to, and a check constraint on
// accounts.balance_minor backstops the service-level sufficiency check.

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// mapErr translates low-level pg errors into the sentinel errors the services
// and handlers branch on.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return errs.ErrConflict
		case "23514": // check_violation
			return errs.ErrInsufficientFunds
		}
	}
	return err
}

// SeedDev inserts a user with a cash and a checking account plus a few sample
// transactions for quick local testing. Names come from faker so repeated runs
// stay distinguishable.
func (s *Store) SeedDev(ctx context.Context) (finance.User, []finance.Account, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return finance.User{}, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	u := finance.User{ID: uuid.New(), Name: faker.Name(), Email: faker.Email(), Currency: "USD", CreatedAt: now}
	if _, err := tx.Exec(ctx, `insert into users (id, name, email, currency, created_at) values ($1,$2,$3,$4,$5)`,
		u.ID, u.Name, u.Email, u.Currency, u.CreatedAt); err != nil {
		return finance.User{}, nil, mapErr(err)
	}
	cashBal, _ := finance.MinorAmount(u.Currency, 50_00)
	checkBal, _ := finance.MinorAmount(u.Currency, 1200_00)
	cash := finance.Account{ID: uuid.New(), UserID: u.ID, Kind: finance.AccountKindCash, Name: "Cash", Balance: cashBal, CreatedAt: now}
	checking := finance.Account{ID: uuid.New(), UserID: u.ID, Kind: finance.AccountKindChecking, Name: "Main Checking", Balance: checkBal, CreatedAt: now}
	accs := []finance.Account{cash, checking}
	for _, a := range accs {
		if _, err := tx.Exec(ctx, `
			insert into accounts (id, user_id, kind, name, currency, balance_minor, created_at)
			values ($1,$2,$3,$4,$5,$6,$7)
		`, a.ID, a.UserID, a.Kind, a.Name, strings.ToUpper(a.Currency()), a.BalanceMinor(), a.CreatedAt); err != nil {
			return finance.User{}, nil, mapErr(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return finance.User{}, nil, err
	}
	return u, accs, nil
}

// --- Users ---

func (s *Store) GetUser(ctx context.Context, userID uuid.UUID) (finance.User, error) {
	row := s.pool.QueryRow(ctx, `
		select id, name, email, currency, created_at from users where id = $1
	`, userID)
	var u finance.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Currency, &u.CreatedAt); err != nil {
		return finance.User{}, mapErr(err)
	}
	return u, nil
}

// CreateUser inserts the user row and the seeded cash account in one
// transaction. A duplicate email surfaces as ErrConflict via the unique index.
func (s *Store) CreateUser(ctx context.Context, u finance.User, cash finance.Account) (finance.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return finance.User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `
		insert into users (id, name, email, currency, created_at) values ($1,$2,$3,$4,$5)
	`, u.ID, u.Name, u.Email, u.Currency, u.CreatedAt); err != nil {
		return finance.User{}, mapErr(err)
	}
	if _, err := tx.Exec(ctx, `
		insert into accounts (id, user_id, kind, name, currency, balance_minor, created_at)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, cash.ID, cash.UserID, cash.Kind, cash.Name, strings.ToUpper(cash.Currency()), cash.BalanceMinor(), cash.CreatedAt); err != nil {
		return finance.User{}, mapErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return finance.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u finance.User) (finance.User, error) {
	tag, err := s.pool.Exec(ctx, `
		update users set name = $2, email = $3, currency = $4 where id = $1
	`, u.ID, u.Name, u.Email, u.Currency)
	if err != nil {
		return finance.User{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return finance.User{}, errs.ErrNotFound
	}
	return u, nil
}

// --- Accounts ---

func scanAccount(row pgx.Row) (finance.Account, error) {
	var a finance.Account
	var curr string
	var minor int64
	if err := row.Scan(&a.ID, &a.UserID, &a.Kind, &a.Name, &curr, &minor, &a.CreatedAt); err != nil {
		return finance.Account{}, mapErr(err)
	}
	bal, err := finance.MinorAmount(curr, minor)
	if err != nil {
		return finance.Account{}, err
	}
	a.Balance = bal
	return a, nil
}

func (s *Store) GetAccount(ctx context.Context, userID, accountID uuid.UUID) (finance.Account, error) {
	row := s.pool.QueryRow(ctx, `
		select id, user_id, kind, name, currency, balance_minor, created_at
		from accounts where user_id = $1 and id = $2
	`, userID, accountID)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context, userID uuid.UUID) ([]finance.Account, error) {
	rows, err := s.pool.Query(ctx, `
		select id, user_id, kind, name, currency, balance_minor, created_at
		from accounts where user_id = $1
		order by created_at, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]finance.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) CreateAccount(ctx context.Context, a finance.Account) (finance.Account, error) {
	_, err := s.pool.Exec(ctx, `
		insert into accounts (id, user_id, kind, name, currency, balance_minor, created_at)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, a.ID, a.UserID, a.Kind, a.Name, strings.ToUpper(a.Currency()), a.BalanceMinor(), a.CreatedAt)
	if err != nil {
		return finance.Account{}, mapErr(err)
	}
	return a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a finance.Account) (finance.Account, error) {
	tag, err := s.pool.Exec(ctx, `
		update accounts set name = $3 where user_id = $1 and id = $2
	`, a.UserID, a.ID, a.Name)
	if err != nil {
		return finance.Account{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return finance.Account{}, errs.ErrNotFound
	}
	return a, nil
}

func (s *Store) DeleteAccount(ctx context.Context, userID, accountID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		delete from accounts where user_id = $1 and id = $2
	`, userID, accountID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) CountTransactionsByAccount(ctx context.Context, userID, accountID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		select count(*) from transactions where user_id = $1 and account_id = $2
	`, userID, accountID).Scan(&n)
	return n, mapErr(err)
}

func (s *Store) SavingsBalanceMinor(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx, `
		select coalesce(sum(balance_minor), 0) from accounts
		where user_id = $1 and kind = 'savings'
	`, userID).Scan(&total)
	return total, mapErr(err)
}

// --- Transactions ---

func scanTransaction(row pgx.Row) (finance.Transaction, error) {
	var t finance.Transaction
	var curr string
	var minor int64
	var ruleID *uuid.UUID
	if err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Type, &t.Category, &t.Note, &t.Date, &curr, &minor, &ruleID, &t.CreatedAt); err != nil {
		return finance.Transaction{}, mapErr(err)
	}
	amt, err := finance.MinorAmount(curr, minor)
	if err != nil {
		return finance.Transaction{}, err
	}
	t.Amount = amt
	t.RuleID = ruleID
	return t, nil
}

const txColumns = `id, user_id, account_id, type, category, note, date, currency, amount_minor, rule_id, created_at`

func (s *Store) GetTransaction(ctx context.Context, userID, txID uuid.UUID) (finance.Transaction, error) {
	row := s.pool.QueryRow(ctx, `
		select `+txColumns+` from transactions where user_id = $1 and id = $2
	`, userID, txID)
	return scanTransaction(row)
}

func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID) ([]finance.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		select `+txColumns+` from transactions where user_id = $1
		order by date, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]finance.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func insertTransaction(ctx context.Context, tx pgx.Tx, t finance.Transaction) error {
	_, err := tx.Exec(ctx, `
		insert into transactions (`+txColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, t.ID, t.UserID, t.AccountID, t.Type, t.Category, t.Note, t.Date,
		strings.ToUpper(t.Amount.Curr().Code()), t.AmountMinor(), t.RuleID, t.CreatedAt)
	return mapErr(err)
}

// applyAdjustments increments balances inside the caller's transaction. The
// accounts check constraint rejects any leg that would go negative, rolling
// back the whole write.
func applyAdjustments(ctx context.Context, tx pgx.Tx, userID uuid.UUID, adjs []finance.BalanceAdjustment) error {
	for _, adj := range adjs {
		tag, err := tx.Exec(ctx, `
			update accounts set balance_minor = balance_minor + $3
			where user_id = $1 and id = $2
		`, userID, adj.AccountID, adj.DeltaMinor)
		if err != nil {
			return mapErr(err)
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
	}
	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, t finance.Transaction, adjs []finance.BalanceAdjustment) (finance.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return finance.Transaction{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := insertTransaction(ctx, tx, t); err != nil {
		return finance.Transaction{}, err
	}
	if err := applyAdjustments(ctx, tx, t.UserID, adjs); err != nil {
		return finance.Transaction{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return finance.Transaction{}, err
	}
	return t, nil
}

func (s *Store) CreateTransactionsBatch(ctx context.Context, ts []finance.Transaction, adjs []finance.BalanceAdjustment) ([]finance.Transaction, error) {
	if len(ts) == 0 {
		return nil, errs.ErrInvalid
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for _, t := range ts {
		if err := insertTransaction(ctx, tx, t); err != nil {
			return nil, err
		}
	}
	if err := applyAdjustments(ctx, tx, ts[0].UserID, adjs); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ts, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t finance.Transaction, adjs []finance.BalanceAdjustment) (finance.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return finance.Transaction{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	tag, err := tx.Exec(ctx, `
		update transactions
		set account_id = $3, type = $4, category = $5, note = $6, date = $7,
		    currency = $8, amount_minor = $9
		where user_id = $1 and id = $2
	`, t.UserID, t.ID, t.AccountID, t.Type, t.Category, t.Note, t.Date,
		strings.ToUpper(t.Amount.Curr().Code()), t.AmountMinor())
	if err != nil {
		return finance.Transaction{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return finance.Transaction{}, errs.ErrNotFound
	}
	if err := applyAdjustments(ctx, tx, t.UserID, adjs); err != nil {
		return finance.Transaction{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return finance.Transaction{}, err
	}
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, txID uuid.UUID, adjs []finance.BalanceAdjustment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	tag, err := tx.Exec(ctx, `
		delete from transactions where user_id = $1 and id = $2
	`, userID, txID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	if err := applyAdjustments(ctx, tx, userID, adjs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) HasMatchingTransaction(ctx context.Context, userID uuid.UUID, m finance.TransactionMatch) (bool, error) {
	start, end := m.Window()
	var exists bool
	err := s.pool.QueryRow(ctx, `
		select exists(
			select 1 from transactions
			where user_id = $1 and type = $2 and category = $3 and amount_minor = $4
			  and date >= $5 and date < $6
		)
	`, userID, m.Type, m.Category, m.AmountMinor, start, end).Scan(&exists)
	return exists, mapErr(err)
}

func (s *Store) SumExpensesByCategory(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, `
		select category, coalesce(sum(amount_minor), 0)
		from transactions
		where user_id = $1 and type = 'expense' and date >= $2 and date < $3
		group by category
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var cat string
		var sum int64
		if err := rows.Scan(&cat, &sum); err != nil {
			return nil, err
		}
		out[cat] = sum
	}
	return out, rows.Err()
}

// --- Recurring rules ---

const ruleColumns = `id, user_id, account_id, currency, amount_minor, type, category, note, frequency, start_date, next_occurrence, active, created_at`

func scanRule(row pgx.Row) (finance.RecurringRule, error) {
	var r finance.RecurringRule
	var curr string
	var minor int64
	if err := row.Scan(&r.ID, &r.UserID, &r.AccountID, &curr, &minor, &r.Type, &r.Category, &r.Note,
		&r.Frequency, &r.StartDate, &r.NextOccurrence, &r.Active, &r.CreatedAt); err != nil {
		return finance.RecurringRule{}, mapErr(err)
	}
	amt, err := finance.MinorAmount(curr, minor)
	if err != nil {
		return finance.RecurringRule{}, err
	}
	r.Amount = amt
	return r, nil
}

func (s *Store) GetRule(ctx context.Context, userID, ruleID uuid.UUID) (finance.RecurringRule, error) {
	row := s.pool.QueryRow(ctx, `
		select `+ruleColumns+` from recurring_rules where user_id = $1 and id = $2
	`, userID, ruleID)
	return scanRule(row)
}

func (s *Store) listRules(ctx context.Context, query string, args ...any) ([]finance.RecurringRule, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]finance.RecurringRule, 0)
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListRules(ctx context.Context, userID uuid.UUID) ([]finance.RecurringRule, error) {
	return s.listRules(ctx, `
		select `+ruleColumns+` from recurring_rules where user_id = $1
		order by created_at, id
	`, userID)
}

func (s *Store) ListDueRules(ctx context.Context, now time.Time) ([]finance.RecurringRule, error) {
	return s.listRules(ctx, `
		select `+ruleColumns+` from recurring_rules
		where active and next_occurrence <= $1
		order by created_at, id
	`, now)
}

func (s *Store) ListDueRulesByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]finance.RecurringRule, error) {
	return s.listRules(ctx, `
		select `+ruleColumns+` from recurring_rules
		where user_id = $1 and active and next_occurrence <= $2
		order by created_at, id
	`, userID, now)
}

func (s *Store) CreateRule(ctx context.Context, r finance.RecurringRule) (finance.RecurringRule, error) {
	_, err := s.pool.Exec(ctx, `
		insert into recurring_rules (`+ruleColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, r.ID, r.UserID, r.AccountID, strings.ToUpper(r.Amount.Curr().Code()), r.AmountMinor(),
		r.Type, r.Category, r.Note, r.Frequency, r.StartDate, r.NextOccurrence, r.Active, r.CreatedAt)
	if err != nil {
		return finance.RecurringRule{}, mapErr(err)
	}
	return r, nil
}

func (s *Store) UpdateRule(ctx context.Context, r finance.RecurringRule) (finance.RecurringRule, error) {
	tag, err := s.pool.Exec(ctx, `
		update recurring_rules
		set account_id = $3, currency = $4, amount_minor = $5, type = $6, category = $7,
		    note = $8, frequency = $9, start_date = $10, next_occurrence = $11, active = $12
		where user_id = $1 and id = $2
	`, r.UserID, r.ID, r.AccountID, strings.ToUpper(r.Amount.Curr().Code()), r.AmountMinor(),
		r.Type, r.Category, r.Note, r.Frequency, r.StartDate, r.NextOccurrence, r.Active)
	if err != nil {
		return finance.RecurringRule{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return finance.RecurringRule{}, errs.ErrNotFound
	}
	return r, nil
}

func (s *Store) DeleteRule(ctx context.Context, userID, ruleID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		delete from recurring_rules where user_id = $1 and id = $2
	`, userID, ruleID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) SaveRuleCursor(ctx context.Context, ruleID uuid.UUID, next time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		update recurring_rules set next_occurrence = $2 where id = $1
	`, ruleID, next)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ClaimOccurrence takes the (rule, day) slot via the unique index on
// rule_occurrences. A second caller gets ok=false instead of an error, so
// concurrent sweeps cannot double-post.
func (s *Store) ClaimOccurrence(ctx context.Context, ruleID uuid.UUID, occurrence time.Time) (bool, error) {
	day := occurrence.UTC().Truncate(24 * time.Hour)
	tag, err := s.pool.Exec(ctx, `
		insert into rule_occurrences (rule_id, occurs_on) values ($1, $2)
		on conflict (rule_id, occurs_on) do nothing
	`, ruleID, day)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) ReleaseOccurrence(ctx context.Context, ruleID uuid.UUID, occurrence time.Time) error {
	day := occurrence.UTC().Truncate(24 * time.Hour)
	_, err := s.pool.Exec(ctx, `
		delete from rule_occurrences where rule_id = $1 and occurs_on = $2
	`, ruleID, day)
	return mapErr(err)
}

// --- Budgets ---

const budgetColumns = `id, user_id, category, limit_minor, month, year`

func scanBudget(row pgx.Row) (finance.Budget, error) {
	var b finance.Budget
	var month int
	if err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.LimitMinor, &month, &b.Year); err != nil {
		return finance.Budget{}, mapErr(err)
	}
	b.Month = time.Month(month)
	return b, nil
}

func (s *Store) GetBudget(ctx context.Context, userID, budgetID uuid.UUID) (finance.Budget, error) {
	row := s.pool.QueryRow(ctx, `
		select `+budgetColumns+` from budgets where user_id = $1 and id = $2
	`, userID, budgetID)
	return scanBudget(row)
}

func (s *Store) FindBudget(ctx context.Context, userID uuid.UUID, category string, month time.Month, year int) (finance.Budget, error) {
	row := s.pool.QueryRow(ctx, `
		select `+budgetColumns+` from budgets
		where user_id = $1 and category = $2 and month = $3 and year = $4
	`, userID, category, int(month), year)
	return scanBudget(row)
}

func (s *Store) listBudgets(ctx context.Context, query string, args ...any) ([]finance.Budget, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]finance.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) ListBudgets(ctx context.Context, userID uuid.UUID) ([]finance.Budget, error) {
	return s.listBudgets(ctx, `
		select `+budgetColumns+` from budgets where user_id = $1
		order by year, month, category
	`, userID)
}

func (s *Store) ListBudgetsForPeriod(ctx context.Context, userID uuid.UUID, month time.Month, year int) ([]finance.Budget, error) {
	return s.listBudgets(ctx, `
		select `+budgetColumns+` from budgets
		where user_id = $1 and month = $2 and year = $3
		order by category
	`, userID, int(month), year)
}

func (s *Store) CreateBudget(ctx context.Context, b finance.Budget) (finance.Budget, error) {
	_, err := s.pool.Exec(ctx, `
		insert into budgets (`+budgetColumns+`) values ($1,$2,$3,$4,$5,$6)
	`, b.ID, b.UserID, b.Category, b.LimitMinor, int(b.Month), b.Year)
	if err != nil {
		return finance.Budget{}, mapErr(err)
	}
	return b, nil
}

func (s *Store) UpdateBudget(ctx context.Context, b finance.Budget) (finance.Budget, error) {
	tag, err := s.pool.Exec(ctx, `
		update budgets set category = $3, limit_minor = $4, month = $5, year = $6
		where user_id = $1 and id = $2
	`, b.UserID, b.ID, b.Category, b.LimitMinor, int(b.Month), b.Year)
	if err != nil {
		return finance.Budget{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return finance.Budget{}, errs.ErrNotFound
	}
	return b, nil
}

func (s *Store) DeleteBudget(ctx context.Context, userID, budgetID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		delete from budgets where user_id = $1 and id = $2
	`, userID, budgetID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// --- Goals ---

const goalColumns = `id, user_id, name, target_minor, current_minor, deadline, created_at`

func scanGoal(row pgx.Row) (finance.Goal, error) {
	var g finance.Goal
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetMinor, &g.CurrentMinor, &g.Deadline, &g.CreatedAt); err != nil {
		return finance.Goal{}, mapErr(err)
	}
	return g, nil
}

func (s *Store) GetGoal(ctx context.Context, userID, goalID uuid.UUID) (finance.Goal, error) {
	row := s.pool.QueryRow(ctx, `
		select `+goalColumns+` from goals where user_id = $1 and id = $2
	`, userID, goalID)
	return scanGoal(row)
}

func (s *Store) ListGoals(ctx context.Context, userID uuid.UUID) ([]finance.Goal, error) {
	rows, err := s.pool.Query(ctx, `
		select `+goalColumns+` from goals where user_id = $1
		order by created_at, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]finance.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) CreateGoal(ctx context.Context, g finance.Goal) (finance.Goal, error) {
	_, err := s.pool.Exec(ctx, `
		insert into goals (`+goalColumns+`) values ($1,$2,$3,$4,$5,$6,$7)
	`, g.ID, g.UserID, g.Name, g.TargetMinor, g.CurrentMinor, g.Deadline, g.CreatedAt)
	if err != nil {
		return finance.Goal{}, mapErr(err)
	}
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g finance.Goal) (finance.Goal, error) {
	tag, err := s.pool.Exec(ctx, `
		update goals set name = $3, target_minor = $4, current_minor = $5, deadline = $6
		where user_id = $1 and id = $2
	`, g.UserID, g.ID, g.Name, g.TargetMinor, g.CurrentMinor, g.Deadline)
	if err != nil {
		return finance.Goal{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return finance.Goal{}, errs.ErrNotFound
	}
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		delete from goals where user_id = $1 and id = $2
	`, userID, goalID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// --- Debts ---

const debtColumns = `id, user_id, name, amount_minor, interest_rate, due_date, paid_minor, notes, status, created_at`

func scanDebt(row pgx.Row) (finance.Debt, error) {
	var d finance.Debt
	if err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.AmountMinor, &d.InterestRate, &d.DueDate,
		&d.PaidMinor, &d.Notes, &d.Status, &d.CreatedAt); err != nil {
		return finance.Debt{}, mapErr(err)
	}
	return d, nil
}

func (s *Store) GetDebt(ctx context.Context, userID, debtID uuid.UUID) (finance.Debt, error) {
	row := s.pool.QueryRow(ctx, `
		select `+debtColumns+` from debts where user_id = $1 and id = $2
	`, userID, debtID)
	return scanDebt(row)
}

func (s *Store) ListDebts(ctx context.Context, userID uuid.UUID) ([]finance.Debt, error) {
	rows, err := s.pool.Query(ctx, `
		select `+debtColumns+` from debts where user_id = $1
		order by created_at, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]finance.Debt, 0)
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) CreateDebt(ctx context.Context, d finance.Debt) (finance.Debt, error) {
	_, err := s.pool.Exec(ctx, `
		insert into debts (`+debtColumns+`) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, d.ID, d.UserID, d.Name, d.AmountMinor, d.InterestRate, d.DueDate, d.PaidMinor, d.Notes, d.Status, d.CreatedAt)
	if err != nil {
		return finance.Debt{}, mapErr(err)
	}
	return d, nil
}

func (s *Store) UpdateDebt(ctx context.Context, d finance.Debt) (finance.Debt, error) {
	tag, err := s.pool.Exec(ctx, `
		update debts set name = $3, amount_minor = $4, interest_rate = $5, due_date = $6,
		    paid_minor = $7, notes = $8, status = $9
		where user_id = $1 and id = $2
	`, d.UserID, d.ID, d.Name, d.AmountMinor, d.InterestRate, d.DueDate, d.PaidMinor, d.Notes, d.Status)
	if err != nil {
		return finance.Debt{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return finance.Debt{}, errs.ErrNotFound
	}
	return d, nil
}

func (s *Store) DeleteDebt(ctx context.Context, userID, debtID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		delete from debts where user_id = $1 and id = $2
	`, userID, debtID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
