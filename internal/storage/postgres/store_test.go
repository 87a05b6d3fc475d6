package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
)

func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	return dsn
}

func mustOpen(t *testing.T, dsn string) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func applyInitSQL(t *testing.T, dsn string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open for init: %v", err)
	}
	defer s.Close()
	// Resolve init SQL relative to this test file so CWD doesn't matter.
	_, thisFile, _, _ := runtime.Caller(0)
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "../../../"))
	path := filepath.Join(repoRoot, "db", "migrations", "0001_init.sql")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read init sql: %v", err)
	}
	if _, err := s.pool.Exec(ctx, string(b)); err != nil {
		t.Fatalf("apply init sql: %v", err)
	}
}

func truncateAll(t *testing.T, dsn string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open for truncate: %v", err)
	}
	defer s.Close()
	_, _ = s.pool.Exec(ctx, `truncate table rule_occurrences, recurring_rules, transactions, budgets, goals, debts, accounts, users cascade`)
}

func seedUser(t *testing.T, s *Store, ctx context.Context) (finance.User, finance.Account) {
	t.Helper()
	now := time.Now().UTC()
	u := finance.User{ID: uuid.New(), Name: "Ada", Email: uuid.NewString() + "@example.com", Currency: "USD", CreatedAt: now}
	bal, _ := finance.MinorAmount("USD", 100_00)
	cash := finance.Account{ID: uuid.New(), UserID: u.ID, Kind: finance.AccountKindCash, Name: "Cash", Balance: bal, CreatedAt: now}
	if _, err := s.CreateUser(ctx, u, cash); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u, cash
}

func TestStore_TransactionAdjustsBalance(t *testing.T) {
	dsn := getTestDSN(t)
	applyInitSQL(t, dsn)
	truncateAll(t, dsn)
	s := mustOpen(t, dsn)
	defer s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	u, cash := seedUser(t, s, ctx)
	amt, _ := finance.MinorAmount("USD", 30_00)
	tx := finance.Transaction{
		ID: uuid.New(), UserID: u.ID, AccountID: cash.ID,
		Type: finance.TxTypeExpense, Category: "groceries",
		Date: time.Now().UTC(), Amount: amt, CreatedAt: time.Now().UTC(),
	}
	adjs := []finance.BalanceAdjustment{{AccountID: cash.ID, DeltaMinor: -30_00}}
	if _, err := s.CreateTransaction(ctx, tx, adjs); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	got, err := s.GetAccount(ctx, u.ID, cash.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.BalanceMinor() != 70_00 {
		t.Fatalf("balance = %d, want 7000", got.BalanceMinor())
	}
}

func TestStore_OverdraftRollsBack(t *testing.T) {
	dsn := getTestDSN(t)
	applyInitSQL(t, dsn)
	truncateAll(t, dsn)
	s := mustOpen(t, dsn)
	defer s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	u, cash := seedUser(t, s, ctx)
	amt, _ := finance.MinorAmount("USD", 500_00)
	tx := finance.Transaction{
		ID: uuid.New(), UserID: u.ID, AccountID: cash.ID,
		Type: finance.TxTypeExpense, Category: "rent",
		Date: time.Now().UTC(), Amount: amt, CreatedAt: time.Now().UTC(),
	}
	adjs := []finance.BalanceAdjustment{{AccountID: cash.ID, DeltaMinor: -500_00}}
	if _, err := s.CreateTransaction(ctx, tx, adjs); err != errs.ErrInsufficientFunds {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	// Neither the row nor the balance change should have landed.
	if _, err := s.GetTransaction(ctx, u.ID, tx.ID); err != errs.ErrNotFound {
		t.Fatalf("transaction survived rollback: %v", err)
	}
	got, err := s.GetAccount(ctx, u.ID, cash.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.BalanceMinor() != 100_00 {
		t.Fatalf("balance = %d, want 10000", got.BalanceMinor())
	}
}

func TestStore_ClaimOccurrenceOnce(t *testing.T) {
	dsn := getTestDSN(t)
	applyInitSQL(t, dsn)
	truncateAll(t, dsn)
	s := mustOpen(t, dsn)
	defer s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	u, cash := seedUser(t, s, ctx)
	amt, _ := finance.MinorAmount("USD", 10_00)
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	r := finance.RecurringRule{
		ID: uuid.New(), UserID: u.ID, AccountID: cash.ID, Amount: amt,
		Type: finance.TxTypeExpense, Category: "utilities",
		Frequency: finance.FrequencyMonthly, StartDate: start,
		NextOccurrence: start, Active: true, CreatedAt: time.Now().UTC(),
	}
	if _, err := s.CreateRule(ctx, r); err != nil {
		t.Fatalf("create rule: %v", err)
	}
	ok, err := s.ClaimOccurrence(ctx, r.ID, start)
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = s.ClaimOccurrence(ctx, r.ID, start)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if ok {
		t.Fatal("second claim succeeded, want refusal")
	}
	if err := s.ReleaseOccurrence(ctx, r.ID, start); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = s.ClaimOccurrence(ctx, r.ID, start)
	if err != nil || !ok {
		t.Fatalf("reclaim after release: ok=%v err=%v", ok, err)
	}
}

func TestStore_DuplicateEmailConflicts(t *testing.T) {
	dsn := getTestDSN(t)
	applyInitSQL(t, dsn)
	truncateAll(t, dsn)
	s := mustOpen(t, dsn)
	defer s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	u, _ := seedUser(t, s, ctx)
	dup := finance.User{ID: uuid.New(), Name: "Copy", Email: u.Email, Currency: "USD", CreatedAt: time.Now().UTC()}
	bal, _ := finance.MinorAmount("USD", 0)
	cash := finance.Account{ID: uuid.New(), UserID: dup.ID, Kind: finance.AccountKindCash, Name: "Cash", Balance: bal, CreatedAt: time.Now().UTC()}
	if _, err := s.CreateUser(ctx, dup, cash); err != errs.ErrConflict {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}
