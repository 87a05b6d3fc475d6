package recurring_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/service/ledger"
	"github.com/aminus007/fintrack/internal/service/recurring"
	"github.com/aminus007/fintrack/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newServices(store *memory.Store) (recurring.Service, ledger.Service) {
	ledgerSvc := ledger.New(store, store)
	return recurring.New(store, store, ledgerSvc, testLogger()), ledgerSvc
}

func seedUser(t *testing.T, store *memory.Store, balanceMinor int64) (uuid.UUID, finance.Account) {
	t.Helper()
	now := time.Now().UTC()
	user := finance.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Currency: "USD", CreatedAt: now}
	store.SeedUser(user)
	bal, err := finance.MinorAmount("USD", balanceMinor)
	if err != nil {
		t.Fatalf("minor amount: %v", err)
	}
	acc := finance.Account{ID: uuid.New(), UserID: user.ID, Kind: finance.AccountKindChecking, Name: "Main", Balance: bal, CreatedAt: now}
	store.SeedAccount(acc)
	return user.ID, acc
}

func utc(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRule(t *testing.T, svc recurring.Service, userID uuid.UUID, acc finance.Account, typ finance.TxType, category string, minor int64, freq finance.Frequency, start time.Time) finance.RecurringRule {
	t.Helper()
	amt, err := finance.MinorAmount("USD", minor)
	if err != nil {
		t.Fatalf("minor amount: %v", err)
	}
	r, err := svc.CreateRule(context.Background(), finance.RecurringRule{
		UserID:    userID,
		AccountID: acc.ID,
		Amount:    amt,
		Type:      typ,
		Category:  category,
		Frequency: freq,
		StartDate: start,
	})
	if err != nil {
		t.Fatalf("create rule: %v", err)
	}
	return r
}

func TestProcess_MonthlySalaryCatchUp(t *testing.T) {
	store := memory.New()
	svc, ledgerSvc := newServices(store)
	ctx := context.Background()
	userID, acc := seedUser(t, store, 0)

	mustRule(t, svc, userID, acc, finance.TxTypeIncome, "salary", 2500_00, finance.FrequencyMonthly, utc(2024, time.January, 31))

	now := utc(2024, time.February, 15)
	res, err := svc.ProcessAllDue(ctx, now)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Processed != 1 || res.Errors != 0 {
		t.Fatalf("result = %+v, want 1 processed", res)
	}
	txs, err := ledgerSvc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if !txs[0].Date.Equal(utc(2024, time.January, 31)) {
		t.Fatalf("occurrence date = %v, want Jan 31", txs[0].Date)
	}
	// Cursor parked on the leap-day occurrence, still in the future.
	rules, _ := svc.ListRules(ctx, userID)
	if !rules[0].NextOccurrence.Equal(utc(2024, time.February, 29)) {
		t.Fatalf("cursor = %v, want Feb 29", rules[0].NextOccurrence)
	}
}

func TestProcess_Idempotent(t *testing.T) {
	store := memory.New()
	svc, ledgerSvc := newServices(store)
	ctx := context.Background()
	userID, acc := seedUser(t, store, 500_00)

	mustRule(t, svc, userID, acc, finance.TxTypeExpense, "rent", 100_00, finance.FrequencyMonthly, utc(2024, time.March, 1))

	now := utc(2024, time.March, 2)
	if res, _ := svc.ProcessAllDue(ctx, now); res.Processed != 1 {
		t.Fatalf("first pass processed %d, want 1", res.Processed)
	}
	if res, _ := svc.ProcessAllDue(ctx, now); res.Processed != 0 {
		t.Fatalf("second pass processed %d, want 0", res.Processed)
	}
	txs, _ := ledgerSvc.List(ctx, userID)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions after two passes, want 1", len(txs))
	}
}

func TestProcess_FastForwardMissedOccurrences(t *testing.T) {
	store := memory.New()
	svc, ledgerSvc := newServices(store)
	ctx := context.Background()
	userID, acc := seedUser(t, store, 100_00)

	mustRule(t, svc, userID, acc, finance.TxTypeExpense, "transport", 5_00, finance.FrequencyDaily, utc(2024, time.April, 1))

	res, err := svc.ProcessAllDue(ctx, utc(2024, time.April, 5))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Processed != 5 {
		t.Fatalf("processed = %d, want 5 (Apr 1-5 inclusive)", res.Processed)
	}
	txs, _ := ledgerSvc.List(ctx, userID)
	if len(txs) != 5 {
		t.Fatalf("got %d transactions, want 5", len(txs))
	}
	for i, tx := range txs {
		if !tx.Date.Equal(utc(2024, time.April, 1+i)) {
			t.Fatalf("tx[%d] dated %v", i, tx.Date)
		}
	}
}

func TestProcess_SkipsManualDuplicate(t *testing.T) {
	store := memory.New()
	svc, ledgerSvc := newServices(store)
	ctx := context.Background()
	userID, acc := seedUser(t, store, 500_00)

	// The user already entered rent by hand on the due day.
	amt, _ := finance.MinorAmount("USD", 100_00)
	if _, err := ledgerSvc.Create(ctx, finance.Transaction{
		UserID:    userID,
		AccountID: acc.ID,
		Type:      finance.TxTypeExpense,
		Category:  "rent",
		Date:      utc(2024, time.March, 1).Add(9 * time.Hour),
		Amount:    amt,
	}); err != nil {
		t.Fatalf("manual transaction: %v", err)
	}

	mustRule(t, svc, userID, acc, finance.TxTypeExpense, "rent", 100_00, finance.FrequencyMonthly, utc(2024, time.March, 1))

	res, err := svc.ProcessAllDue(ctx, utc(2024, time.March, 1))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Processed != 0 || res.Errors != 0 {
		t.Fatalf("result = %+v, want no postings", res)
	}
	// Cursor still advanced past the satisfied occurrence.
	rules, _ := svc.ListRules(ctx, userID)
	if !rules[0].NextOccurrence.Equal(utc(2024, time.April, 1)) {
		t.Fatalf("cursor = %v, want Apr 1", rules[0].NextOccurrence)
	}
	txs, _ := ledgerSvc.List(ctx, userID)
	if len(txs) != 1 {
		t.Fatalf("duplicate was posted: %d transactions", len(txs))
	}
}

func TestProcess_FailedRuleDoesNotBlockOthers(t *testing.T) {
	store := memory.New()
	svc, ledgerSvc := newServices(store)
	ctx := context.Background()
	userID, acc := seedUser(t, store, 50_00)

	// First rule overdraws the account, second is payable.
	mustRule(t, svc, userID, acc, finance.TxTypeExpense, "rent", 500_00, finance.FrequencyMonthly, utc(2024, time.March, 1))
	mustRule(t, svc, userID, acc, finance.TxTypeExpense, "transport", 10_00, finance.FrequencyMonthly, utc(2024, time.March, 1))

	res, err := svc.ProcessAllDue(ctx, utc(2024, time.March, 1))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Processed != 1 || res.Errors != 1 {
		t.Fatalf("result = %+v, want 1 processed and 1 error", res)
	}
	txs, _ := ledgerSvc.List(ctx, userID)
	if len(txs) != 1 || txs[0].Category != "transport" {
		t.Fatalf("unexpected transactions: %+v", txs)
	}

	// Funding arrives; the failed occurrence is retried, not lost.
	amt, _ := finance.MinorAmount("USD", 1000_00)
	if _, err := ledgerSvc.Create(ctx, finance.Transaction{
		UserID:    userID,
		AccountID: acc.ID,
		Type:      finance.TxTypeIncome,
		Category:  "salary",
		Date:      utc(2024, time.March, 1),
		Amount:    amt,
	}); err != nil {
		t.Fatalf("fund account: %v", err)
	}
	res, err = svc.ProcessAllDue(ctx, utc(2024, time.March, 1))
	if err != nil {
		t.Fatalf("retry pass: %v", err)
	}
	if res.Processed != 1 || res.Errors != 0 {
		t.Fatalf("retry result = %+v, want the rent posting", res)
	}
}

func TestProcess_UserScopedTrigger(t *testing.T) {
	store := memory.New()
	svc, _ := newServices(store)
	ctx := context.Background()
	userA, accA := seedUser(t, store, 100_00)

	userB := finance.User{ID: uuid.New(), Name: "Brook", Email: "brook@example.com", Currency: "USD", CreatedAt: time.Now().UTC()}
	store.SeedUser(userB)
	balB, _ := finance.MinorAmount("USD", 100_00)
	accB := finance.Account{ID: uuid.New(), UserID: userB.ID, Kind: finance.AccountKindChecking, Name: "Main", Balance: balB, CreatedAt: time.Now().UTC()}
	store.SeedAccount(accB)

	mustRule(t, svc, userA, accA, finance.TxTypeExpense, "transport", 5_00, finance.FrequencyDaily, utc(2024, time.May, 1))
	mustRule(t, svc, userB.ID, accB, finance.TxTypeExpense, "transport", 5_00, finance.FrequencyDaily, utc(2024, time.May, 1))

	res, err := svc.ProcessUserDue(ctx, userA, utc(2024, time.May, 1))
	if err != nil {
		t.Fatalf("process user: %v", err)
	}
	if res.Processed != 1 {
		t.Fatalf("processed = %d, want only user A's rule", res.Processed)
	}
	// User B's rule is untouched until the global sweep.
	rules, _ := svc.ListRules(ctx, userB.ID)
	if !rules[0].NextOccurrence.Equal(utc(2024, time.May, 1)) {
		t.Fatalf("user B cursor moved: %v", rules[0].NextOccurrence)
	}
}

func TestUpdateRule_ResetsCursorOnScheduleChange(t *testing.T) {
	store := memory.New()
	svc, _ := newServices(store)
	ctx := context.Background()
	userID, acc := seedUser(t, store, 1000_00)

	r := mustRule(t, svc, userID, acc, finance.TxTypeExpense, "rent", 100_00, finance.FrequencyMonthly, utc(2024, time.January, 1))
	if _, err := svc.ProcessAllDue(ctx, utc(2024, time.January, 1)); err != nil {
		t.Fatalf("process: %v", err)
	}

	// Amount-only edits keep the cursor where the processor left it.
	amt, _ := finance.MinorAmount("USD", 120_00)
	edited := r
	edited.Amount = amt
	saved, err := svc.UpdateRule(ctx, edited)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !saved.NextOccurrence.Equal(utc(2024, time.February, 1)) {
		t.Fatalf("cursor = %v, want Feb 1 preserved", saved.NextOccurrence)
	}

	// A start-date change recomputes the cursor from the new schedule.
	edited = saved
	edited.StartDate = utc(2024, time.June, 15)
	saved, err = svc.UpdateRule(ctx, edited)
	if err != nil {
		t.Fatalf("update start date: %v", err)
	}
	if !saved.NextOccurrence.Equal(utc(2024, time.June, 15)) {
		t.Fatalf("cursor = %v, want Jun 15", saved.NextOccurrence)
	}
}
