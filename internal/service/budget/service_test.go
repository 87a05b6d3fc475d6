package budget_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/service/budget"
	"github.com/aminus007/fintrack/internal/service/ledger"
	"github.com/aminus007/fintrack/internal/storage/memory"
)

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

func spend(t *testing.T, svc ledger.Service, userID uuid.UUID, accID uuid.UUID, category string, minor int64, date time.Time) {
	t.Helper()
	amt, err := finance.MinorAmount("USD", minor)
	if err != nil {
		t.Fatalf("minor amount: %v", err)
	}
	if _, err := svc.Create(context.Background(), finance.Transaction{
		UserID:    userID,
		AccountID: accID,
		Type:      finance.TxTypeExpense,
		Category:  category,
		Date:      date,
		Amount:    amt,
	}); err != nil {
		t.Fatalf("spend: %v", err)
	}
}

func TestCreateRejectsDuplicatePeriod(t *testing.T) {
	store := memory.New()
	svc := budget.New(store, store)
	ctx := context.Background()
	userID, _ := seedUser(t, store, 0)

	b := finance.Budget{UserID: userID, Category: "groceries", LimitMinor: 400_00, Month: time.March, Year: 2024}
	if _, err := svc.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, b); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("duplicate err = %v, want ErrConflict", err)
	}
	// Same category, different month is fine.
	b.Month = time.April
	if _, err := svc.Create(ctx, b); err != nil {
		t.Fatalf("different period: %v", err)
	}
}

func TestUpdateCannotCollideWithExistingPeriod(t *testing.T) {
	store := memory.New()
	svc := budget.New(store, store)
	ctx := context.Background()
	userID, _ := seedUser(t, store, 0)

	mar, err := svc.Create(ctx, finance.Budget{UserID: userID, Category: "groceries", LimitMinor: 400_00, Month: time.March, Year: 2024})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	apr, err := svc.Create(ctx, finance.Budget{UserID: userID, Category: "groceries", LimitMinor: 400_00, Month: time.April, Year: 2024})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved := apr
	moved.Month = time.March
	if _, err := svc.Update(ctx, moved); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("collision err = %v, want ErrConflict", err)
	}
	// Updating a budget in place (same period) is allowed.
	mar.LimitMinor = 450_00
	if _, err := svc.Update(ctx, mar); err != nil {
		t.Fatalf("in-place update: %v", err)
	}
}

func TestProgressHalfOpenWindow(t *testing.T) {
	store := memory.New()
	svc := budget.New(store, store)
	ledgerSvc := ledger.New(store, store)
	ctx := context.Background()
	userID, acc := seedUser(t, store, 1000_00)

	if _, err := svc.Create(ctx, finance.Budget{UserID: userID, Category: "groceries", LimitMinor: 400_00, Month: time.March, Year: 2024}); err != nil {
		t.Fatalf("create budget: %v", err)
	}

	spend(t, ledgerSvc, userID, acc.ID, "groceries", 50_00, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	spend(t, ledgerSvc, userID, acc.ID, "groceries", 25_00, time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC))
	// First instant of April: outside the March window.
	spend(t, ledgerSvc, userID, acc.ID, "groceries", 99_00, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))
	// Other categories never count toward this budget.
	spend(t, ledgerSvc, userID, acc.ID, "transport", 10_00, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))

	progress, err := svc.Progress(ctx, userID, time.March, 2024)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("got %d rows, want 1", len(progress))
	}
	if progress[0].Category != "groceries" || progress[0].LimitMinor != 400_00 {
		t.Fatalf("unexpected row: %+v", progress[0])
	}
	if progress[0].SpentMinor != 75_00 {
		t.Fatalf("spent = %d, want 7500", progress[0].SpentMinor)
	}
}

func TestProgressEmptyPeriod(t *testing.T) {
	store := memory.New()
	svc := budget.New(store, store)
	userID, _ := seedUser(t, store, 0)

	progress, err := svc.Progress(context.Background(), userID, time.July, 2024)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress) != 0 {
		t.Fatalf("expected empty slice, got %+v", progress)
	}
}
