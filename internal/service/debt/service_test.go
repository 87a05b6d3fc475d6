package debt_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/service/debt"
	"github.com/aminus007/fintrack/internal/service/ledger"
	"github.com/aminus007/fintrack/internal/storage/memory"
)

func setup(t *testing.T, checkingMinor int64) (debt.Service, *memory.Store, uuid.UUID, uuid.UUID) {
	t.Helper()
	store := memory.New()
	svc := debt.New(store, store, ledger.New(store, store))
	now := time.Now().UTC()
	user := finance.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Currency: "USD", CreatedAt: now}
	store.SeedUser(user)
	bal, err := finance.MinorAmount("USD", checkingMinor)
	if err != nil {
		t.Fatalf("minor amount: %v", err)
	}
	acc := finance.Account{ID: uuid.New(), UserID: user.ID, Kind: finance.AccountKindChecking, Name: "Main", Balance: bal, CreatedAt: now}
	store.SeedAccount(acc)
	return svc, store, user.ID, acc.ID
}

func mustDebt(t *testing.T, svc debt.Service, userID uuid.UUID, amountMinor int64) finance.Debt {
	t.Helper()
	d, err := svc.Create(context.Background(), finance.Debt{
		UserID:      userID,
		Name:        "Car loan",
		AmountMinor: amountMinor,
		DueDate:     time.Now().UTC().AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("create debt: %v", err)
	}
	return d
}

func TestRecordPaymentFlipsAtThreshold(t *testing.T) {
	svc, _, userID, _ := setup(t, 0)
	ctx := context.Background()
	d := mustDebt(t, svc, userID, 100_00)

	d, err := svc.RecordPayment(ctx, userID, d.ID, 60_00, nil)
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if d.Status != finance.DebtStatusActive || d.PaidMinor != 60_00 {
		t.Fatalf("after partial payment: %+v", d)
	}

	d, err = svc.RecordPayment(ctx, userID, d.ID, 40_00, nil)
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if d.Status != finance.DebtStatusPaid || d.PaidMinor != 100_00 {
		t.Fatalf("after settling payment: %+v", d)
	}

	if _, err := svc.RecordPayment(ctx, userID, d.ID, 1_00, nil); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("payment to settled debt = %v, want ErrConflict", err)
	}
}

func TestRecordPaymentFromAccountPostsExpense(t *testing.T) {
	svc, store, userID, accID := setup(t, 200_00)
	ctx := context.Background()
	d := mustDebt(t, svc, userID, 100_00)

	if _, err := svc.RecordPayment(ctx, userID, d.ID, 50_00, &accID); err != nil {
		t.Fatalf("funded payment: %v", err)
	}

	acc, err := store.GetAccount(ctx, userID, accID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got := acc.BalanceMinor(); got != 150_00 {
		t.Fatalf("account balance = %d, want 15000", got)
	}
	txs, err := store.ListTransactions(ctx, userID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Type != finance.TxTypeExpense || txs[0].Category != "debt" {
		t.Fatalf("expected one debt expense, got %+v", txs)
	}
}

func TestRecordPaymentInsufficientFundsLeavesDebtUntouched(t *testing.T) {
	svc, store, userID, accID := setup(t, 10_00)
	ctx := context.Background()
	d := mustDebt(t, svc, userID, 100_00)

	if _, err := svc.RecordPayment(ctx, userID, d.ID, 50_00, &accID); !errors.Is(err, errs.ErrInsufficientFunds) {
		t.Fatalf("overdrawn payment = %v, want ErrInsufficientFunds", err)
	}
	got, err := svc.Get(ctx, userID, d.ID)
	if err != nil {
		t.Fatalf("get debt: %v", err)
	}
	if got.PaidMinor != 0 || got.Status != finance.DebtStatusActive {
		t.Fatalf("debt mutated after failed payment: %+v", got)
	}
	acc, _ := store.GetAccount(ctx, userID, accID)
	if acc.BalanceMinor() != 10_00 {
		t.Fatalf("account balance moved: %d", acc.BalanceMinor())
	}
}

func TestUpdateReopensWhenPrincipalGrows(t *testing.T) {
	svc, _, userID, _ := setup(t, 0)
	ctx := context.Background()
	d := mustDebt(t, svc, userID, 100_00)

	d, err := svc.RecordPayment(ctx, userID, d.ID, 100_00, nil)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if d.Status != finance.DebtStatusPaid {
		t.Fatalf("expected paid, got %s", d.Status)
	}

	edited := d
	edited.AmountMinor = 150_00
	edited.PaidMinor = 0 // must be ignored
	saved, err := svc.Update(ctx, edited)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved.Status != finance.DebtStatusActive || saved.PaidMinor != 100_00 {
		t.Fatalf("expected reopened debt keeping payments: %+v", saved)
	}
	if !saved.CreatedAt.Equal(d.CreatedAt) {
		t.Fatalf("created_at changed on update")
	}
}
