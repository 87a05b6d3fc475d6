package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/service/ledger"
	"github.com/aminus007/fintrack/internal/storage/memory"
)

func seed(t *testing.T, store *memory.Store, balanceMinor int64) (uuid.UUID, finance.Account) {
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

func balance(t *testing.T, store *memory.Store, userID, accID uuid.UUID) int64 {
	t.Helper()
	acc, err := store.GetAccount(context.Background(), userID, accID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	return acc.BalanceMinor()
}

func expense(t *testing.T, userID, accID uuid.UUID, minor int64) finance.Transaction {
	t.Helper()
	amt, err := finance.MinorAmount("USD", minor)
	if err != nil {
		t.Fatalf("minor amount: %v", err)
	}
	return finance.Transaction{
		UserID:    userID,
		AccountID: accID,
		Type:      finance.TxTypeExpense,
		Category:  "groceries",
		Date:      time.Now().UTC(),
		Amount:    amt,
	}
}

func TestCreateEditDeleteRoundTrip(t *testing.T) {
	store := memory.New()
	svc := ledger.New(store, store)
	ctx := context.Background()
	userID, acc := seed(t, store, 100_00)

	tx, err := svc.Create(ctx, expense(t, userID, acc.ID, 30_00))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := balance(t, store, userID, acc.ID); got != 70_00 {
		t.Fatalf("after create balance = %d, want 7000", got)
	}

	edited := tx
	amt, _ := finance.MinorAmount("USD", 50_00)
	edited.Amount = amt
	if _, err := svc.Update(ctx, edited); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := balance(t, store, userID, acc.ID); got != 50_00 {
		t.Fatalf("after edit balance = %d, want 5000", got)
	}

	if err := svc.Delete(ctx, userID, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := balance(t, store, userID, acc.ID); got != 100_00 {
		t.Fatalf("after delete balance = %d, want 10000", got)
	}
}

func TestUpdateMovesAccounts(t *testing.T) {
	store := memory.New()
	svc := ledger.New(store, store)
	ctx := context.Background()
	userID, accA := seed(t, store, 100_00)

	balB, _ := finance.MinorAmount("USD", 40_00)
	accB := finance.Account{ID: uuid.New(), UserID: userID, Kind: finance.AccountKindSavings, Name: "Side", Balance: balB, CreatedAt: time.Now().UTC()}
	store.SeedAccount(accB)

	tx, err := svc.Create(ctx, expense(t, userID, accA.ID, 25_00))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved := tx
	moved.AccountID = accB.ID
	if _, err := svc.Update(ctx, moved); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := balance(t, store, userID, accA.ID); got != 100_00 {
		t.Fatalf("source balance = %d, want full reversal to 10000", got)
	}
	if got := balance(t, store, userID, accB.ID); got != 15_00 {
		t.Fatalf("target balance = %d, want 1500", got)
	}
}

func TestInsufficientFundsRejected(t *testing.T) {
	store := memory.New()
	svc := ledger.New(store, store)
	ctx := context.Background()
	userID, acc := seed(t, store, 20_00)

	_, err := svc.Create(ctx, expense(t, userID, acc.ID, 30_00))
	if !errors.Is(err, errs.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if got := balance(t, store, userID, acc.ID); got != 20_00 {
		t.Fatalf("balance moved on rejected create: %d", got)
	}
}

func TestUpdatePreservesProvenance(t *testing.T) {
	store := memory.New()
	svc := ledger.New(store, store)
	ctx := context.Background()
	userID, acc := seed(t, store, 100_00)

	ruleID := uuid.New()
	src := expense(t, userID, acc.ID, 10_00)
	src.RuleID = &ruleID
	created, err := store.CreateTransaction(ctx, stamped(src), []finance.BalanceAdjustment{{AccountID: acc.ID, DeltaMinor: -10_00}})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	edited := created
	edited.RuleID = nil
	edited.Note = "edited"
	saved, err := svc.Update(ctx, edited)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved.RuleID == nil || *saved.RuleID != ruleID {
		t.Fatalf("rule provenance lost: %v", saved.RuleID)
	}
	if !saved.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed on update")
	}
}

func stamped(tx finance.Transaction) finance.Transaction {
	tx.ID = uuid.New()
	tx.CreatedAt = time.Now().UTC()
	return tx
}

func TestAllocateSalary(t *testing.T) {
	store := memory.New()
	svc := ledger.New(store, store)
	ctx := context.Background()
	userID, accA := seed(t, store, 0)

	balB, _ := finance.MinorAmount("USD", 0)
	accB := finance.Account{ID: uuid.New(), UserID: userID, Kind: finance.AccountKindSavings, Name: "Save", Balance: balB, CreatedAt: time.Now().UTC()}
	store.SeedAccount(accB)

	// 33/67 split of an amount that does not divide evenly: the last slice
	// absorbs the remainder so the total matches exactly.
	txs, err := svc.AllocateSalary(ctx, userID, time.Now().UTC(), 100_01, []ledger.SalaryAllocation{
		{AccountID: accA.ID, Percent: 33},
		{AccountID: accB.ID, Percent: 67},
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	var total int64
	for _, tx := range txs {
		if tx.Type != finance.TxTypeIncome || tx.Category != "salary" {
			t.Fatalf("unexpected transaction: %+v", tx)
		}
		total += tx.AmountMinor()
	}
	if total != 100_01 {
		t.Fatalf("slices sum to %d, want 10001", total)
	}
	if got := balance(t, store, userID, accA.ID) + balance(t, store, userID, accB.ID); got != 100_01 {
		t.Fatalf("balances sum to %d, want 10001", got)
	}
}

func TestAllocateSalaryRejectsBadPercents(t *testing.T) {
	store := memory.New()
	svc := ledger.New(store, store)
	ctx := context.Background()
	userID, acc := seed(t, store, 0)

	_, err := svc.AllocateSalary(ctx, userID, time.Now().UTC(), 100_00, []ledger.SalaryAllocation{
		{AccountID: acc.ID, Percent: 90},
	})
	if err == nil {
		t.Fatal("expected error for percents not summing to 100")
	}
}
