package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/errs"
	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/service/account"
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

func TestDeleteBlockedWhileReferenced(t *testing.T) {
	store := memory.New()
	accounts := account.New(store, store)
	txns := ledger.New(store, store)
	ctx := context.Background()
	userID, acc := seed(t, store, 100_00)

	amt, _ := finance.MinorAmount("USD", 20_00)
	tx, err := txns.Create(ctx, finance.Transaction{
		UserID:    userID,
		AccountID: acc.ID,
		Type:      finance.TxTypeExpense,
		Category:  "groceries",
		Date:      time.Now().UTC(),
		Amount:    amt,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := accounts.Delete(ctx, userID, acc.ID); !errors.Is(err, errs.ErrAccountInUse) {
		t.Fatalf("delete referenced account = %v, want ErrAccountInUse", err)
	}

	// Once the reference is gone the account can go too.
	if err := txns.Delete(ctx, userID, tx.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if err := accounts.Delete(ctx, userID, acc.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if _, err := accounts.Get(ctx, userID, acc.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("get deleted account = %v, want ErrNotFound", err)
	}
}

func TestRename(t *testing.T) {
	store := memory.New()
	accounts := account.New(store, store)
	ctx := context.Background()
	userID, acc := seed(t, store, 0)

	renamed, err := accounts.Rename(ctx, userID, acc.ID, "Everyday")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "Everyday" {
		t.Fatalf("name = %q", renamed.Name)
	}
	if renamed.BalanceMinor() != acc.BalanceMinor() || !renamed.CreatedAt.Equal(acc.CreatedAt) {
		t.Fatalf("rename touched balance or created_at: %+v", renamed)
	}

	if _, err := accounts.Rename(ctx, userID, acc.ID, ""); err == nil {
		t.Fatal("expected error for empty name")
	}
}
