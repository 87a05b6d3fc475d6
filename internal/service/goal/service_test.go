package goal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/finance"
	"github.com/aminus007/fintrack/internal/service/goal"
	"github.com/aminus007/fintrack/internal/storage/memory"
)

func seedUserWithSavings(t *testing.T, store *memory.Store, savingsMinor int64) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	user := finance.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Currency: "USD", CreatedAt: now}
	store.SeedUser(user)
	bal, err := finance.MinorAmount("USD", savingsMinor)
	if err != nil {
		t.Fatalf("minor amount: %v", err)
	}
	store.SeedAccount(finance.Account{ID: uuid.New(), UserID: user.ID, Kind: finance.AccountKindSavings, Name: "Save", Balance: bal, CreatedAt: now})
	// A checking balance should never leak into allocations.
	chk, _ := finance.MinorAmount("USD", 9999_00)
	store.SeedAccount(finance.Account{ID: uuid.New(), UserID: user.ID, Kind: finance.AccountKindChecking, Name: "Main", Balance: chk, CreatedAt: now})
	return user.ID
}

func mustGoal(t *testing.T, svc goal.Service, userID uuid.UUID, name string, target int64) finance.Goal {
	t.Helper()
	g, err := svc.Create(context.Background(), finance.Goal{UserID: userID, Name: name, TargetMinor: target})
	if err != nil {
		t.Fatalf("create goal %s: %v", name, err)
	}
	return g
}

func TestAllocationsGreedyInCreationOrder(t *testing.T) {
	store := memory.New()
	svc := goal.New(store, store)
	ctx := context.Background()
	userID := seedUserWithSavings(t, store, 250_00)

	first := mustGoal(t, svc, userID, "Laptop", 200_00)
	second := mustGoal(t, svc, userID, "Trip", 300_00)

	allocs, err := svc.Allocations(ctx, userID)
	if err != nil {
		t.Fatalf("allocations: %v", err)
	}
	if len(allocs) != 2 {
		t.Fatalf("got %d allocations, want 2", len(allocs))
	}
	if allocs[0].GoalID != first.ID || allocs[0].AllocatedMinor != 200_00 {
		t.Fatalf("first allocation = %+v, want fully funded", allocs[0])
	}
	if allocs[1].GoalID != second.ID || allocs[1].AllocatedMinor != 50_00 {
		t.Fatalf("second allocation = %+v, want the 5000 remainder", allocs[1])
	}

	// Conservation: allocations never exceed the savings balance.
	var total int64
	for _, a := range allocs {
		total += a.AllocatedMinor
	}
	if total > 250_00 {
		t.Fatalf("allocated %d exceeds savings", total)
	}

	// Determinism for unchanged inputs.
	again, err := svc.Allocations(ctx, userID)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	for i := range allocs {
		if allocs[i] != again[i] {
			t.Fatalf("allocation changed between reads: %+v vs %+v", allocs[i], again[i])
		}
	}
}

func TestAllocationsRespectExplicitDeposits(t *testing.T) {
	store := memory.New()
	svc := goal.New(store, store)
	ctx := context.Background()
	userID := seedUserWithSavings(t, store, 100_00)

	g := mustGoal(t, svc, userID, "Laptop", 200_00)
	if _, err := svc.AddFunds(ctx, userID, g.ID, 150_00); err != nil {
		t.Fatalf("add funds: %v", err)
	}

	allocs, err := svc.Allocations(ctx, userID)
	if err != nil {
		t.Fatalf("allocations: %v", err)
	}
	// needed = 200 - 150 = 50; savings covers it fully.
	if allocs[0].CurrentMinor != 150_00 || allocs[0].AllocatedMinor != 50_00 {
		t.Fatalf("allocation = %+v", allocs[0])
	}
}

func TestUpdatePreservesDepositsAndOrder(t *testing.T) {
	store := memory.New()
	svc := goal.New(store, store)
	ctx := context.Background()
	userID := seedUserWithSavings(t, store, 0)

	g := mustGoal(t, svc, userID, "Laptop", 200_00)
	if _, err := svc.AddFunds(ctx, userID, g.ID, 30_00); err != nil {
		t.Fatalf("add funds: %v", err)
	}

	edited := g
	edited.Name = "Workstation"
	edited.TargetMinor = 250_00
	edited.CurrentMinor = 0 // must be ignored
	saved, err := svc.Update(ctx, edited)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved.CurrentMinor != 30_00 {
		t.Fatalf("deposits lost on update: %d", saved.CurrentMinor)
	}
	if !saved.CreatedAt.Equal(g.CreatedAt) {
		t.Fatalf("created_at changed on update")
	}
}
