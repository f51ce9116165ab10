package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

func TestMemoryStoreAccounts(t *testing.T) {
	ctx := context.Background()
	s := New(core.Account{Name: "A", Type: "Cash", Currency: "USD"})

	id, err := s.CreateAccount(ctx, core.Account{Name: "B", Type: "Cash", Currency: "EUR"})
	if err != nil || id != 2 {
		t.Fatalf("unexpected create: id=%d err=%v", id, err)
	}
	if _, err := s.CreateAccount(ctx, core.Account{Name: "b"}); err == nil {
		t.Fatalf("expected duplicate name to fail")
	}

	got, _ := s.GetAccounts(ctx, []int64{2, 7, 1})
	if len(got) != 2 || got[0].Name != "B" || got[1].Name != "A" {
		t.Fatalf("unexpected accounts: %+v", got)
	}
}

func TestMemoryStoreBudgetsAndRecords(t *testing.T) {
	ctx := context.Background()
	s := New()

	cats := []string{"Groceries"}
	id, _ := s.CreateBudget(ctx, core.Budget{Name: "first", Categories: cats})
	_, _ = s.CreateBudget(ctx, core.Budget{Name: "second"})
	cats[0] = "mutated"

	b, err := s.GetBudget(ctx, id)
	if err != nil || b.Categories[0] != "Groceries" {
		t.Fatalf("budget not copied: %+v err=%v", b, err)
	}
	list, _ := s.ListBudgets(ctx)
	if len(list) != 2 || list[0].Name != "second" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if _, err := s.GetBudget(ctx, 9); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	_, _ = s.CreateRecord(ctx, core.Record{Note: "late", Date: core.NewDate(2025, 1, 20)})
	_, _ = s.CreateRecord(ctx, core.Record{Note: "early", Date: core.NewDate(2025, 1, 2)})
	_, _ = s.CreateRecord(ctx, core.Record{Note: "out", Date: core.NewDate(2025, 2, 2)})
	recs, _ := s.ListRecords(ctx, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31))
	if len(recs) != 2 || recs[0].Note != "early" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()
	// No file -> defaults
	s := NewFromFiles(dir)
	accs, _ := s.ListAccounts(context.Background())
	if len(accs) == 0 {
		t.Fatalf("expected defaults when file missing")
	}

	content := "# name|type|currency|balance\nMain|Cash|usd|$1,200.50\nmain|Cash|USD\n\nBroken line\nEuro|Savings|EUR\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_accounts.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s = NewFromFiles(dir)
	accs, _ = s.ListAccounts(context.Background())
	if len(accs) != 2 || accs[0].Name != "Main" || accs[1].Name != "Euro" {
		t.Fatalf("unexpected accounts: %+v", accs)
	}
	if accs[0].Currency != "USD" || accs[0].Balance.Cents != 120050 {
		t.Fatalf("seed line not normalised: %+v", accs[0])
	}
}

func TestMemoryStoreRecordBalances(t *testing.T) {
	ctx := context.Background()
	s := New(
		core.Account{Name: "A", Type: "Cash", Currency: "USD", Balance: core.Money{Cents: 10000}},
		core.Account{Name: "B", Type: "Cash", Currency: "USD"},
	)

	if _, err := s.CreateRecord(ctx, core.Record{Type: core.Transfer, FromAccountID: 1, ToAccountID: 2, Amount: core.Money{Cents: 2500}}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	got, _ := s.GetAccounts(ctx, []int64{1, 2})
	if got[0].Balance.Cents != 7500 || got[1].Balance.Cents != 2500 {
		t.Fatalf("unexpected balances after transfer: %+v", got)
	}

	_, err := s.CreateRecord(ctx, core.Record{Type: core.Transfer, FromAccountID: 1, ToAccountID: 9, Amount: core.Money{Cents: 100}})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	got, _ = s.GetAccounts(ctx, []int64{1})
	if got[0].Balance.Cents != 7500 {
		t.Fatalf("failed record must not touch balances, got %d", got[0].Balance.Cents)
	}
	if latest, _ := s.LatestRecords(ctx, 0); len(latest) != 1 {
		t.Fatalf("failed record must not be stored: %+v", latest)
	}

	if err := s.AdjustBalance(ctx, 2, -500); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if err := s.AdjustBalance(ctx, 3, 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	got, _ = s.GetAccounts(ctx, []int64{2})
	if got[0].Balance.Cents != 2000 {
		t.Fatalf("unexpected balance after adjust: %d", got[0].Balance.Cents)
	}
}

func TestMemoryStoreLatestRecords(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.CreateRecord(ctx, core.Record{Note: "old", Date: core.NewDate(2025, 1, 1), Time: "09:00"})
	_, _ = s.CreateRecord(ctx, core.Record{Note: "evening", Date: core.NewDate(2025, 1, 5), Time: "20:00"})
	_, _ = s.CreateRecord(ctx, core.Record{Note: "morning", Date: core.NewDate(2025, 1, 5), Time: "08:00"})

	all, _ := s.LatestRecords(ctx, 0)
	if len(all) != 3 || all[0].Note != "evening" || all[1].Note != "morning" || all[2].Note != "old" {
		t.Fatalf("unexpected order: %+v", all)
	}
	top, _ := s.LatestRecords(ctx, 1)
	if len(top) != 1 || top[0].Note != "evening" {
		t.Fatalf("unexpected limit result: %+v", top)
	}
}

func TestMemoryStoreGoals(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, _ = s.CreateGoal(ctx, core.Goal{Name: "late", TargetDate: core.NewDate(2027, 1, 1)})
	id, err := s.CreateGoal(ctx, core.Goal{Name: "soon", TargetDate: core.NewDate(2026, 1, 1)})
	if err != nil || id != 2 {
		t.Fatalf("unexpected create: id=%d err=%v", id, err)
	}

	goals, _ := s.ListGoals(ctx)
	if len(goals) != 2 || goals[0].Name != "soon" || goals[1].Name != "late" {
		t.Fatalf("goals not ordered by target date: %+v", goals)
	}
	goals[0].Name = "mutated"
	if again, _ := s.ListGoals(ctx); again[0].Name != "soon" {
		t.Fatalf("ListGoals must return a copy")
	}
}
