package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	sheetsmem "expensetracker/internal/sheets/memory"
	"expensetracker/internal/storage"
	"expensetracker/internal/store/memory"
)

type fakePublisher struct {
	mu  sync.Mutex
	ids []int64
	err error
}

func (f *fakePublisher) PublishBudgetSaved(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return f.err
}

func seededStore() *memory.Store {
	return memory.New(
		core.Account{Name: "Wallet", Type: "Cash", Currency: "USD"},
		core.Account{Name: "Checking", Type: "Current", Currency: "USD"},
		core.Account{Name: "Euro", Type: "Savings", Currency: "EUR"},
	)
}

func januaryBudget(accounts ...int64) core.Budget {
	return core.Budget{
		Name:       "Food",
		Categories: []string{"Groceries"},
		Period:     core.Month,
		StartDate:  core.NewDate(2025, 1, 1),
		EndDate:    core.NewDate(2025, 1, 31),
		Amount:     core.Money{Cents: 20000},
		AccountIDs: accounts,
	}
}

func TestBudgetServiceCreate(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	pub := &fakePublisher{}
	svc := NewBudgetService(st, st, st, pub)

	id, err := svc.CreateBudget(ctx, januaryBudget(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, pub.ids)

	b, err := st.GetBudget(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "USD", b.Currency)
}

func TestBudgetServiceRejectsMixedCurrencies(t *testing.T) {
	st := seededStore()
	pub := &fakePublisher{}
	svc := NewBudgetService(st, st, st, pub)

	_, err := svc.CreateBudget(context.Background(), januaryBudget(1, 3))
	verrs, ok := core.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, "All selected accounts must use the same currency.", verrs[core.FieldForm])
	assert.Empty(t, pub.ids)
}

func TestBudgetServiceUnknownAccount(t *testing.T) {
	st := seededStore()
	svc := NewBudgetService(st, st, st, nil)

	_, err := svc.CreateBudget(context.Background(), januaryBudget(1, 42))
	verrs, ok := core.AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, verrs["account"], "Select a valid choice")
}

func TestBudgetServicePublishFailureIsNotFatal(t *testing.T) {
	st := seededStore()
	svc := NewBudgetService(st, st, st, &fakePublisher{err: errors.New("broker down")})

	id, err := svc.CreateBudget(context.Background(), januaryBudget(1))
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestBudgetServiceProgress(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	svc := NewBudgetService(st, st, st, nil)
	records := NewRecordService(st, st)

	id, err := svc.CreateBudget(ctx, januaryBudget(1))
	require.NoError(t, err)
	_, err = records.CreateRecord(ctx, core.Record{Type: core.Expense, Category: "Groceries", AccountID: 1, Amount: core.Money{Cents: 5000}, Date: core.NewDate(2025, 1, 3)})
	require.NoError(t, err)

	p, err := svc.Progress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "25", p.Percent.String())

	all, err := svc.ListProgress(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(5000), all[0].Spent.Cents)
}

func TestRecordServiceChecksAccounts(t *testing.T) {
	st := seededStore()
	svc := NewRecordService(st, st)

	_, err := svc.CreateRecord(context.Background(), core.Record{
		Type: core.Transfer, Category: "Savings", FromAccountID: 1, ToAccountID: 99,
		Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 1),
	})
	verrs, ok := core.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Select a valid account.", verrs[core.FieldForm])
}

func TestAccountServiceCachesList(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	c := cache.NewLRUCache[[]core.Account](4, time.Minute)
	svc := NewAccountService(st, c)

	first, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	_, _ = svc.ListAccounts(ctx)
	assert.Equal(t, int64(1), c.Stats().Hits)

	_, err = svc.CreateAccount(ctx, core.Account{Name: "wallet", Type: "Cash", Currency: "USD"})
	verrs, ok := core.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, "You already have an account with this name.", verrs["name"])

	_, err = svc.CreateAccount(ctx, core.Account{Name: "Broker", Type: "Investment", Currency: "usd"})
	require.NoError(t, err)
	after, _ := svc.ListAccounts(ctx)
	assert.Len(t, after, len(first)+1, "create drops the cached list")
}

type failingWriter struct{ calls int }

func (f *failingWriter) AppendProgress(context.Context, core.BudgetProgress) (string, error) {
	f.calls++
	return "", errors.New("quota exceeded")
}

func TestProgressProcessorSweep(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	budgets := NewBudgetService(st, st, st, nil)
	_, err := budgets.CreateBudget(ctx, januaryBudget(1))
	require.NoError(t, err)
	once := januaryBudget(2)
	once.Name, once.Period = "Trip", core.OneTime
	_, err = budgets.CreateBudget(ctx, once)
	require.NoError(t, err)

	out := sheetsmem.New()
	p := NewProgressProcessor(budgets, out, DefaultProgressProcessorConfig())
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	n, err := p.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, _ = p.Sweep(ctx)
	assert.Equal(t, 0, n, "nothing is due twice in the same month")

	now = time.Date(2025, 2, 2, 9, 0, 0, 0, time.UTC)
	n, _ = p.Sweep(ctx)
	assert.Equal(t, 1, n, "monthly budget is due again, one-time is not")

	rows, _ := out.ListProgress(ctx)
	assert.Len(t, rows, 3)
}

func TestProgressProcessorGivesUpAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	budgets := NewBudgetService(st, st, st, nil)
	_, err := budgets.CreateBudget(ctx, januaryBudget(1))
	require.NoError(t, err)

	w := &failingWriter{}
	p := NewProgressProcessor(budgets, w, ProgressProcessorConfig{PollInterval: time.Minute, MaxRetries: 2})

	for i := 0; i < 4; i++ {
		_, _ = p.Sweep(ctx)
	}
	assert.Equal(t, 2, w.calls)
}

func TestProgressProcessorLifecycle(t *testing.T) {
	st := seededStore()
	p := NewProgressProcessor(NewBudgetService(st, st, st, nil), sheetsmem.New(), ProgressProcessorConfig{})
	assert.Equal(t, time.Hour, p.config.PollInterval)
	assert.False(t, p.IsRunning())
	assert.NoError(t, p.Stop(context.Background()))

	require.NoError(t, p.Start(context.Background()))
	assert.Error(t, p.Start(context.Background()))
	assert.True(t, p.IsRunning())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
	assert.False(t, p.IsRunning())
}

func TestRecordServiceMovesBalances(t *testing.T) {
	day := core.NewDate(2025, 1, 10)
	tests := []struct {
		name string
		rec  core.Record
		want map[int64]int64
	}{
		{
			name: "expense debits the account",
			rec:  core.Record{Type: core.Expense, Category: "Groceries", AccountID: 1, Amount: core.Money{Cents: 2500}, Date: day},
			want: map[int64]int64{1: 7500, 2: 0},
		},
		{
			name: "income credits the account",
			rec:  core.Record{Type: core.Income, Category: "Salary", AccountID: 2, Amount: core.Money{Cents: 2500}, Date: day},
			want: map[int64]int64{1: 10000, 2: 2500},
		},
		{
			name: "transfer moves between accounts",
			rec:  core.Record{Type: core.Transfer, Category: "Savings", FromAccountID: 1, ToAccountID: 2, Amount: core.Money{Cents: 4000}, Date: day},
			want: map[int64]int64{1: 6000, 2: 4000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := memory.New(
				core.Account{Name: "Wallet", Type: "Cash", Currency: "USD", Balance: core.Money{Cents: 10000}},
				core.Account{Name: "Checking", Type: "Current", Currency: "USD"},
			)
			accounts := NewAccountService(st, cache.NewLRUCache[[]core.Account](4, time.Minute))
			_, err := accounts.ListAccounts(ctx) // warm the cache
			require.NoError(t, err)

			_, err = NewRecordService(accounts, st).CreateRecord(ctx, tt.rec)
			require.NoError(t, err)

			listed, err := accounts.ListAccounts(ctx)
			require.NoError(t, err)
			for _, a := range listed {
				assert.Equal(t, tt.want[a.ID], a.Balance.Cents, "balance of %s", a.Name)
			}
		})
	}
}

func TestRecordServiceFillsDateAndTime(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	svc := NewRecordService(st, st)
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 14, 5, 0, 0, time.UTC) }

	_, err := svc.CreateRecord(ctx, core.Record{Type: core.Income, Category: "Salary", AccountID: 1, Amount: core.Money{Cents: 100}})
	require.NoError(t, err)

	recs, err := svc.LatestRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2025-06-02", recs[0].Date.String())
	assert.Equal(t, "14:05", recs[0].Time)
}

func TestRecordServiceAccountRecords(t *testing.T) {
	ctx := context.Background()
	st := seededStore()
	svc := NewRecordService(st, st)
	day := core.NewDate(2025, 1, 10)

	for _, r := range []core.Record{
		{Type: core.Expense, Category: "Groceries", AccountID: 1, Amount: core.Money{Cents: 100}, Date: day},
		{Type: core.Expense, Category: "Groceries", AccountID: 2, Amount: core.Money{Cents: 100}, Date: day},
		{Type: core.Transfer, Category: "Savings", FromAccountID: 2, ToAccountID: 1, Amount: core.Money{Cents: 100}, Date: day},
	} {
		_, err := svc.CreateRecord(ctx, r)
		require.NoError(t, err)
	}

	recs, err := svc.AccountRecords(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	recs, err = svc.AccountRecords(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestBudgetServiceRepeatedAccountCountsOnce(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	id, err := repo.CreateAccount(ctx, core.Account{Name: "Wallet", Type: "Cash", Currency: "USD"})
	require.NoError(t, err)

	svc := NewBudgetService(repo, repo, repo, nil)
	budgetID, err := svc.CreateBudget(ctx, januaryBudget(id, id))
	require.NoError(t, err)

	b, err := repo.GetBudget(ctx, budgetID)
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, b.AccountIDs)
	assert.Equal(t, "USD", b.Currency)
}

func TestGoalService(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(memory.New())

	_, err := svc.CreateGoal(ctx, core.Goal{TargetDate: core.NewDate(2026, 5, 1)}, "Party", "")
	verrs, ok := core.AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, verrs, "target_amount")

	id, err := svc.CreateGoal(ctx, core.Goal{Target: core.Money{Cents: 80000}, Saved: core.Money{Cents: 20000},
		TargetDate: core.NewDate(2026, 5, 1)}, core.GoalOther, "Camera")
	require.NoError(t, err)

	goals, err := svc.ListGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, id, goals[0].ID)
	assert.Equal(t, "Camera", goals[0].Name)
	assert.Equal(t, "25", goals[0].ProgressPercent().String())
}
