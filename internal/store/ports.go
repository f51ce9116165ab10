package store

import (
	"context"
	"errors"

	"expensetracker/internal/core"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Ports for outbound adapters.
type (
	AccountReader interface {
		// ListAccounts returns active accounts ordered by creation.
		ListAccounts(ctx context.Context) ([]core.Account, error)
		// GetAccounts returns the active accounts with the given IDs in ids
		// order. Unknown and inactive IDs are skipped.
		GetAccounts(ctx context.Context, ids []int64) ([]core.Account, error)
	}

	AccountWriter interface {
		CreateAccount(ctx context.Context, a core.Account) (int64, error)
		// AdjustBalance adds delta cents to the account's balance.
		AdjustBalance(ctx context.Context, id, delta int64) error
	}

	// RecordWriter stores a record and applies its BalanceChanges to the
	// accounts it books on. Both happen or neither does.
	RecordWriter interface {
		CreateRecord(ctx context.Context, r core.Record) (int64, error)
	}

	// RecordLister returns records newest first. limit <= 0 means all.
	RecordLister interface {
		LatestRecords(ctx context.Context, limit int) ([]core.Record, error)
	}

	// RecordReader lists records whose date lies in [from, to].
	RecordReader interface {
		ListRecords(ctx context.Context, from, to core.Date) ([]core.Record, error)
	}

	BudgetWriter interface {
		CreateBudget(ctx context.Context, b core.Budget) (int64, error)
	}

	BudgetReader interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		GetBudget(ctx context.Context, id int64) (core.Budget, error)
	}

	// GoalStore keeps savings goals. ListGoals orders by target date.
	GoalStore interface {
		CreateGoal(ctx context.Context, g core.Goal) (int64, error)
		ListGoals(ctx context.Context) ([]core.Goal, error)
	}
)
