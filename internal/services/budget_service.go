package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

// Publisher announces saved budgets to the worker.
type Publisher interface {
	PublishBudgetSaved(ctx context.Context, id int64) error
}

// BudgetService validates and stores budgets, then publishes a budget.saved
// event. Publishing is best effort: the budget is already stored.
type BudgetService struct {
	accounts  store.AccountReader
	budgets   BudgetStore
	records   store.RecordReader
	publisher Publisher
}

// BudgetStore is the budget half of a storage backend.
type BudgetStore interface {
	store.BudgetReader
	store.BudgetWriter
}

// NewBudgetService wires the service. publisher may be nil.
func NewBudgetService(accounts store.AccountReader, budgets BudgetStore, records store.RecordReader, publisher Publisher) *BudgetService {
	return &BudgetService{
		accounts:  accounts,
		budgets:   budgets,
		records:   records,
		publisher: publisher,
	}
}

// CreateBudget validates b against its selected accounts and stores it.
// Repeated account IDs count once. Validation failures come back as
// core.ValidationErrors.
func (s *BudgetService) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	b.AccountIDs = core.UniqueIDs(b.AccountIDs)
	accounts, err := s.accounts.GetAccounts(ctx, b.AccountIDs)
	if err != nil {
		return 0, fmt.Errorf("load budget accounts: %w", err)
	}

	verr := b.Validate(accounts)
	if len(accounts) != len(b.AccountIDs) {
		errs, _ := core.AsValidationErrors(verr)
		if errs == nil {
			errs = core.ValidationErrors{}
		}
		errs.Add("account", "Select a valid choice. That choice is not one of the available choices.")
		verr = errs
	}
	if verr != nil {
		return 0, verr
	}

	id, err := s.budgets.CreateBudget(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("save budget: %w", err)
	}

	if err := s.publish(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget saved message", "id", id, "error", err)
	}
	return id, nil
}

func (s *BudgetService) publish(ctx context.Context, id int64) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping budget saved message", "id", id)
		return nil
	}
	return s.publisher.PublishBudgetSaved(ctx, id)
}

// Progress computes the progress of one budget.
func (s *BudgetService) Progress(ctx context.Context, id int64) (core.BudgetProgress, error) {
	b, err := s.budgets.GetBudget(ctx, id)
	if err != nil {
		return core.BudgetProgress{}, fmt.Errorf("get budget: %w", err)
	}
	return s.progressOf(ctx, b)
}

// ListProgress returns every budget with its progress, newest first.
func (s *BudgetService) ListProgress(ctx context.Context) ([]core.BudgetProgress, error) {
	budgets, err := s.budgets.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		p, err := s.progressOf(ctx, b)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ListBudgets returns the stored budgets, newest first.
func (s *BudgetService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.budgets.ListBudgets(ctx)
}

func (s *BudgetService) progressOf(ctx context.Context, b core.Budget) (core.BudgetProgress, error) {
	records, err := s.records.ListRecords(ctx, b.StartDate, b.EndDate)
	if err != nil {
		return core.BudgetProgress{}, fmt.Errorf("list records for budget %d: %w", b.ID, err)
	}
	return b.Progress(records), nil
}
