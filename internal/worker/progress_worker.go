package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/store"
)

// Exporter is the processor surface the worker drives.
type Exporter interface {
	ExportBudget(ctx context.Context, id int64) error
	Run(ctx context.Context) error
}

// Consumer delivers budget.saved messages.
type Consumer interface {
	ConsumeBudgetSaved(ctx context.Context, handler func(context.Context, *amqp.BudgetSavedMessage) error) error
}

// ProgressWorker exports budget progress when a budget is saved and on the
// periodic sweep.
type ProgressWorker struct {
	exporter Exporter
	consumer Consumer
}

// NewProgressWorker wires the worker. consumer may be nil, in which case only
// the sweep runs.
func NewProgressWorker(exporter Exporter, consumer Consumer) *ProgressWorker {
	return &ProgressWorker{exporter: exporter, consumer: consumer}
}

// HandleBudgetSaved exports the budget named by msg. A budget that no longer
// exists is acknowledged and skipped.
func (w *ProgressWorker) HandleBudgetSaved(ctx context.Context, msg *amqp.BudgetSavedMessage) error {
	slog.InfoContext(ctx, "Processing budget saved message", "id", msg.ID)

	err := w.exporter.ExportBudget(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		slog.WarnContext(ctx, "Budget from message not found, skipping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("export budget %d: %w", msg.ID, err)
	}
	return nil
}

// Run blocks until ctx is done or one of the loops fails.
func (w *ProgressWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.exporter.Run(ctx)
	})
	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.ConsumeBudgetSaved(ctx, w.HandleBudgetSaved)
		})
	} else {
		slog.WarnContext(ctx, "No message consumer configured, running sweep only")
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
