package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/amqp"
	"expensetracker/internal/store"
)

type fakeExporter struct {
	exported []int64
	err      error
}

func (f *fakeExporter) ExportBudget(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.exported = append(f.exported, id)
	return nil
}

func (f *fakeExporter) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type fakeConsumer struct {
	msgs []*amqp.BudgetSavedMessage
	err  error
}

func (f *fakeConsumer) ConsumeBudgetSaved(ctx context.Context, handler func(context.Context, *amqp.BudgetSavedMessage) error) error {
	for _, m := range f.msgs {
		if err := handler(ctx, m); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleBudgetSaved(t *testing.T) {
	ctx := context.Background()

	exp := &fakeExporter{}
	w := NewProgressWorker(exp, nil)
	require.NoError(t, w.HandleBudgetSaved(ctx, amqp.NewBudgetSavedMessage(5)))
	assert.Equal(t, []int64{5}, exp.exported)

	missing := NewProgressWorker(&fakeExporter{err: fmt.Errorf("get budget: %w", store.ErrNotFound)}, nil)
	assert.NoError(t, missing.HandleBudgetSaved(ctx, amqp.NewBudgetSavedMessage(9)), "missing budgets are acked")

	broken := NewProgressWorker(&fakeExporter{err: errors.New("sheets down")}, nil)
	assert.Error(t, broken.HandleBudgetSaved(ctx, amqp.NewBudgetSavedMessage(9)))
}

func TestRunConsumesUntilCancelled(t *testing.T) {
	exp := &fakeExporter{}
	cons := &fakeConsumer{msgs: []*amqp.BudgetSavedMessage{{ID: 1}, {ID: 2}}}
	w := NewProgressWorker(exp, cons)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := w.Run(ctx)
	assert.True(t, err == nil || errors.Is(err, context.DeadlineExceeded), "unexpected error: %v", err)
	assert.Equal(t, []int64{1, 2}, exp.exported)
}

func TestRunStopsOnConsumerFailure(t *testing.T) {
	w := NewProgressWorker(&fakeExporter{}, &fakeConsumer{err: errors.New("message channel closed")})
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message channel closed")
}

func TestRunWithoutConsumer(t *testing.T) {
	w := NewProgressWorker(&fakeExporter{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, w.Run(ctx))
}
