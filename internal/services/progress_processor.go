package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/sheets"
)

// ProgressProcessorConfig holds the sweep settings.
type ProgressProcessorConfig struct {
	// PollInterval is how often every budget is checked (default: 1h)
	PollInterval time.Duration

	// MaxRetries is how many consecutive export failures a budget gets before
	// it is skipped until its next period (default: 3)
	MaxRetries int
}

func DefaultProgressProcessorConfig() ProgressProcessorConfig {
	return ProgressProcessorConfig{
		PollInterval: time.Hour,
		MaxRetries:   3,
	}
}

// ProgressSource is what the processor needs from the budget service.
type ProgressSource interface {
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	Progress(ctx context.Context, id int64) (core.BudgetProgress, error)
}

// ProgressProcessor exports budget progress snapshots. Budgets are exported
// on demand after a save and by a periodic sweep driven by the export schedule
// of their period.
type ProgressProcessor struct {
	source ProgressSource
	sheets sheets.ProgressWriter
	config ProgressProcessorConfig
	now    func() time.Time

	stateMu    sync.Mutex
	lastExport map[int64]time.Time
	failures   map[int64]int

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewProgressProcessor(source ProgressSource, writer sheets.ProgressWriter, config ProgressProcessorConfig) *ProgressProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultProgressProcessorConfig().PollInterval
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultProgressProcessorConfig().MaxRetries
	}
	return &ProgressProcessor{
		source:     source,
		sheets:     writer,
		config:     config,
		now:        time.Now,
		lastExport: make(map[int64]time.Time),
		failures:   make(map[int64]int),
	}
}

// ExportBudget exports the current progress of one budget regardless of its
// schedule.
func (p *ProgressProcessor) ExportBudget(ctx context.Context, id int64) error {
	progress, err := p.source.Progress(ctx, id)
	if err != nil {
		return fmt.Errorf("progress of budget %d: %w", id, err)
	}
	ref, err := p.sheets.AppendProgress(ctx, progress)
	if err != nil {
		return fmt.Errorf("append progress of budget %d: %w", id, err)
	}

	p.stateMu.Lock()
	p.lastExport[id] = p.now()
	delete(p.failures, id)
	p.stateMu.Unlock()

	slog.InfoContext(ctx, "Exported budget progress",
		"budget_id", id,
		"percent", progress.Percent.String(),
		"sheets_ref", ref)
	return nil
}

// Sweep exports every budget whose schedule says it is due and returns how
// many were exported.
func (p *ProgressProcessor) Sweep(ctx context.Context) (int, error) {
	budgets, err := p.source.ListBudgets(ctx)
	if err != nil {
		return 0, fmt.Errorf("list budgets: %w", err)
	}

	now := p.now()
	exported := 0
	for _, b := range budgets {
		if ctx.Err() != nil {
			return exported, ctx.Err()
		}
		checker, err := GetExportChecker(b.Period)
		if err != nil {
			slog.WarnContext(ctx, "Skipping budget with unknown period", "budget_id", b.ID, "error", err)
			continue
		}

		p.stateMu.Lock()
		last := p.lastExport[b.ID]
		p.stateMu.Unlock()
		if !checker.IsDue(last, now, b.StartDate) {
			continue
		}

		if err := p.ExportBudget(ctx, b.ID); err != nil {
			p.handleFailure(ctx, b.ID, err)
			continue
		}
		exported++
	}
	return exported, nil
}

func (p *ProgressProcessor) handleFailure(ctx context.Context, id int64, exportErr error) {
	p.stateMu.Lock()
	p.failures[id]++
	attempts := p.failures[id]
	if attempts >= p.config.MaxRetries {
		// Give up until the next period.
		p.lastExport[id] = p.now()
		delete(p.failures, id)
	}
	p.stateMu.Unlock()

	if attempts >= p.config.MaxRetries {
		slog.ErrorContext(ctx, "Budget export failed permanently for this period",
			"budget_id", id, "attempts", attempts, "error", exportErr)
		return
	}
	slog.WarnContext(ctx, "Budget export failed", "budget_id", id, "attempt", attempts, "error", exportErr)
}

// Run sweeps immediately and then on every poll tick until ctx is done.
func (p *ProgressProcessor) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.sweepAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.sweepAndLog(ctx)
		}
	}
}

func (p *ProgressProcessor) sweepAndLog(ctx context.Context) {
	n, err := p.Sweep(ctx)
	if err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Progress sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Progress sweep completed", "exported", n)
	}
}

// Start runs the sweep loop in the background. Returns an error if already running.
func (p *ProgressProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("progress processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	loopCtx, cancel := context.WithCancel(ctx)
	go func() {
		<-p.stopCh
		cancel()
	}()
	go func() {
		defer close(p.doneCh)
		_ = p.Run(loopCtx)
	}()

	slog.InfoContext(ctx, "Progress processor started", "poll_interval", p.config.PollInterval)
	return nil
}

// Stop ends the loop started by Start and waits for it.
func (p *ProgressProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()

	select {
	case <-done:
		slog.InfoContext(ctx, "Progress processor stopped")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Progress processor stop timed out")
		return ctx.Err()
	}
}

func (p *ProgressProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
