package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/sheets"
)

var (
	_ sheets.ProgressWriter = (*Store)(nil)
	_ sheets.ProgressReader = (*Store)(nil)
)

// Store collects progress snapshots in memory. Used when no spreadsheet is
// configured and in tests.
type Store struct {
	mu   sync.Mutex
	rows []core.BudgetProgress
}

func New() *Store { return &Store{} }

// AppendProgress stores the snapshot and returns a synthetic row reference.
func (s *Store) AppendProgress(_ context.Context, p core.BudgetProgress) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, p)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) ListProgress(_ context.Context) ([]core.BudgetProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BudgetProgress(nil), s.rows...), nil
}
