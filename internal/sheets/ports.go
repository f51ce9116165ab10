package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// Ports for the spreadsheet export of budget progress.
type (
	ProgressWriter interface {
		// AppendProgress writes one progress snapshot and returns a row reference.
		AppendProgress(ctx context.Context, p core.BudgetProgress) (string, error)
	}

	ProgressReader interface {
		ListProgress(ctx context.Context) ([]core.BudgetProgress, error)
	}
)
