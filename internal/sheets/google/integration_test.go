//go:build integration

package google

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// Run with: go test -tags=integration ./internal/sheets/google
func TestIntegration_ProgressExport(t *testing.T) {
	id := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if id == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := New(ctx, Options{
		SpreadsheetID:   id,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ref, err := client.AppendProgress(ctx, core.BudgetProgress{
		BudgetID: 1, Name: "integration", Currency: "USD",
		Spent: core.Money{Cents: 100}, Amount: core.Money{Cents: 400},
		Percent: decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("AppendProgress: %v", err)
	}
	t.Logf("appended at %s", ref)

	rows, err := client.ListProgress(ctx)
	if err != nil {
		t.Fatalf("ListProgress: %v", err)
	}
	if len(rows) == 0 {
		t.Error("expected at least one progress row")
	}
}
