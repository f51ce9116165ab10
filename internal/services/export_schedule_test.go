package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestExportCheckers(t *testing.T) {
	tests := []struct {
		name    string
		checker ExportChecker
		last    time.Time
		now     time.Time
		start   core.Date
		want    bool
	}{
		{"weekly never exported", WeeklyChecker{}, time.Time{}, at(2024, 1, 15), core.NewDate(2024, 1, 1), true},
		{"weekly 3 days ago", WeeklyChecker{}, at(2024, 1, 12), at(2024, 1, 15), core.NewDate(2024, 1, 1), false},
		{"weekly 7 days ago", WeeklyChecker{}, at(2024, 1, 8), at(2024, 1, 15), core.NewDate(2024, 1, 1), true},

		{"monthly this month", MonthlyChecker{}, at(2024, 1, 10), at(2024, 1, 15), core.NewDate(2024, 1, 10), false},
		{"monthly before start day", MonthlyChecker{}, at(2024, 1, 15), at(2024, 2, 10), core.NewDate(2024, 1, 15), false},
		{"monthly on start day", MonthlyChecker{}, at(2024, 1, 15), at(2024, 2, 15), core.NewDate(2024, 1, 15), true},
		{"monthly day 31 in leap February", MonthlyChecker{}, at(2024, 1, 31), at(2024, 2, 29), core.NewDate(2024, 1, 31), true},

		{"yearly this year", YearlyChecker{}, at(2024, 3, 15), at(2024, 6, 15), core.NewDate(2024, 3, 15), false},
		{"yearly before start month", YearlyChecker{}, at(2024, 6, 15), at(2025, 3, 15), core.NewDate(2024, 6, 15), false},
		{"yearly past start month", YearlyChecker{}, at(2024, 3, 15), at(2025, 6, 15), core.NewDate(2024, 3, 15), true},
		{"yearly same month before day", YearlyChecker{}, at(2024, 6, 15), at(2025, 6, 10), core.NewDate(2024, 6, 15), false},
		{"yearly same month on day", YearlyChecker{}, at(2024, 6, 15), at(2025, 6, 15), core.NewDate(2024, 6, 15), true},

		{"once never exported", OnceChecker{}, time.Time{}, at(2030, 1, 1), core.NewDate(2024, 1, 1), true},
		{"once already exported", OnceChecker{}, at(2024, 1, 1), at(2030, 1, 1), core.NewDate(2024, 1, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.checker.IsDue(tt.last, tt.now, tt.start))
		})
	}
}

func TestGetExportChecker(t *testing.T) {
	for _, p := range core.Periods {
		c, err := GetExportChecker(p)
		require.NoError(t, err, p)
		assert.NotNil(t, c)
	}
	_, err := GetExportChecker("Decade")
	assert.Error(t, err)
}
