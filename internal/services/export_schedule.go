// Package services holds the use cases behind the HTTP handlers and the worker.
//
// The export schedule decides, per budget period, whether a budget's progress
// snapshot should be appended to the spreadsheet again.
package services

import (
	"fmt"
	"time"

	"expensetracker/internal/core"
)

// ExportChecker reports whether a budget is due for another progress export.
type ExportChecker interface {
	IsDue(lastExport, now time.Time, start core.Date) bool
}

// WeeklyChecker is due once seven days have passed since the last export.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastExport, now time.Time, _ core.Date) bool {
	if lastExport.IsZero() {
		return true
	}
	return now.Sub(lastExport) >= 7*24*time.Hour
}

// MonthlyChecker is due in a new month once the start day has been reached.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastExport, now time.Time, start core.Date) bool {
	if lastExport.IsZero() {
		return true
	}
	if lastExport.Year() == now.Year() && lastExport.Month() == now.Month() {
		return false
	}
	return now.Day() >= clampDay(now.Year(), now.Month(), start.Day())
}

// YearlyChecker is due in a new year once the start month and day have been reached.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastExport, now time.Time, start core.Date) bool {
	if lastExport.IsZero() {
		return true
	}
	if lastExport.Year() == now.Year() {
		return false
	}
	switch {
	case now.Month() < start.Month():
		return false
	case now.Month() == start.Month():
		return now.Day() >= clampDay(now.Year(), now.Month(), start.Day())
	default:
		return true
	}
}

// OnceChecker exports a one-time budget a single time.
type OnceChecker struct{}

func (OnceChecker) IsDue(lastExport, _ time.Time, _ core.Date) bool {
	return lastExport.IsZero()
}

func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

var exportStrategies = map[core.Period]ExportChecker{
	core.Week:    WeeklyChecker{},
	core.Month:   MonthlyChecker{},
	core.Year:    YearlyChecker{},
	core.OneTime: OnceChecker{},
}

// GetExportChecker returns the checker for a budget period.
func GetExportChecker(p core.Period) (ExportChecker, error) {
	checker, ok := exportStrategies[p]
	if !ok {
		return nil, fmt.Errorf("unknown budget period: %s", p)
	}
	return checker, nil
}
