package backend

import (
	"context"

	"expensetracker/internal/services"
	"expensetracker/internal/store"
)

// Store is everything the services need from a storage backend.
type Store interface {
	store.AccountReader
	store.AccountWriter
	store.RecordReader
	store.RecordWriter
	store.RecordLister
	store.BudgetReader
	store.BudgetWriter
	store.GoalStore
	Ping(ctx context.Context) error
}

// Pinger is a dependency reported by readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function.
// Publisher is nil when no broker is configured.
type BackendResult struct {
	Store     Store
	Publisher services.Publisher
	Checks    map[string]Pinger
	Cleanup   CleanupFunc
}

// Close runs Cleanup when there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional budget.saved publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Memory backend seed directory
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
