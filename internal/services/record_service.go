package services

import (
	"context"
	"fmt"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

// RecordStore is the record half of a storage backend.
type RecordStore interface {
	store.RecordWriter
	store.RecordLister
}

// accountsInvalidator is implemented by account readers that cache balances.
type accountsInvalidator interface {
	InvalidateAccounts()
}

type RecordService struct {
	accounts store.AccountReader
	records  RecordStore
	now      func() time.Time
}

// NewRecordService wires the service. When accounts caches the account list
// (an *AccountService does), the cache is dropped after every record because
// balances changed.
func NewRecordService(accounts store.AccountReader, records RecordStore) *RecordService {
	return &RecordService{accounts: accounts, records: records, now: time.Now}
}

// CreateRecord fills a missing date and time, validates r, checks that every
// referenced account exists and stores it. The store moves the balances of
// the accounts the record books on.
func (s *RecordService) CreateRecord(ctx context.Context, r core.Record) (int64, error) {
	r.FillDefaults(s.now())
	if err := r.Validate(); err != nil {
		return 0, err
	}

	var ids []int64
	for _, id := range []int64{r.AccountID, r.FromAccountID, r.ToAccountID} {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	ids = core.UniqueIDs(ids)
	found, err := s.accounts.GetAccounts(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("load record accounts: %w", err)
	}
	if len(found) != len(ids) {
		return 0, core.ValidationErrors{core.FieldForm: "Select a valid account."}
	}

	id, err := s.records.CreateRecord(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("save record: %w", err)
	}
	if inv, ok := s.accounts.(accountsInvalidator); ok {
		inv.InvalidateAccounts()
	}
	return id, nil
}

// LatestRecords returns records newest first. limit <= 0 means all.
func (s *RecordService) LatestRecords(ctx context.Context, limit int) ([]core.Record, error) {
	recs, err := s.records.LatestRecords(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return recs, nil
}

// AccountRecords returns the records that book on account id, newest first.
func (s *RecordService) AccountRecords(ctx context.Context, id int64) ([]core.Record, error) {
	all, err := s.LatestRecords(ctx, 0)
	if err != nil {
		return nil, err
	}
	var out []core.Record
	for _, r := range all {
		if r.Touches(id) {
			out = append(out, r)
		}
	}
	return out, nil
}
