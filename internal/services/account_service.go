package services

import (
	"context"
	"fmt"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

const accountsKey = "accounts:active"

// AccountStore is the account half of a storage backend.
type AccountStore interface {
	store.AccountReader
	store.AccountWriter
}

// AccountService lists and creates accounts. The active list is cached and
// dropped on every write.
type AccountService struct {
	store AccountStore
	cache cache.Cache[[]core.Account]
}

// NewAccountService wires the service. c may be nil to disable caching.
func NewAccountService(s AccountStore, c cache.Cache[[]core.Account]) *AccountService {
	return &AccountService{store: s, cache: c}
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	if s.cache != nil {
		if accs, ok := s.cache.Get(accountsKey); ok {
			return accs, nil
		}
	}
	accs, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(accountsKey, accs)
	}
	return accs, nil
}

func (s *AccountService) GetAccounts(ctx context.Context, ids []int64) ([]core.Account, error) {
	return s.store.GetAccounts(ctx, ids)
}

// CreateAccount validates a against the existing accounts and stores it.
func (s *AccountService) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	existing, err := s.ListAccounts(ctx)
	if err != nil {
		return 0, err
	}
	if err := a.Validate(existing); err != nil {
		return 0, err
	}
	id, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("save account: %w", err)
	}
	s.InvalidateAccounts()
	return id, nil
}

// InvalidateAccounts drops the cached account list.
func (s *AccountService) InvalidateAccounts() {
	if s.cache != nil {
		s.cache.Delete(accountsKey)
	}
}
