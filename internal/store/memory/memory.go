package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

var (
	_ store.AccountReader = (*Store)(nil)
	_ store.AccountWriter = (*Store)(nil)
	_ store.RecordReader  = (*Store)(nil)
	_ store.RecordWriter  = (*Store)(nil)
	_ store.RecordLister  = (*Store)(nil)
	_ store.BudgetReader  = (*Store)(nil)
	_ store.BudgetWriter  = (*Store)(nil)
	_ store.GoalStore     = (*Store)(nil)
)

// Store keeps everything in process memory. IDs are synthetic and start at 1.
type Store struct {
	mu       sync.Mutex
	accounts []core.Account
	records  []core.Record
	budgets  []core.Budget
	goals    []core.Goal
}

func New(accounts ...core.Account) *Store {
	s := &Store{}
	for _, a := range accounts {
		a.ID = int64(len(s.accounts) + 1)
		a.Active = true
		s.accounts = append(s.accounts, a)
	}
	return s
}

// NewFromFiles seeds accounts from base/seed_accounts.txt. Each line is
// "name|type|currency|balance"; blanks and # comments are skipped.
func NewFromFiles(base string) *Store {
	var seed []core.Account
	for _, line := range readLines(filepath.Join(base, "seed_accounts.txt")) {
		a, err := parseSeedLine(line)
		if err != nil {
			continue
		}
		seed = append(seed, a)
	}
	if len(seed) == 0 {
		seed = []core.Account{
			{Name: "Wallet", Type: "Cash", Currency: "USD"},
			{Name: "Checking", Type: "Current", Currency: "USD"},
			{Name: "Euro Savings", Type: "Saving account", Currency: "EUR"},
		}
	}
	return New(dedupeByName(seed)...)
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) GetAccounts(_ context.Context, ids []int64) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.account(id); ok && a.Active {
			out = append(out, *a)
		}
	}
	return out, nil
}

// account returns the stored account with id. Callers hold mu.
func (s *Store) account(id int64) (*core.Account, bool) {
	if id <= 0 || int(id) > len(s.accounts) {
		return nil, false
	}
	return &s.accounts[id-1], true
}

func (s *Store) AdjustBalance(_ context.Context, id, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.account(id)
	if !ok {
		return fmt.Errorf("account %d: %w", id, store.ErrNotFound)
	}
	a.Balance.Cents += delta
	return nil
}

// CreateAccount stores the account and returns its synthetic ID.
func (s *Store) CreateAccount(_ context.Context, a core.Account) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.accounts {
		if strings.EqualFold(other.Name, a.Name) {
			return 0, fmt.Errorf("account %q already exists", a.Name)
		}
	}
	a.ID = int64(len(s.accounts) + 1)
	a.Active = true
	s.accounts = append(s.accounts, a)
	return a.ID, nil
}

// CreateRecord stores r and applies its balance changes. Nothing is written
// when one of the accounts is missing.
func (s *Store) CreateRecord(_ context.Context, r core.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changes := r.BalanceChanges()
	for id := range changes {
		if _, ok := s.account(id); !ok {
			return 0, fmt.Errorf("account %d: %w", id, store.ErrNotFound)
		}
	}
	for id, delta := range changes {
		a, _ := s.account(id)
		a.Balance.Cents += delta
	}
	r.ID = int64(len(s.records) + 1)
	s.records = append(s.records, r)
	return r.ID, nil
}

func (s *Store) LatestRecords(_ context.Context, limit int) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.records)
	slices.SortFunc(out, func(a, b core.Record) int {
		switch {
		case a.NewerThan(b):
			return -1
		case b.NewerThan(a):
			return 1
		}
		return 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListRecords(_ context.Context, from, to core.Date) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Record
	for _, r := range s.records {
		if r.Date.Between(from, to) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = int64(len(s.budgets) + 1)
	b.Categories = append([]string(nil), b.Categories...)
	b.AccountIDs = append([]int64(nil), b.AccountIDs...)
	s.budgets = append(s.budgets, b)
	return b.ID, nil
}

// ListBudgets returns the newest budget first.
func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0, len(s.budgets))
	for i := len(s.budgets) - 1; i >= 0; i-- {
		out = append(out, s.budgets[i])
	}
	return out, nil
}

func (s *Store) GetBudget(_ context.Context, id int64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id <= 0 || int(id) > len(s.budgets) {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, store.ErrNotFound)
	}
	return s.budgets[id-1], nil
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = int64(len(s.goals) + 1)
	s.goals = append(s.goals, g)
	return g.ID, nil
}

// ListGoals returns goals by target date, ties in creation order.
func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.goals)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TargetDate.Before(out[j].TargetDate.Time) })
	return out, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func parseSeedLine(line string) (core.Account, error) {
	parts := strings.Split(line, "|")
	if len(parts) < 3 {
		return core.Account{}, fmt.Errorf("seed line %q: want name|type|currency[|balance]", line)
	}
	a := core.Account{
		Name:     strings.TrimSpace(parts[0]),
		Type:     core.AccountType(strings.TrimSpace(parts[1])),
		Currency: strings.TrimSpace(parts[2]),
	}
	if len(parts) > 3 {
		cents, err := core.ParseBalanceToCents(parts[3])
		if err != nil {
			return core.Account{}, err
		}
		a.Balance = core.Money{Cents: cents}
	}
	if err := a.Validate(nil); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func dedupeByName(in []core.Account) []core.Account {
	seen := map[string]struct{}{}
	out := make([]core.Account, 0, len(in))
	for _, a := range in {
		key := strings.ToLower(a.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
