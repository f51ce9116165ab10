package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/store"

	_ "modernc.org/sqlite"
)

// Ensure interface conformance
var (
	_ store.AccountReader = (*SQLiteRepository)(nil)
	_ store.AccountWriter = (*SQLiteRepository)(nil)
	_ store.RecordReader  = (*SQLiteRepository)(nil)
	_ store.RecordWriter  = (*SQLiteRepository)(nil)
	_ store.RecordLister  = (*SQLiteRepository)(nil)
	_ store.BudgetReader  = (*SQLiteRepository)(nil)
	_ store.BudgetWriter  = (*SQLiteRepository)(nil)
	_ store.GoalStore     = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const accountColumns = `id, name, acct_num, balance_cents, account_type, currency, is_active`

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var (
		a      core.Account
		typ    string
		active int64
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Number, &a.Balance.Cents, &typ, &a.Currency, &active); err != nil {
		return core.Account{}, err
	}
	a.Type = core.AccountType(typ)
	a.Active = active != 0
	return a, nil
}

// ListAccounts implements store.AccountReader
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAccounts implements store.AccountReader
func (r *SQLiteRepository) GetAccounts(ctx context.Context, ids []int64) ([]core.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE is_active = 1 AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts by id: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]core.Account, len(ids))
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		byID[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]core.Account, 0, len(byID))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// CreateAccount implements store.AccountWriter
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (name, acct_num, balance_cents, account_type, currency, is_active)
		 VALUES (?, ?, ?, ?, ?, 1)`,
		a.Name, a.Number, a.Balance.Cents, string(a.Type), a.Currency)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("account id: %w", err)
	}

	slog.InfoContext(ctx, "Account saved to SQLite",
		"id", id,
		"name", a.Name,
		"currency", a.Currency)
	return id, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func adjustBalance(ctx context.Context, db execer, id, delta int64) error {
	res, err := db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("adjust balance of account %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust balance of account %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// AdjustBalance implements store.AccountWriter
func (r *SQLiteRepository) AdjustBalance(ctx context.Context, id, delta int64) error {
	return adjustBalance(ctx, r.db, id, delta)
}

// CreateRecord implements store.RecordWriter
func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.Record) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO records (record_type, category, account_id, from_account_id, to_account_id, amount_cents, note, date, time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rec.Type), rec.Category,
		nullID(rec.AccountID), nullID(rec.FromAccountID), nullID(rec.ToAccountID),
		rec.Amount.Cents, rec.Note, rec.Date.String(), rec.Time)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record id: %w", err)
	}

	changes := rec.BalanceChanges()
	for _, accID := range slices.Sorted(maps.Keys(changes)) {
		if err := adjustBalance(ctx, tx, accID, changes[accID]); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit record: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", id,
		"type", rec.Type,
		"category", rec.Category,
		"amount_cents", rec.Amount.Cents,
		"accounts", len(changes))
	return id, nil
}

const recordColumns = `id, record_type, category, account_id, from_account_id, to_account_id, amount_cents, note, date, time`

func scanRecords(rows *sql.Rows) ([]core.Record, error) {
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			rec           core.Record
			typ, day      string
			acc, src, dst sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &typ, &rec.Category, &acc, &src, &dst, &rec.Amount.Cents, &rec.Note, &day, &rec.Time); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Type = core.RecordType(typ)
		rec.AccountID, rec.FromAccountID, rec.ToAccountID = acc.Int64, src.Int64, dst.Int64
		var err error
		if rec.Date, err = core.ParseDate(day); err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListRecords implements store.RecordReader
func (r *SQLiteRepository) ListRecords(ctx context.Context, from, to core.Date) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE date BETWEEN ? AND ? ORDER BY date, time, id`,
		from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return scanRecords(rows)
}

// LatestRecords implements store.RecordLister
func (r *SQLiteRepository) LatestRecords(ctx context.Context, limit int) ([]core.Record, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records ORDER BY date DESC, time DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest records: %w", err)
	}
	return scanRecords(rows)
}

// CreateBudget implements store.BudgetWriter
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	cats, err := json.Marshal(b.Categories)
	if err != nil {
		return 0, fmt.Errorf("encode categories: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO budgets (name, categories, period, start_date, end_date, amount_cents, currency)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Name, string(cats), string(b.Period), b.StartDate.String(), b.EndDate.String(), b.Amount.Cents, b.Currency)
	if err != nil {
		return 0, fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("budget id: %w", err)
	}

	for _, accID := range b.AccountIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budget_accounts (budget_id, account_id) VALUES (?, ?)`, id, accID); err != nil {
			return 0, fmt.Errorf("link budget account %d: %w", accID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		"id", id,
		"name", b.Name,
		"currency", b.Currency,
		"accounts", len(b.AccountIDs))
	return id, nil
}

const budgetColumns = `id, name, categories, period, start_date, end_date, amount_cents, currency`

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var (
		b                core.Budget
		cats, period     string
		startDay, endDay string
	)
	if err := row.Scan(&b.ID, &b.Name, &cats, &period, &startDay, &endDay, &b.Amount.Cents, &b.Currency); err != nil {
		return core.Budget{}, err
	}
	b.Period = core.Period(period)
	if err := json.Unmarshal([]byte(cats), &b.Categories); err != nil {
		return core.Budget{}, fmt.Errorf("decode categories of budget %d: %w", b.ID, err)
	}
	var err error
	if b.StartDate, err = core.ParseDate(startDay); err != nil {
		return core.Budget{}, err
	}
	if b.EndDate, err = core.ParseDate(endDay); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (r *SQLiteRepository) budgetAccountIDs(ctx context.Context, budgetID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT account_id FROM budget_accounts WHERE budget_id = ? ORDER BY account_id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("query budget accounts: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListBudgets implements store.BudgetReader
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Linked accounts are read after the cursor is closed.
	for i := range out {
		if out[i].AccountIDs, err = r.budgetAccountIDs(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetBudget implements store.BudgetReader
func (r *SQLiteRepository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	if b.AccountIDs, err = r.budgetAccountIDs(ctx, id); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// CreateGoal implements store.GoalStore
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (name, target_cents, saved_cents, target_date, note) VALUES (?, ?, ?, ?, ?)`,
		g.Name, g.Target.Cents, g.Saved.Cents, g.TargetDate.String(), g.Note)
	if err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("goal id: %w", err)
	}

	slog.InfoContext(ctx, "Goal saved to SQLite",
		"id", id,
		"name", g.Name,
		"target_date", g.TargetDate.String())
	return id, nil
}

// ListGoals implements store.GoalStore
func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_cents, saved_cents, target_date, note FROM goals ORDER BY target_date, id`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var (
			g   core.Goal
			day string
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.Target.Cents, &g.Saved.Cents, &day, &g.Note); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.TargetDate, err = core.ParseDate(day); err != nil {
			return nil, fmt.Errorf("goal %d: %w", g.ID, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
