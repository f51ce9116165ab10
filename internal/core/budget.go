package core

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// BudgetProgress is a budget's spending against its amount.
type BudgetProgress struct {
	BudgetID int64
	Name     string
	Currency string
	Spent    Money
	Amount   Money
	Percent  decimal.Decimal
}

// Validate checks the budget against the accounts it selects and fills the
// currency from them when it was left empty. accounts must be the accounts
// named by b.AccountIDs.
func (b *Budget) Validate(accounts []Account) error {
	errs := ValidationErrors{}

	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		errs.Add("name", "This field is required.")
	} else if len(b.Name) > 100 {
		errs.Add("name", "Ensure this value has at most 100 characters.")
	}

	if len(b.Categories) == 0 {
		errs.Add("categories", "This field is required.")
	}
	for _, c := range b.Categories {
		if !IsCategory(c) {
			errs.Add("categories", "Select a valid choice. "+c+" is not one of the available choices.")
		}
	}

	if !b.Period.Valid() {
		errs.Add("period", "Select a valid choice.")
	}
	if b.StartDate.IsZero() {
		errs.Add("start_date", "Enter a valid date.")
	}
	if b.EndDate.IsZero() {
		errs.Add("end_date", "Enter a valid date.")
	}
	if !b.StartDate.IsZero() && !b.EndDate.IsZero() && b.EndDate.Before(b.StartDate.Time) {
		errs.Add("end_date", "End date must not be before start date.")
	}
	if err := b.Amount.Validate(); err != nil {
		errs.Add("amount", "Enter a positive amount.")
	}

	if len(b.AccountIDs) == 0 {
		errs.Add("account", "This field is required.")
	}
	if err := b.lockCurrency(accounts); err != nil {
		switch err {
		case ErrMixedCurrencies:
			errs.Add(FieldForm, "All selected accounts must use the same currency.")
		case ErrCurrencyMismatch:
			errs.Add(FieldForm, "Currency must match selected account(s).")
		}
	}

	return errs.Err()
}

// lockCurrency applies the single-currency rule to the selected accounts.
func (b *Budget) lockCurrency(accounts []Account) error {
	if len(accounts) == 0 {
		return nil
	}
	var currencies []string
	for _, a := range accounts {
		if !slices.Contains(currencies, a.Currency) {
			currencies = append(currencies, a.Currency)
		}
	}
	if len(currencies) > 1 {
		return ErrMixedCurrencies
	}
	b.Currency = strings.ToUpper(strings.TrimSpace(b.Currency))
	if b.Currency == "" {
		b.Currency = currencies[0]
		return nil
	}
	if b.Currency != currencies[0] {
		return ErrCurrencyMismatch
	}
	return nil
}

// Covers reports whether an expense record counts against the budget.
func (b Budget) Covers(r Record) bool {
	return r.Type == Expense &&
		slices.Contains(b.AccountIDs, r.AccountID) &&
		slices.Contains(b.Categories, r.Category) &&
		r.Date.Between(b.StartDate, b.EndDate)
}

// Progress sums the covered records and expresses them as a percentage of the
// budget amount. The percentage is zero when the amount is not positive.
func (b Budget) Progress(records []Record) BudgetProgress {
	p := BudgetProgress{
		BudgetID: b.ID,
		Name:     b.Name,
		Currency: b.Currency,
		Amount:   b.Amount,
		Percent:  decimal.Zero,
	}
	for _, r := range records {
		if b.Covers(r) {
			p.Spent.Cents += r.Amount.Cents
		}
	}
	if b.Amount.Cents > 0 {
		p.Percent = p.Spent.Decimal().Div(b.Amount.Decimal()).Mul(hundred).Round(2)
	}
	return p
}

// UniqueIDs drops repeated IDs, keeping the first occurrence of each.
func UniqueIDs(ids []int64) []int64 {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
