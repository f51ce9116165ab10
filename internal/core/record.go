package core

import "time"

// ClockLayout is the HH:MM layout of Record.Time.
const ClockLayout = "15:04"

// RecordFields says which account inputs of the record form are shown.
type RecordFields struct {
	Account     bool
	FromAccount bool
	ToAccount   bool
}

// FieldsFor returns the visible account fields for a record type. Transfers
// move money between two accounts; every other type books on one account.
func FieldsFor(t RecordType) RecordFields {
	if t == Transfer {
		return RecordFields{FromAccount: true, ToAccount: true}
	}
	return RecordFields{Account: true}
}

// Validate checks the record and clears the account fields that do not apply
// to its type.
func (r *Record) Validate() error {
	errs := ValidationErrors{}

	if !r.Type.Valid() {
		errs.Add("record_type", "Select a valid choice.")
	}
	if !IsCategory(r.Category) {
		errs.Add("category", "Select a valid choice.")
	}
	if err := r.Amount.Validate(); err != nil {
		errs.Add("amount", "Enter a positive amount.")
	}
	if r.Date.IsZero() {
		errs.Add("date", "Enter a valid date.")
	}

	switch r.Type {
	case Income, Expense:
		if r.AccountID == 0 {
			errs.Add(FieldForm, "Account is required for income or expense records.")
		}
		r.FromAccountID, r.ToAccountID = 0, 0
	case Transfer:
		if r.FromAccountID == 0 || r.ToAccountID == 0 {
			errs.Add(FieldForm, "Both from_account and to_account are required for transfers.")
		}
		r.AccountID = 0
	}

	return errs.Err()
}

// FillDefaults sets a missing date and time from now.
func (r *Record) FillDefaults(now time.Time) {
	if r.Date.IsZero() {
		r.Date = NewDate(now.Year(), int(now.Month()), now.Day())
	}
	if r.Time == "" {
		r.Time = now.Format(ClockLayout)
	}
}

// BalanceChanges returns the change in cents the record makes to each account
// it books on. Expenses debit the account, income credits it, and a transfer
// moves the amount from FromAccountID to ToAccountID.
func (r Record) BalanceChanges() map[int64]int64 {
	out := make(map[int64]int64, 2)
	switch r.Type {
	case Expense:
		if r.AccountID != 0 {
			out[r.AccountID] -= r.Amount.Cents
		}
	case Income:
		if r.AccountID != 0 {
			out[r.AccountID] += r.Amount.Cents
		}
	case Transfer:
		if r.FromAccountID != 0 && r.ToAccountID != 0 {
			out[r.FromAccountID] -= r.Amount.Cents
			out[r.ToAccountID] += r.Amount.Cents
		}
	}
	return out
}

// Touches reports whether the record books on account id.
func (r Record) Touches(id int64) bool {
	return id != 0 && (r.AccountID == id || r.FromAccountID == id || r.ToAccountID == id)
}

// NewerThan orders records by date, then time, then ID, newest first.
func (r Record) NewerThan(o Record) bool {
	if !r.Date.Equal(o.Date.Time) {
		return r.Date.After(o.Date.Time)
	}
	if r.Time != o.Time {
		return r.Time > o.Time
	}
	return r.ID > o.ID
}
