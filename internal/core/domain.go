package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	Income   RecordType = "income"
	Expense  RecordType = "expense"
	Transfer RecordType = "transfer"
)

const (
	Week    Period = "Week"
	Month   Period = "Month"
	Year    Period = "Year"
	OneTime Period = "One-Time"
)

type (
	RecordType  string
	Period      string
	AccountType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Account struct {
		ID       int64
		Name     string
		Number   string // optional account number
		Balance  Money
		Type     AccountType
		Currency string // ISO 4217
		Active   bool
	}

	Record struct {
		ID            int64
		Type          RecordType
		Category      string
		AccountID     int64 // income and expense only
		FromAccountID int64 // transfer only
		ToAccountID   int64 // transfer only
		Amount        Money
		Note          string
		Date          Date
		Time          string // HH:MM
	}

	Budget struct {
		ID         int64
		Name       string
		Categories []string
		Period     Period
		StartDate  Date
		EndDate    Date
		Amount     Money
		Currency   string
		AccountIDs []int64
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyName         = errors.New("empty name")
	ErrInvalidCurrency   = errors.New("invalid currency code")
	ErrInvalidRecordType = errors.New("invalid record type")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrMixedCurrencies   = errors.New("selected accounts use different currencies")
	ErrCurrencyMismatch  = errors.New("currency does not match selected accounts")
)

// Periods lists the budget periods in display order.
var Periods = []Period{Week, Month, Year, OneTime}

// RecordTypes lists the record types in display order.
var RecordTypes = []RecordType{Income, Expense, Transfer}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD form value.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// Between reports whether d falls inside [from, to], both ends included.
func (d Date) Between(from, to Date) bool {
	return !d.Before(from.Time) && !d.After(to.Time)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p Period) Valid() bool {
	return slices.Contains(Periods, p)
}

func (t RecordType) Valid() bool {
	return slices.Contains(RecordTypes, t)
}

// Label renders the account the way option labels show it: "Name (CUR balance)".
func (a Account) Label() string {
	return fmt.Sprintf("%s (%s %s)", a.Name, a.Currency, FormatCents(a.Balance.Cents))
}
