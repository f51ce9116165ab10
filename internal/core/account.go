package core

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// AccountTypes lists the account kinds offered by the account form.
var AccountTypes = []AccountType{
	"General", "Cash", "Current", "Current account", "Credit card",
	"Saving account", "Investment", "Insurance", "Bonus", "Loan", "Mortgage",
}

const (
	maxAccountName   = 150
	maxAccountNumber = 50
)

// Feedback is the visual state of a form field after blur or focus.
type Feedback string

const (
	FeedbackValid   Feedback = "valid"
	FeedbackInvalid Feedback = "invalid"
)

// AccountKey is the option ID used for an account on forms.
func AccountKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// FieldFeedback is the blur check: a blank value is invalid.
func FieldFeedback(value string) Feedback {
	if strings.TrimSpace(value) == "" {
		return FeedbackInvalid
	}
	return FeedbackValid
}

// FormatBalanceInput reformats a balance as it is typed. Everything but digits
// and dots is dropped, decimals are cut to two places, and the integer part is
// grouped with commas behind a "$" prefix. Text after a second dot is dropped.
func FormatBalanceInput(raw string) string {
	kept := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)
	if kept == "" {
		return ""
	}

	parts := strings.Split(kept, ".")
	frac := ""
	if len(parts) > 1 {
		frac = parts[1]
		if len(frac) > 2 {
			frac = frac[:2]
		}
	}

	out := "$" + groupThousands(parts[0])
	if frac != "" {
		out += "." + frac
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// NormalizeCurrency upper-cases code and checks it is an ISO 4217 currency.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", ErrInvalidCurrency
	}
	return unit.String(), nil
}

func (t AccountType) Valid() bool {
	return slices.Contains(AccountTypes, t)
}

// Validate checks the account fields. existing is used for the
// case-insensitive name uniqueness check; the account itself is skipped by ID.
func (a *Account) Validate(existing []Account) error {
	errs := ValidationErrors{}

	a.Name = strings.TrimSpace(a.Name)
	switch {
	case a.Name == "":
		errs.Add("name", "This field is required.")
	case len(a.Name) > maxAccountName:
		errs.Add("name", "Ensure this value has at most 150 characters.")
	}
	for _, e := range existing {
		if e.ID != a.ID && strings.EqualFold(e.Name, a.Name) {
			errs.Add("name", "You already have an account with this name.")
			break
		}
	}

	a.Number = strings.TrimSpace(a.Number)
	if len(a.Number) > maxAccountNumber {
		errs.Add("acct_num", "Ensure this value has at most 50 characters.")
	}

	if !a.Type.Valid() {
		errs.Add("account_type", "Select a valid choice.")
	}

	cur, err := NormalizeCurrency(a.Currency)
	if err != nil {
		errs.Add("currency", "Select a valid currency.")
	} else {
		a.Currency = cur
	}

	return errs.Err()
}
