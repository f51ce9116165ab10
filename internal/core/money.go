// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from form input
// and converting between cents and decimal representations.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxDigits mirrors the storage precision: 12 digits, 2 of them decimals.
const maxDigits = 12

var (
	hundred    = decimal.NewFromInt(100)
	maxAmount  = decimal.New(1, maxDigits-2)
	balanceCut = strings.NewReplacer("$", "", ",", "", " ", "")
)

// ParseDecimalToCents converts a positive decimal string to cents with half-up rounding.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// Returns ErrInvalidAmount for invalid formats, signs, zero, or values that
// exceed the stored precision.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
//	ParseDecimalToCents("12.344") -> 1234, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	cents, err := toCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseBalanceToCents parses an account balance, which may be negative and may
// carry the "$" prefix and "," grouping produced by FormatBalanceInput.
func ParseBalanceToCents(s string) (int64, error) {
	s = balanceCut.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	return toCents(s)
}

func toCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	d = d.Round(2)
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return 0, ErrInvalidAmount
	}
	return d.Mul(hundred).IntPart(), nil
}

// FormatCents renders cents as a plain two-decimal string ("-12.30").
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Decimal returns the amount as a decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}
