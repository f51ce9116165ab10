// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// The form readers turn htmx form posts into domain values.

package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
)

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireGET is a convenience function for GET-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

// FormReader reads sanitized values out of a parsed form and collects the
// field errors of values that fail to parse.
type FormReader struct {
	form url.Values
	errs core.ValidationErrors
}

func NewFormReader(form url.Values) *FormReader {
	return &FormReader{form: form, errs: core.ValidationErrors{}}
}

// String returns the trimmed, sanitized value of key.
func (f *FormReader) String(key string) string {
	return sanitizeInput(f.form.Get(key))
}

// Strings returns every non-blank value of a multi-valued key.
func (f *FormReader) Strings(key string) []string {
	var out []string
	for _, v := range f.form[key] {
		if v = sanitizeInput(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ID parses an optional account ID. Blank yields 0.
func (f *FormReader) ID(key string) int64 {
	v := f.String(key)
	if v == "" {
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		f.errs.Add(key, "Select a valid choice.")
		return 0
	}
	return id
}

// IDs parses every value of key as an account ID. Repeats are dropped.
func (f *FormReader) IDs(key string) []int64 {
	var ids []int64
	for _, v := range f.Strings(key) {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			f.errs.Add(key, "Select a valid choice. "+v+" is not one of the available choices.")
			continue
		}
		ids = append(ids, id)
	}
	return core.UniqueIDs(ids)
}

// Selected returns the values of key as a set.
func (f *FormReader) Selected(key string) map[string]bool {
	out := make(map[string]bool)
	for _, v := range f.Strings(key) {
		out[v] = true
	}
	return out
}

// Date parses a YYYY-MM-DD value. Blank yields the zero date, which domain
// validation reports.
func (f *FormReader) Date(key string) core.Date {
	v := f.String(key)
	if v == "" {
		return core.Date{}
	}
	d, err := core.ParseDate(v)
	if err != nil {
		f.errs.Add(key, "Enter a valid date.")
	}
	return d
}

// Clock parses an optional HH:MM time. Seconds are dropped; blank yields "".
func (f *FormReader) Clock(key string) string {
	v := f.String(key)
	if v == "" {
		return ""
	}
	for _, layout := range []string{core.ClockLayout, time.TimeOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(core.ClockLayout)
		}
	}
	f.errs.Add(key, "Enter a valid time.")
	return ""
}

// Amount parses a positive decimal amount. Blank yields zero.
func (f *FormReader) Amount(key string) core.Money {
	v := f.String(key)
	if v == "" {
		return core.Money{}
	}
	cents, err := core.ParseDecimalToCents(v)
	if err != nil {
		f.errs.Add(key, "Enter a positive amount.")
	}
	return core.Money{Cents: cents}
}

// Balance parses a signed balance that may carry "$" and "," grouping.
func (f *FormReader) Balance(key string) core.Money {
	cents, err := core.ParseBalanceToCents(f.String(key))
	if err != nil {
		f.errs.Add(key, "Ensure that there are no more than 12 digits in total.")
	}
	return core.Money{Cents: cents}
}

// Errors returns the parse errors collected so far, or nil.
func (f *FormReader) Errors() core.ValidationErrors {
	if len(f.errs) == 0 {
		return nil
	}
	return f.errs
}
