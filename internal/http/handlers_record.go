package http

import (
	"net/http"
	"strconv"
	"time"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

type recordFormPage struct {
	pageData
	Types      []core.RecordType
	Categories []string
	Fields     recordAccountFields
	Today      string
}

// recordAccountFields is the account part of the record form. Only the
// inputs that apply to Type are visible.
type recordAccountFields struct {
	core.RecordFields
	Type          core.RecordType
	Accounts      []core.Account
	AccountID     int64
	FromAccountID int64
	ToAccountID   int64
}

func (s *Server) recordFields(r *http.Request, t core.RecordType, f *FormReader) (recordAccountFields, error) {
	accounts, err := s.accounts.ListAccounts(r.Context())
	if err != nil {
		return recordAccountFields{}, err
	}
	fields := recordAccountFields{
		RecordFields: core.FieldsFor(t),
		Type:         t,
		Accounts:     accounts,
	}
	if f != nil {
		fields.AccountID = f.ID("account")
		fields.FromAccountID = f.ID("from_account")
		fields.ToAccountID = f.ID("to_account")
	}
	return fields, nil
}

func (s *Server) handleRecordForm(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	fields, err := s.recordFields(r, core.Expense, nil)
	if err != nil {
		s.serverError(w, r, "Failed to load accounts", err, applog.ComponentAccount)
		return
	}
	s.renderPage(w, r, "record_form", http.StatusOK, recordFormPage{
		pageData:   newPageData(r, "New record", "records"),
		Types:      core.RecordTypes,
		Categories: core.Categories,
		Fields:     fields,
		Today:      time.Now().Format(time.DateOnly),
	})
}

// handleRecordFields re-renders the account inputs when the record type changes.
func (s *Server) handleRecordFields(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	f := NewFormReader(r.PostForm)
	fields, err := s.recordFields(r, core.RecordType(f.String("record_type")), f)
	if err != nil {
		s.serverError(w, r, "Failed to load accounts", err, applog.ComponentAccount)
		return
	}
	s.renderPartial(w, r, "record_account_fields", fields)
}

// handleRecords lists records on GET and creates one on POST.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleListRecords(w, r)
	case http.MethodPost:
		s.handleCreateRecord(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

type recordListPage struct {
	pageData
	Records []recordRow
}

// recordRow is a record with the names of the accounts it books on.
type recordRow struct {
	core.Record
	Accounts string
	Currency string
}

func recordRows(records []core.Record, accounts []core.Account) []recordRow {
	byID := make(map[int64]core.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	name := func(id int64) string {
		if a, ok := byID[id]; ok {
			return a.Name
		}
		return "#" + strconv.FormatInt(id, 10)
	}

	rows := make([]recordRow, len(records))
	for i, rec := range records {
		row := recordRow{Record: rec}
		if rec.Type == core.Transfer {
			row.Accounts = name(rec.FromAccountID) + " → " + name(rec.ToAccountID)
			row.Currency = byID[rec.FromAccountID].Currency
		} else {
			row.Accounts = name(rec.AccountID)
			row.Currency = byID[rec.AccountID].Currency
		}
		rows[i] = row
	}
	return rows
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.LatestRecords(r.Context(), 0)
	if err != nil {
		s.serverError(w, r, "Failed to load records", err, applog.ComponentRecord)
		return
	}
	accounts, err := s.accounts.ListAccounts(r.Context())
	if err != nil {
		s.serverError(w, r, "Failed to load accounts", err, applog.ComponentAccount)
		return
	}
	s.renderPage(w, r, "records", http.StatusOK, recordListPage{
		pageData: newPageData(r, "Records", "records"),
		Records:  recordRows(records, accounts),
	})
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	f := NewFormReader(r.PostForm)
	rec := core.Record{
		Type:          core.RecordType(f.String("record_type")),
		Category:      f.String("category"),
		AccountID:     f.ID("account"),
		FromAccountID: f.ID("from_account"),
		ToAccountID:   f.ID("to_account"),
		Amount:        f.Amount("amount"),
		Note:          f.String("note"),
		Date:          f.Date("date"),
		Time:          f.Clock("time"),
	}
	if errs := f.Errors(); errs != nil {
		s.validationFailed(w, r, errs, applog.ComponentRecord)
		return
	}

	id, err := s.records.CreateRecord(r.Context(), rec)
	if err != nil {
		if !s.validationFailed(w, r, err, applog.ComponentRecord) {
			s.serverError(w, r, "Error saving record", err, applog.ComponentRecord)
		}
		return
	}

	s.appMetrics.recordsCreated.Add(1)
	s.events.LogRecordSaved(r.Context(), id, string(rec.Type), rec.Category, rec.Amount.Cents)

	NewHTMXResponse().
		TriggerRecordCreated(id).
		TriggerFormReset().
		TriggerSuccessNotification("Record saved").
		Write(w)
}
