package http

import (
	"net/http"
	"slices"
	"strconv"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

// feedbackFields are the account inputs that report blur feedback.
var feedbackFields = []string{"name", "acct_num", "account_type", "currency", "balance"}

type accountFormPage struct {
	pageData
	Types   []core.AccountType
	Balance balanceInput
}

type fieldFeedback struct {
	Field string
	State core.Feedback
}

type balanceInput struct {
	Value string
}

func (s *Server) handleAccountForm(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	s.renderPage(w, r, "account_form", http.StatusOK, accountFormPage{
		pageData: newPageData(r, "New account", "accounts"),
		Types:    core.AccountTypes,
	})
}

// handleAccounts lists accounts on GET and creates one on POST.
func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleListAccounts(w, r)
	case http.MethodPost:
		s.handleCreateAccount(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

type accountListPage struct {
	pageData
	Accounts []core.Account
}

type accountDetailPage struct {
	pageData
	Account core.Account
	Records []recordRow
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.ListAccounts(r.Context())
	if err != nil {
		s.serverError(w, r, "Failed to load accounts", err, applog.ComponentAccount)
		return
	}
	s.renderPage(w, r, "accounts", http.StatusOK, accountListPage{
		pageData: newPageData(r, "Accounts", "accounts"),
		Accounts: accounts,
	})
}

// handleAccountDetail shows one active account and the records booked on it.
func (s *Server) handleAccountDetail(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		NotFoundError("Account not found").Write(w)
		return
	}

	found, err := s.accounts.GetAccounts(r.Context(), []int64{id})
	if err != nil {
		s.serverError(w, r, "Failed to load account", err, applog.ComponentAccount)
		return
	}
	if len(found) == 0 {
		NotFoundError("Account not found").Write(w)
		return
	}
	records, err := s.records.AccountRecords(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "Failed to load records", err, applog.ComponentRecord)
		return
	}
	accounts, err := s.accounts.ListAccounts(r.Context())
	if err != nil {
		s.serverError(w, r, "Failed to load accounts", err, applog.ComponentAccount)
		return
	}

	s.renderPage(w, r, "account_detail", http.StatusOK, accountDetailPage{
		pageData: newPageData(r, found[0].Name, "accounts"),
		Account:  found[0],
		Records:  recordRows(records, accounts),
	})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	f := NewFormReader(r.PostForm)
	a := core.Account{
		Name:     f.String("name"),
		Number:   f.String("acct_num"),
		Type:     core.AccountType(f.String("account_type")),
		Currency: f.String("currency"),
		Balance:  f.Balance("balance"),
	}
	if errs := f.Errors(); errs != nil {
		s.validationFailed(w, r, errs, applog.ComponentAccount)
		return
	}

	id, err := s.accounts.CreateAccount(r.Context(), a)
	if err != nil {
		if !s.validationFailed(w, r, err, applog.ComponentAccount) {
			s.serverError(w, r, "Error saving account", err, applog.ComponentAccount)
		}
		return
	}

	s.appMetrics.accountsCreated.Add(1)
	applog.FromContext(r.Context()).WithComponent(applog.ComponentAccount).InfoContext(r.Context(), "Account created",
		"account_id", id,
		applog.FieldCurrency, a.Currency,
		applog.FieldOperation, applog.OpCreate)

	NewHTMXResponse().
		TriggerAccountCreated(id).
		TriggerFormReset().
		TriggerSuccessNotification("Account " + a.Name + " saved").
		Write(w)
}

// handleAccountField answers the blur and focus checks of one account input.
// Focus always reports valid; blur reports invalid for a blank value.
func (s *Server) handleAccountField(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	field := r.PostForm.Get("field")
	if !slices.Contains(feedbackFields, field) {
		BadRequestError("Unknown field").Write(w)
		return
	}

	state := core.FeedbackValid
	if r.PostForm.Get("event") != "focus" {
		state = core.FieldFeedback(r.PostForm.Get(field))
	}
	s.renderPartial(w, r, "field_feedback", fieldFeedback{Field: field, State: state})
}

// handleAccountBalance reformats the balance input as it is typed.
func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	s.renderPartial(w, r, "balance_input", balanceInput{Value: core.FormatBalanceInput(r.PostForm.Get("balance"))})
}
