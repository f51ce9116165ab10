package http

import (
	"net/http"
	"time"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

type categoryChoice struct {
	Name    string
	Checked bool
}

type budgetFormPage struct {
	pageData
	Accounts   *accountPanel
	Categories []categoryChoice
	Badge      core.Badge
	Periods    []core.Period
	Today      string
}

type budgetListPage struct {
	pageData
	Budgets []core.BudgetProgress
}

func categoryChoices(selected map[string]bool) []categoryChoice {
	out := make([]categoryChoice, len(core.Categories))
	for i, c := range core.Categories {
		out[i] = categoryChoice{Name: c, Checked: selected[c]}
	}
	return out
}

// accountSelection runs the currency toggle over the active accounts with the
// given checkboxes selected. A change request dispatches through the change
// notifier; a first render calls Init.
func (s *Server) accountSelection(r *http.Request, selected map[string]bool, change bool) (*accountPanel, error) {
	accounts, err := s.accounts.ListAccounts(r.Context())
	if err != nil {
		return nil, err
	}

	options := core.OptionsFromAccounts(accounts, selected)
	panel := newAccountPanel(options)

	if !change {
		core.NewAccountCurrencyToggle(optionList(options), panel, nil).Init()
		return panel, nil
	}
	event := &changeEvent{}
	core.NewAccountCurrencyToggle(optionList(options), panel, event)
	event.dispatch()
	panel.Open = true
	return panel, nil
}

// handleBudgetForm renders the budget form. Accounts named by ?account= are
// pre-selected.
func (s *Server) handleBudgetForm(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	q := NewFormReader(r.URL.Query())
	panel, err := s.accountSelection(r, q.Selected("account"), false)
	if err != nil {
		s.serverError(w, r, "Failed to load accounts", err, applog.ComponentAccount)
		return
	}

	categories := q.Selected("categories")
	s.renderPage(w, r, "budget_form", http.StatusOK, budgetFormPage{
		pageData:   newPageData(r, "New budget", "budgets"),
		Accounts:   panel,
		Categories: categoryChoices(categories),
		Badge:      core.CountBadge(len(categories)),
		Periods:    core.Periods,
		Today:      time.Now().Format(time.DateOnly),
	})
}

// handleBudgetAccounts re-renders the account checkboxes after a change.
func (s *Server) handleBudgetAccounts(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	panel, err := s.accountSelection(r, NewFormReader(r.PostForm).Selected("account"), true)
	if err != nil {
		s.serverError(w, r, "Failed to load accounts", err, applog.ComponentAccount)
		return
	}
	s.renderPartial(w, r, "budget_accounts", panel)
}

func (s *Server) handleCategoryBadge(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	n := len(NewFormReader(r.PostForm).Selected("categories"))
	s.renderPartial(w, r, "category_badge", core.CountBadge(n))
}

// handleBudgets lists budgets on GET and creates one on POST.
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleListBudgets(w, r)
	case http.MethodPost:
		s.handleCreateBudget(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	progress, err := s.budgets.ListProgress(r.Context())
	if err != nil {
		s.events.LogError(r.Context(), "Failed to list budgets", err, applog.ComponentBudget, applog.OpList, nil)
		InternalServerError("Failed to load budgets").Write(w)
		return
	}
	s.renderPage(w, r, "budgets", http.StatusOK, budgetListPage{
		pageData: newPageData(r, "Budgets", "budgets"),
		Budgets:  progress,
	})
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	f := NewFormReader(r.PostForm)
	b := core.Budget{
		Name:       f.String("name"),
		Categories: f.Strings("categories"),
		Period:     core.Period(f.String("period")),
		StartDate:  f.Date("start_date"),
		EndDate:    f.Date("end_date"),
		Amount:     f.Amount("amount"),
		Currency:   f.String("currency"),
		AccountIDs: f.IDs("account"),
	}
	if errs := f.Errors(); errs != nil {
		s.validationFailed(w, r, errs, applog.ComponentBudget)
		return
	}

	id, err := s.budgets.CreateBudget(r.Context(), b)
	if err != nil {
		if !s.validationFailed(w, r, err, applog.ComponentBudget) {
			s.serverError(w, r, "Error saving budget", err, applog.ComponentBudget)
		}
		return
	}

	s.appMetrics.budgetsCreated.Add(1)
	s.events.LogBudgetSaved(r.Context(), id, b.Name, b.Currency, len(b.AccountIDs))

	if !isHTMX(r) {
		http.Redirect(w, r, "/budgets", http.StatusSeeOther)
		return
	}
	NewHTMXResponse().
		TriggerBudgetCreated(id).
		TriggerSuccessNotification("Budget " + b.Name + " saved").
		Redirect("/budgets").
		Write(w)
}
