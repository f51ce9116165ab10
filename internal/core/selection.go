package core

import "strings"

// NoneSelected is the label shown when no account is selected.
const NoneSelected = "None selected"

type (
	// AccountOption is one account checkbox as rendered on the budget form.
	AccountOption struct {
		ID       string
		Label    string // display label, may carry a " (...)" annotation
		Currency string
		Selected bool
		Disabled bool
	}

	// OptionState is the render state of one option after a recompute.
	OptionState struct {
		AccountOption
		Enabled bool
		Muted   bool
	}

	// SelectionState is the outcome of Recompute.
	SelectionState struct {
		SelectedLabel  string
		LockedCurrency string
		Eligibility    map[string]bool
		Options        []OptionState // same order as the input
	}
)

// Recompute derives the locked currency, the selected label and each option's
// eligibility from the options' selected flags. Previous Disabled flags are
// ignored: an option that becomes eligible again is re-enabled.
//
// The locked currency is the currency of the first selected option in list
// order, so no two selected options may end up with differing currencies once
// the ineligible ones are disabled.
func Recompute(options []AccountOption) SelectionState {
	st := SelectionState{
		Eligibility: make(map[string]bool, len(options)),
		Options:     make([]OptionState, 0, len(options)),
	}

	var names []string
	for _, o := range options {
		if !o.Selected {
			continue
		}
		if len(names) == 0 {
			st.LockedCurrency = o.Currency
		}
		names = append(names, DisplayName(o.Label))
	}

	st.SelectedLabel = strings.Join(names, ", ")
	if st.SelectedLabel == "" {
		st.SelectedLabel = NoneSelected
	}

	for _, o := range options {
		eligible := len(names) == 0 || o.Selected || o.Currency == st.LockedCurrency
		st.Eligibility[o.ID] = eligible
		o.Disabled = !eligible
		st.Options = append(st.Options, OptionState{
			AccountOption: o,
			Enabled:       eligible,
			Muted:         !eligible,
		})
	}
	return st
}

// DisplayName strips any parenthetical suffix from an option label:
// "Wallet (USD 10.00)" becomes "Wallet".
func DisplayName(label string) string {
	label = strings.TrimSpace(label)
	if i := strings.Index(label, " ("); i >= 0 {
		return label[:i]
	}
	return label
}

// OptionsFromAccounts builds the option list for accounts, marking the
// selected IDs. Order follows accounts.
func OptionsFromAccounts(accounts []Account, selected map[string]bool) []AccountOption {
	out := make([]AccountOption, 0, len(accounts))
	for _, a := range accounts {
		id := AccountKey(a.ID)
		out = append(out, AccountOption{
			ID:       id,
			Label:    a.Label(),
			Currency: a.Currency,
			Selected: selected[id],
		})
	}
	return out
}

type (
	// OptionSource yields the current option list, selected flags included.
	OptionSource interface {
		AccountOptions() []AccountOption
	}

	// SelectionView receives the side effects of a recompute.
	SelectionView interface {
		SetLockedCurrency(currency string)
		SetSelectedLabel(label string)
		SetOptionState(id string, enabled, muted bool)
	}

	// ChangeNotifier calls the registered handler on every selection change.
	ChangeNotifier interface {
		OnChange(handler func())
	}
)

// AccountCurrencyToggle keeps a set of account options consistent with a
// single locked currency.
type AccountCurrencyToggle struct {
	source OptionSource
	view   SelectionView
}

// NewAccountCurrencyToggle binds source and view. When notifier is non-nil
// HandleChange is registered on it.
func NewAccountCurrencyToggle(source OptionSource, view SelectionView, notifier ChangeNotifier) *AccountCurrencyToggle {
	t := &AccountCurrencyToggle{source: source, view: view}
	if notifier != nil {
		notifier.OnChange(func() { t.HandleChange() })
	}
	return t
}

// Init reflects the initial (server-selected) state onto the view.
func (t *AccountCurrencyToggle) Init() SelectionState {
	return t.HandleChange()
}

// HandleChange recomputes from the source and writes every result to the view.
func (t *AccountCurrencyToggle) HandleChange() SelectionState {
	st := Recompute(t.source.AccountOptions())
	t.view.SetSelectedLabel(st.SelectedLabel)
	t.view.SetLockedCurrency(st.LockedCurrency)
	for _, o := range st.Options {
		t.view.SetOptionState(o.ID, o.Enabled, o.Muted)
	}
	return st
}
