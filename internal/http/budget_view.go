package http

import "expensetracker/internal/core"

// accountCheckbox is one account checkbox of the budget form.
type accountCheckbox struct {
	ID       string
	Label    string
	Currency string
	Checked  bool
	Disabled bool
	Muted    bool
}

// accountPanel is the rendered account multi-select. It is the SelectionView
// the currency toggle writes to; the template renders it afterwards.
type accountPanel struct {
	// Open renders the menu expanded; set on change swaps.
	Open           bool
	SelectedLabel  string
	LockedCurrency string
	Options        []accountCheckbox
	index          map[string]int
}

func newAccountPanel(options []core.AccountOption) *accountPanel {
	p := &accountPanel{
		Options: make([]accountCheckbox, len(options)),
		index:   make(map[string]int, len(options)),
	}
	for i, o := range options {
		p.Options[i] = accountCheckbox{ID: o.ID, Label: o.Label, Currency: o.Currency, Checked: o.Selected}
		p.index[o.ID] = i
	}
	return p
}

func (p *accountPanel) SetLockedCurrency(currency string) { p.LockedCurrency = currency }

func (p *accountPanel) SetSelectedLabel(label string) { p.SelectedLabel = label }

func (p *accountPanel) SetOptionState(id string, enabled, muted bool) {
	i, ok := p.index[id]
	if !ok {
		return
	}
	p.Options[i].Disabled = !enabled
	p.Options[i].Muted = muted
}

// optionList is the OptionSource of one request: the accounts with the
// checkboxes the browser sent as selected.
type optionList []core.AccountOption

func (l optionList) AccountOptions() []core.AccountOption { return l }

// changeEvent is the ChangeNotifier of one request. An htmx post from the
// account checkboxes is a single change; dispatch runs the handlers once.
type changeEvent struct {
	handlers []func()
}

func (e *changeEvent) OnChange(handler func()) {
	e.handlers = append(e.handlers, handler)
}

func (e *changeEvent) dispatch() {
	for _, h := range e.handlers {
		h()
	}
}

var (
	_ core.SelectionView  = (*accountPanel)(nil)
	_ core.OptionSource   = optionList(nil)
	_ core.ChangeNotifier = (*changeEvent)(nil)
)
