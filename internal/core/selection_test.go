package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeScenarios(t *testing.T) {
	t.Run("first selection locks currency", func(t *testing.T) {
		st := Recompute([]AccountOption{
			{ID: "A", Label: "A", Currency: "USD", Selected: true},
			{ID: "B", Label: "B", Currency: "EUR"},
			{ID: "C", Label: "C", Currency: "USD"},
		})
		assert.Equal(t, "USD", st.LockedCurrency)
		assert.Equal(t, "A", st.SelectedLabel)
		assert.Equal(t, map[string]bool{"A": true, "B": false, "C": true}, st.Eligibility)

		require.Len(t, st.Options, 3)
		assert.False(t, st.Options[1].Enabled)
		assert.True(t, st.Options[1].Muted)
		assert.True(t, st.Options[1].Disabled)
		assert.True(t, st.Options[2].Enabled)
		assert.False(t, st.Options[2].Muted)
	})

	t.Run("deselecting last option unlocks everything", func(t *testing.T) {
		st := Recompute([]AccountOption{
			{ID: "A", Label: "A", Currency: "USD"},
			{ID: "B", Label: "B", Currency: "EUR", Disabled: true},
			{ID: "C", Label: "C", Currency: "USD"},
		})
		assert.Empty(t, st.LockedCurrency)
		assert.Equal(t, NoneSelected, st.SelectedLabel)
		for _, o := range st.Options {
			assert.True(t, o.Enabled, "option %s", o.ID)
			assert.False(t, o.Muted, "option %s", o.ID)
			assert.False(t, o.Disabled, "option %s", o.ID)
		}
	})
}

func TestRecomputeFirstSelectedWins(t *testing.T) {
	// A server-rendered state can carry two currencies; document order decides.
	st := Recompute([]AccountOption{
		{ID: "1", Label: "Euro (EUR 5.00)", Currency: "EUR"},
		{ID: "2", Label: "Dollar (USD 1.00)", Currency: "USD", Selected: true},
		{ID: "3", Label: "Other euro (EUR 2.00)", Currency: "EUR", Selected: true},
		{ID: "4", Label: "Cash (USD 0.00)", Currency: "USD"},
	})
	assert.Equal(t, "USD", st.LockedCurrency)
	assert.Equal(t, "Dollar, Other euro", st.SelectedLabel)
	assert.False(t, st.Eligibility["1"])
	assert.True(t, st.Eligibility["2"])
	assert.True(t, st.Eligibility["3"], "selected options stay eligible")
	assert.True(t, st.Eligibility["4"])
}

func TestRecomputeProperties(t *testing.T) {
	currencies := []string{"USD", "EUR", "GBP"}
	// Every selection subset of a 6-option list.
	for mask := 0; mask < 1<<6; mask++ {
		opts := make([]AccountOption, 6)
		for i := range opts {
			opts[i] = AccountOption{
				ID:       AccountKey(int64(i)),
				Label:    "acct " + AccountKey(int64(i)),
				Currency: currencies[i%len(currencies)],
				Selected: mask&(1<<i) != 0,
			}
		}

		st := Recompute(opts)

		var first *AccountOption
		for i := range opts {
			if opts[i].Selected {
				first = &opts[i]
				break
			}
		}
		if first == nil {
			assert.Empty(t, st.LockedCurrency)
		} else {
			assert.Equal(t, first.Currency, st.LockedCurrency)
		}

		for _, o := range opts {
			switch {
			case first == nil, o.Selected:
				assert.True(t, st.Eligibility[o.ID])
			default:
				assert.Equal(t, o.Currency == st.LockedCurrency, st.Eligibility[o.ID])
			}
		}

		again := Recompute(opts)
		assert.Equal(t, st, again, "recompute must be idempotent (mask %b)", mask)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Wallet (USD 10.00)", "Wallet"},
		{"  Savings  ", "Savings"},
		{"Joint (main) (EUR 1.00)", "Joint"},
		{"NoSpace(x)", "NoSpace(x)"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayName(tt.in), tt.in)
	}
}

type fakeSource []AccountOption

func (f fakeSource) AccountOptions() []AccountOption { return f }

type recordingView struct {
	currency string
	label    string
	enabled  map[string]bool
	muted    map[string]bool
}

func newRecordingView() *recordingView {
	return &recordingView{enabled: map[string]bool{}, muted: map[string]bool{}}
}

func (v *recordingView) SetLockedCurrency(c string) { v.currency = c }
func (v *recordingView) SetSelectedLabel(l string)  { v.label = l }
func (v *recordingView) SetOptionState(id string, enabled, muted bool) {
	v.enabled[id] = enabled
	v.muted[id] = muted
}

type manualNotifier struct{ handlers []func() }

func (n *manualNotifier) OnChange(h func()) { n.handlers = append(n.handlers, h) }
func (n *manualNotifier) fire() {
	for _, h := range n.handlers {
		h()
	}
}

func TestAccountCurrencyToggle(t *testing.T) {
	src := fakeSource{
		{ID: "A", Label: "A (USD 1.00)", Currency: "USD", Selected: true},
		{ID: "B", Label: "B (EUR 1.00)", Currency: "EUR"},
	}
	view := newRecordingView()
	notifier := &manualNotifier{}

	toggle := NewAccountCurrencyToggle(src, view, notifier)
	require.Len(t, notifier.handlers, 1)

	toggle.Init()
	assert.Equal(t, "USD", view.currency)
	assert.Equal(t, "A", view.label)
	assert.False(t, view.enabled["B"])
	assert.True(t, view.muted["B"])

	src[0].Selected = false
	notifier.fire()
	assert.Empty(t, view.currency)
	assert.Equal(t, NoneSelected, view.label)
	assert.True(t, view.enabled["B"], "B must be re-enabled once eligible")
	assert.False(t, view.muted["B"])
}

func TestOptionsFromAccounts(t *testing.T) {
	accounts := []Account{
		{ID: 1, Name: "Main", Currency: "USD", Balance: Money{Cents: 1050}},
		{ID: 2, Name: "Euro", Currency: "EUR"},
	}
	opts := OptionsFromAccounts(accounts, map[string]bool{"2": true})
	require.Len(t, opts, 2)
	assert.Equal(t, AccountOption{ID: "1", Label: "Main (USD 10.50)", Currency: "USD"}, opts[0])
	assert.True(t, opts[1].Selected)
}
