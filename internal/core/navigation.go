package core

import "strings"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// NextTheme flips between dark and light. Any unknown value counts as light.
func NextTheme(current string) string {
	if current == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ThemeOrDefault returns t when it is a known theme, ThemeLight otherwise.
func ThemeOrDefault(t string) string {
	if t == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// BackTarget decides what the close button of a card does. With a referer it
// links back to it; without one the card is hidden instead.
func BackTarget(referer string) (href string, ok bool) {
	referer = strings.TrimSpace(referer)
	if referer == "" {
		return "", false
	}
	return referer, true
}

// NavItem is one sidebar link.
type NavItem struct {
	Section string
	Title   string
	Href    string
	Active  bool
}

var navSections = []NavItem{
	{Section: "budgets", Title: "Budgets", Href: "/budgets"},
	{Section: "accounts", Title: "Accounts", Href: "/accounts"},
	{Section: "records", Title: "Records", Href: "/records"},
	{Section: "goals", Title: "Goals", Href: "/goals"},
}

// Nav returns the sidebar links with active marked.
func Nav(active string) []NavItem {
	out := make([]NavItem, len(navSections))
	copy(out, navSections)
	for i := range out {
		out[i].Active = out[i].Section == active
	}
	return out
}
