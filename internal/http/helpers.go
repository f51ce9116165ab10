package http

import (
	"net/http"
	"net/url"
	"strings"

	"expensetracker/internal/core"
)

const themeCookie = "theme"

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// formatMoney renders cents with its currency code ("USD 12.30").
func formatMoney(cents int64, currency string) string {
	if currency == "" {
		return core.FormatCents(cents)
	}
	return currency + " " + core.FormatCents(cents)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func themeFromRequest(r *http.Request) string {
	c, err := r.Cookie(themeCookie)
	if err != nil {
		return core.ThemeLight
	}
	return core.ThemeOrDefault(c.Value)
}

// pageData is what the layout needs on every full page.
type pageData struct {
	Title    string
	Theme    string
	Nav      []core.NavItem
	BackHref string
	HasBack  bool
}

func newPageData(r *http.Request, title, section string) pageData {
	href, ok := core.BackTarget(r.Referer())
	return pageData{
		Title:    title,
		Theme:    themeFromRequest(r),
		Nav:      core.Nav(section),
		BackHref: href,
		HasBack:  ok,
	}
}

// localReferer returns the referer's path when it points at this host, "/"
// otherwise.
func localReferer(r *http.Request) string {
	href, ok := core.BackTarget(r.Referer())
	if !ok {
		return "/"
	}
	u, err := url.Parse(href)
	if err != nil || (u.Host != "" && u.Host != r.Host) || u.Path == "" {
		return "/"
	}
	return u.RequestURI()
}
