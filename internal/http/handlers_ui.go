package http

import (
	"net/http"
	"time"

	"expensetracker/internal/core"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	http.Redirect(w, r, "/budgets/new", http.StatusFound)
}

// handleTheme flips the theme cookie. htmx callers get a refresh; plain form
// posts are sent back where they came from.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	next := core.NextTheme(themeFromRequest(r))
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if isHTMX(r) {
		NewHTMXResponse().Refresh().Write(w)
		return
	}
	http.Redirect(w, r, localReferer(r), http.StatusSeeOther)
}
