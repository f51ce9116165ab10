package http

import (
	"net/http"
	"time"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

type goalFormPage struct {
	pageData
	Names []string
	Other string
	Today string
}

type goalListPage struct {
	pageData
	Goals []goalRow
}

type goalRow struct {
	core.Goal
	Percent string
	Width   string
}

func (s *Server) handleGoalForm(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	s.renderPage(w, r, "goal_form", http.StatusOK, goalFormPage{
		pageData: newPageData(r, "New goal", "goals"),
		Names:    core.GoalNames,
		Other:    core.GoalOther,
		Today:    time.Now().Format(time.DateOnly),
	})
}

// handleGoals lists goals on GET and creates one on POST.
func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleListGoals(w, r)
	case http.MethodPost:
		s.handleCreateGoal(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.ListGoals(r.Context())
	if err != nil {
		s.events.LogError(r.Context(), "Failed to list goals", err, applog.ComponentGoal, applog.OpList, nil)
		InternalServerError("Failed to load goals").Write(w)
		return
	}
	rows := make([]goalRow, len(goals))
	for i, g := range goals {
		p := g.ProgressPercent()
		rows[i] = goalRow{Goal: g, Percent: p.StringFixed(2), Width: barWidth(p)}
	}
	s.renderPage(w, r, "goals", http.StatusOK, goalListPage{
		pageData: newPageData(r, "Goals", "goals"),
		Goals:    rows,
	})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	f := NewFormReader(r.PostForm)
	g := core.Goal{
		Target:     f.Amount("target_amount"),
		Saved:      f.Balance("saved_amount"),
		TargetDate: f.Date("target_date"),
		Note:       f.String("note"),
	}
	if errs := f.Errors(); errs != nil {
		s.validationFailed(w, r, errs, applog.ComponentGoal)
		return
	}

	id, err := s.goals.CreateGoal(r.Context(), g, f.String("goal_name"), f.String("custom_goal_name"))
	if err != nil {
		if !s.validationFailed(w, r, err, applog.ComponentGoal) {
			s.serverError(w, r, "Error saving goal", err, applog.ComponentGoal)
		}
		return
	}

	s.appMetrics.goalsCreated.Add(1)
	s.events.LogGoalSaved(r.Context(), id, f.String("goal_name"), g.Target.Cents)

	if !isHTMX(r) {
		http.Redirect(w, r, "/goals", http.StatusSeeOther)
		return
	}
	NewHTMXResponse().
		TriggerGoalCreated(id).
		TriggerSuccessNotification("Goal saved").
		Redirect("/goals").
		Write(w)
}
