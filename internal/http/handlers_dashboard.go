package http

import (
	"bytes"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

// render executes a named template into a buffer first so a template error
// never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

type indexPage struct {
	UserID    string
	Today     string
	Dashboard report.Dashboard
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	d, err := s.dashboards.Dashboard(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := "dashboard.html"
	if isHTMX(r) {
		name = "dashboard_body"
	}
	s.render(w, r, name, indexPage{UserID: sess.UserID, Today: s.today().String(), Dashboard: d})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboards.Dashboard(r.Context(), session(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleCategoryReport serves the category breakdown for ?type=expense
// (the default) or ?type=income.
func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	typ := core.TransactionType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
	if typ == "" {
		typ = core.Expense
	}
	if !typ.Valid() {
		s.writeError(w, r, &core.ValidationError{Field: "type", Err: core.ErrInvalidType})
		return
	}

	d, err := s.dashboards.Dashboard(r.Context(), session(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	shares := d.ExpenseCategories
	if typ == core.Income {
		shares = d.IncomeCategories
	}
	if shares == nil {
		shares = []report.CategoryShare{}
	}
	writeJSON(w, http.StatusOK, shares)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboards.Dashboard(r.Context(), session(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	monthly := d.Monthly
	if monthly == nil {
		monthly = []report.MonthTotals{}
	}
	writeJSON(w, http.StatusOK, monthly)
}
