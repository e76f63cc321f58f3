package http

import (
	"bytes"
	"fmt"
	"net/http"

	"moneytracker/internal/amqp"
	"moneytracker/internal/core"
	"moneytracker/internal/report"
	"moneytracker/internal/services"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.tracker.Dashboard(r.Context())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().JSON(dashboardDTO{
		Period:     d.Period,
		Summary:    toSummaryDTO(d.Summary),
		Categories: toCategoryDTOs(d.Categories),
		Monthly:    toEvaluationDTO(d.Monthly),
		Indicator:  d.Indicator,
	}).Write(w)
}

// handleCalendar renders ?period=YYYY-MM, defaulting to the current month.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriodParam(r, "period", s.tracker.Now())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	cal, err := s.tracker.Calendar(r.Context(), p)
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	days := make([]dayDTO, 0, len(cal.Days))
	for _, d := range cal.Days {
		days = append(days, toDayDTO(d))
	}
	NewResponse().JSON(calendarDTO{
		Period:        cal.Period,
		Prev:          cal.Prev,
		Next:          cal.Next,
		LeadingBlanks: cal.LeadingBlanks,
		Days:          days,
		Summary:       toSummaryDTO(cal.Summary),
	}).Write(w)
}

func (s *Server) handleDayDetails(w http.ResponseWriter, r *http.Request) {
	day, err := parseDateURLParam(r, "date")
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	d, err := s.tracker.DayDetails(r.Context(), day)
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().JSON(dayDetailsDTO{
		Day:      toDayDTO(d.Summary),
		Income:   toIncomeDTOs(d.Income),
		Expenses: toExpenseDTOs(d.Expenses),
	}).Write(w)
}

func (s *Server) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	l, err := s.tracker.Limits(r.Context())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().JSON(toLimitsDTO(l)).Write(w)
}

func (s *Server) handleSaveLimits(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	res, err := s.tracker.SaveLimits(r.Context(), p.Get("daily"), p.Get("monthly"))
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	writeLimitsResult(w, res)
}

func (s *Server) handleCheckLimits(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.CheckCurrentSpending(r.Context())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	writeLimitsResult(w, res)
}

func writeLimitsResult(w http.ResponseWriter, res services.LimitsResult) {
	NewResponse().JSON(limitsResultDTO{
		Limits:     toLimitsDTO(res.Limits),
		Monthly:    toEvaluationDTO(res.Monthly),
		Advisories: advisories(res.Advisories),
	}).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriodURLParam(r, "period")
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	rep, err := s.tracker.Report(r.Context(), p)
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().JSON(toReportDTO(rep)).Write(w)
}

// handleReportCSV downloads the report. An empty month still exports the
// headers and zero totals.
func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriodURLParam(r, "period")
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	rep, err := s.tracker.Report(r.Context(), p)
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rep); err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().
		Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.FileName(p, "csv"))).
		Body(buf.Bytes(), "text/csv; charset=utf-8").
		Write(w)
}

func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	writePreview(w, s.tracker.ReportPreview())
}

func (s *Server) handleSelectPreview(w http.ResponseWriter, r *http.Request) {
	b, ok := parseBody(w, r)
	if !ok {
		return
	}
	p, err := core.ParsePeriod(b.Get("period"))
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	preview := s.tracker.ReportPreview()
	if err := preview.Select(p); err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	writePreview(w, preview)
}

func (s *Server) handleGeneratePreview(w http.ResponseWriter, r *http.Request) {
	preview := s.tracker.ReportPreview()
	if _, err := preview.Generate(r.Context()); err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	writePreview(w, preview)
}

func writePreview(w http.ResponseWriter, preview *report.Preview) {
	p, state, rep := preview.Current()
	out := previewDTO{Period: p, State: state}
	if state == report.PreviewShown {
		dto := toReportDTO(rep)
		out.Report = &dto
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.Prune(r.Context())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().JSON(toPruneDTO(res)).Write(w)
}

// handleReset clears every transaction and goal. The body must confirm.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	b, ok := parseBody(w, r)
	if !ok {
		return
	}
	if b.Get("confirm") != "true" {
		BadRequestError(`Reset must be confirmed with "confirm": true`).Write(w)
		return
	}
	if err := s.tracker.Reset(r.Context()); err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if s.alerts == nil {
		NewResponse().JSON([]amqp.AlertMessage{}).Write(w)
		return
	}
	alerts, err := s.alerts.Recent(r.Context())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	if alerts == nil {
		alerts = []amqp.AlertMessage{}
	}
	NewResponse().JSON(alerts).Write(w)
}
