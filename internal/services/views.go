package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"moneytracker/internal/aggregate"
	"moneytracker/internal/core"
	"moneytracker/internal/limits"
	"moneytracker/internal/log"
	"moneytracker/internal/report"
)

// Indicator levels for the monthly limit bar.
const (
	IndicatorOK      = "ok"
	IndicatorWarning = "warning"
	IndicatorDanger  = "danger"
)

// indicatorDanger is where the monthly bar turns red, short of exceeding.
var indicatorDanger = decimal.RequireFromString("0.90")

type (
	// Dashboard is the home page: this month's totals and limit status.
	Dashboard struct {
		Period     core.Period
		Summary    core.Summary
		Categories aggregate.CategoryTotals
		Monthly    limits.Evaluation
		Indicator  string
	}

	// CalendarMonth is one month grid. LeadingBlanks is the number of empty
	// cells before the 1st in a Sunday-first week.
	CalendarMonth struct {
		Period        core.Period
		Prev          core.Period
		Next          core.Period
		LeadingBlanks int
		Days          []core.DaySummary
		Summary       core.Summary
	}

	DayDetails struct {
		Summary  core.DaySummary
		Income   []core.Income
		Expenses []core.Expense
	}

	LimitsResult struct {
		Limits     core.Limits
		Monthly    limits.Evaluation
		Advisories []core.Advisory
	}
)

// Dashboard summarizes the current month.
func (s *TrackerService) Dashboard(ctx context.Context) (Dashboard, error) {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	p := core.CurrentPeriod(s.now())
	monthExpenses := aggregate.Filter(snap.Expenses, aggregate.MonthOf[core.Expense](p))
	monthly := s.evaluator.Monthly(aggregate.Sum(monthExpenses, nil), snap.Limits)
	return Dashboard{
		Period:     p,
		Summary:    aggregate.MonthSummary(snap.Expenses, snap.Income, p),
		Categories: aggregate.GroupByCategory(monthExpenses),
		Monthly:    monthly,
		Indicator:  s.indicator(monthly),
	}, nil
}

func (s *TrackerService) indicator(ev limits.Evaluation) string {
	switch {
	case ev.Status == limits.StatusExceeded || ev.RawRatio.GreaterThanOrEqual(indicatorDanger):
		return IndicatorDanger
	case ev.Status == limits.StatusWarning:
		return IndicatorWarning
	}
	return IndicatorOK
}

// Calendar builds the month grid for p. The first calendar load of the
// process also prunes transactions older than the retention window.
func (s *TrackerService) Calendar(ctx context.Context, p core.Period) (CalendarMonth, error) {
	if err := p.Validate(); err != nil {
		return CalendarMonth{}, err
	}
	s.pruneOnce.Do(func() {
		// A cancelled first request must not cancel the one-time prune.
		if _, err := s.Prune(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "Startup prune failed", log.FieldError, err)
		}
	})

	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return CalendarMonth{}, err
	}
	days := make([]core.DaySummary, 0, p.Days())
	for d := 1; d <= p.Days(); d++ {
		days = append(days, aggregate.DayData(snap.Expenses, snap.Income, core.NewDate(p.Year, p.Month, d)))
	}
	return CalendarMonth{
		Period:        p,
		Prev:          p.Prev(),
		Next:          p.Next(),
		LeadingBlanks: int(p.First().Weekday()),
		Days:          days,
		Summary:       aggregate.MonthSummary(snap.Expenses, snap.Income, p),
	}, nil
}

// DayDetails lists the transactions of a single day.
func (s *TrackerService) DayDetails(ctx context.Context, day core.Date) (DayDetails, error) {
	if err := day.Validate(); err != nil {
		return DayDetails{}, err
	}
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return DayDetails{}, err
	}
	return DayDetails{
		Summary:  aggregate.DayData(snap.Expenses, snap.Income, day),
		Income:   aggregate.Filter(snap.Income, aggregate.DayOf[core.Income](day)),
		Expenses: aggregate.Filter(snap.Expenses, aggregate.DayOf[core.Expense](day)),
	}, nil
}

// Limits returns the saved limits, or the defaults.
func (s *TrackerService) Limits(ctx context.Context) (core.Limits, error) {
	return s.ledger.Limits(ctx)
}

// SaveLimits stores new limits and immediately re-checks this month's spending.
func (s *TrackerService) SaveLimits(ctx context.Context, daily, monthly string) (LimitsResult, error) {
	d, err := core.ParseAmount(daily)
	if err != nil {
		return LimitsResult{}, fmt.Errorf("daily limit %q: %w", daily, err)
	}
	m, err := core.ParseAmount(monthly)
	if err != nil {
		return LimitsResult{}, fmt.Errorf("monthly limit %q: %w", monthly, err)
	}
	l := core.Limits{Daily: d, Monthly: m}
	if err := s.ledger.SaveLimits(ctx, l); err != nil {
		return LimitsResult{}, err
	}
	s.logger.InfoContext(ctx, "Limits saved", "daily", d.String(), "monthly", m.String())

	res, err := s.CheckCurrentSpending(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Spending check failed after limits were saved", log.FieldError, err)
		return LimitsResult{Limits: l}, nil
	}
	s.publish(ctx, "monthly", res.Advisories)
	return res, nil
}

// CheckCurrentSpending compares this month's expenses with the monthly
// limit. Nothing is published.
func (s *TrackerService) CheckCurrentSpending(ctx context.Context) (LimitsResult, error) {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return LimitsResult{}, err
	}
	p := core.CurrentPeriod(s.now())
	ev := s.evaluator.Monthly(aggregate.MonthlyTotal(snap.Expenses, p), snap.Limits)

	advisories := []core.Advisory{}
	switch ev.Status {
	case limits.StatusExceeded:
		advisories = append(advisories, core.Advisory{
			Level:   core.LevelDanger,
			Message: fmt.Sprintf("You've exceeded your monthly spending limit of %s!", core.FormatMoney(ev.Limit)),
		})
	case limits.StatusWarning:
		advisories = append(advisories, core.Advisory{
			Level:   core.LevelWarning,
			Message: fmt.Sprintf("You're approaching your monthly spending limit (%s)!", core.FormatPercent(ev.Percent())),
		})
	}
	return LimitsResult{Limits: snap.Limits, Monthly: ev, Advisories: advisories}, nil
}

// Report builds the monthly report for p from fresh storage.
func (s *TrackerService) Report(ctx context.Context, p core.Period) (report.Report, error) {
	return s.reports.Build(ctx, p)
}

// ReportPreview is the shared report view state.
func (s *TrackerService) ReportPreview() *report.Preview {
	return s.preview
}
