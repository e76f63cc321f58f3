package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"moneytracker/internal/aggregate"
	"moneytracker/internal/core"
	"moneytracker/internal/limits"
	"moneytracker/internal/log"
)

// Form input, as typed by the user.
type (
	ExpenseInput struct {
		Amount   string `json:"amount"`
		Category string `json:"category"`
		Date     string `json:"date"`
		Note     string `json:"note"`
	}

	IncomeInput struct {
		Amount string `json:"amount"`
		Source string `json:"source"`
		Date   string `json:"date"`
	}
)

type (
	ExpenseResult struct {
		Expense    core.Expense
		Advisories []core.Advisory
	}

	IncomeResult struct {
		Income     core.Income
		Advisories []core.Advisory
	}

	QuickExpenseResult struct {
		Expense    core.Expense
		Daily      DailySpending
		Advisories []core.Advisory
	}

	// DailySpending is today's spend against the daily limit.
	DailySpending struct {
		Date       core.Date
		Evaluation limits.Evaluation
		Advisories []core.Advisory
	}
)

func (d DailySpending) Limit() decimal.Decimal     { return d.Evaluation.Limit }
func (d DailySpending) Spent() decimal.Decimal     { return d.Evaluation.Total }
func (d DailySpending) Remaining() decimal.Decimal { return d.Evaluation.Remaining() }

// AddExpense validates form input, appends the expense and checks today's
// spending against both limits.
func (s *TrackerService) AddExpense(ctx context.Context, in ExpenseInput) (ExpenseResult, error) {
	e, err := parseExpense(in)
	if err != nil {
		return ExpenseResult{}, err
	}
	saved, err := s.ledger.AppendExpense(ctx, e)
	if err != nil {
		return ExpenseResult{}, fmt.Errorf("save expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense added", log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction("expense", saved.ID, saved.Amount.String(), saved.Date.String(), saved.Category).ToSlice()...)

	advisories, err := s.checkExpenseLimits(ctx)
	if err != nil {
		// The expense is stored; only the advisory check failed.
		s.logger.WarnContext(ctx, "Limit check failed after expense was saved", log.FieldError, err)
	}
	s.publish(ctx, "expense", advisories)
	return ExpenseResult{Expense: saved, Advisories: advisories}, nil
}

// AddQuickExpense records an expense dated today and reports daily spending.
func (s *TrackerService) AddQuickExpense(ctx context.Context, amount, category, note string) (QuickExpenseResult, error) {
	in := ExpenseInput{
		Amount:   amount,
		Category: category,
		Date:     core.Today(s.now()).String(),
		Note:     note,
	}
	e, err := parseExpense(in)
	if err != nil {
		return QuickExpenseResult{}, err
	}
	saved, err := s.ledger.AppendExpense(ctx, e)
	if err != nil {
		return QuickExpenseResult{}, fmt.Errorf("save expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Quick expense added", log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction("expense", saved.ID, saved.Amount.String(), saved.Date.String(), saved.Category).ToSlice()...)

	daily, err := s.DailySpending(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Limit check failed after expense was saved", log.FieldError, err)
		return QuickExpenseResult{Expense: saved}, nil
	}
	s.publish(ctx, "daily", daily.Advisories)
	return QuickExpenseResult{Expense: saved, Daily: daily, Advisories: daily.Advisories}, nil
}

func (s *TrackerService) AddIncome(ctx context.Context, in IncomeInput) (IncomeResult, error) {
	amount, err := core.ParsePositiveAmount(in.Amount)
	if err != nil {
		return IncomeResult{}, fmt.Errorf("amount %q: %w", in.Amount, err)
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return IncomeResult{}, err
	}
	income := core.Income{Amount: amount, Source: strings.TrimSpace(in.Source), Date: date}
	if err := income.Validate(); err != nil {
		return IncomeResult{}, err
	}
	saved, err := s.ledger.AppendIncome(ctx, income)
	if err != nil {
		return IncomeResult{}, fmt.Errorf("save income: %w", err)
	}
	s.logger.InfoContext(ctx, "Income added", log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction("income", saved.ID, saved.Amount.String(), saved.Date.String(), "").ToSlice()...)
	return IncomeResult{Income: saved, Advisories: []core.Advisory{}}, nil
}

// DailySpending evaluates today's expenses against the daily limit. It only
// reads; advisories are published by the write that caused them.
func (s *TrackerService) DailySpending(ctx context.Context) (DailySpending, error) {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return DailySpending{}, err
	}
	today := core.Today(s.now())
	ev := s.evaluator.Daily(aggregate.DailyTotal(snap.Expenses, today), snap.Limits)

	advisories := []core.Advisory{}
	switch ev.Status {
	case limits.StatusExceeded:
		advisories = append(advisories, core.Advisory{Level: core.LevelDanger, Message: "Daily spending limit exceeded!"})
	case limits.StatusWarning:
		advisories = append(advisories, core.Advisory{Level: core.LevelWarning, Message: "Approaching daily spending limit!"})
	}
	return DailySpending{Date: today, Evaluation: ev, Advisories: advisories}, nil
}

// checkExpenseLimits compares today's and this month's spending with the limits.
func (s *TrackerService) checkExpenseLimits(ctx context.Context) ([]core.Advisory, error) {
	advisories := []core.Advisory{}
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return advisories, err
	}
	today := core.Today(s.now())

	daily := s.evaluator.Daily(aggregate.DailyTotal(snap.Expenses, today), snap.Limits)
	if a, ok := limitAdvisory("Daily", daily); ok {
		advisories = append(advisories, a)
	}
	monthly := s.evaluator.Monthly(aggregate.MonthlyTotal(snap.Expenses, today.Period()), snap.Limits)
	if a, ok := limitAdvisory("Monthly", monthly); ok {
		advisories = append(advisories, a)
	}
	return advisories, nil
}

func limitAdvisory(label string, ev limits.Evaluation) (core.Advisory, bool) {
	total, limit := core.FormatMoney(ev.Total), core.FormatMoney(ev.Limit)
	switch ev.Status {
	case limits.StatusExceeded:
		return core.Advisory{
			Level:   core.LevelDanger,
			Message: fmt.Sprintf("%s expenses (%s) have exceeded limit (%s)!", label, total, limit),
		}, true
	case limits.StatusWarning:
		return core.Advisory{
			Level:   core.LevelWarning,
			Message: fmt.Sprintf("%s expenses (%s) are approaching limit (%s)!", label, total, limit),
		}, true
	}
	return core.Advisory{}, false
}

func parseExpense(in ExpenseInput) (core.Expense, error) {
	amount, err := core.ParsePositiveAmount(in.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("amount %q: %w", in.Amount, err)
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		Amount:   amount,
		Category: strings.TrimSpace(in.Category),
		Date:     date,
		Note:     strings.TrimSpace(in.Note),
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}
