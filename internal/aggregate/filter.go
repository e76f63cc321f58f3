// Package aggregate filters transactions by calendar date and sums them.
//
// All date comparisons are made on calendar components. Nothing here parses a
// date with a time-of-day or a location, so a record never moves to the
// previous day under a negative UTC offset.
package aggregate

import (
	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

// Transaction is anything with a calendar date and a non-negative amount.
type Transaction interface {
	core.Expense | core.Income
	TxDate() core.Date
	TxAmount() decimal.Decimal
}

// InMonth reports whether d falls in period p.
func InMonth(d core.Date, p core.Period) bool {
	return !d.IsZero() && d.Year() == p.Year && d.Month() == p.Month
}

// InRange reports whether start <= d <= end. An inverted range matches nothing.
func InRange(d, start, end core.Date) bool {
	if d.IsZero() {
		return false
	}
	return !d.Before(start) && !d.After(end)
}

// OnDay is exact calendar-date equality.
func OnDay(d, day core.Date) bool {
	return !d.IsZero() && d.Equal(day)
}

// MatchesMonth parses a stored YYYY-MM-DD string and checks it against p.
// Malformed input never matches.
func MatchesMonth(raw string, p core.Period) bool {
	d, err := core.ParseDate(raw)
	if err != nil {
		return false
	}
	return InMonth(d, p)
}

// MonthOf returns a predicate selecting records in p.
func MonthOf[T Transaction](p core.Period) func(T) bool {
	return func(t T) bool { return InMonth(t.TxDate(), p) }
}

// RangeOf returns a predicate selecting records dated within [start, end].
func RangeOf[T Transaction](start, end core.Date) func(T) bool {
	return func(t T) bool { return InRange(t.TxDate(), start, end) }
}

// DayOf returns a predicate selecting records dated exactly day.
func DayOf[T Transaction](day core.Date) func(T) bool {
	return func(t T) bool { return OnDay(t.TxDate(), day) }
}

// Filter keeps the records matching pred, in order. The result is never nil.
func Filter[T Transaction](records []T, pred func(T) bool) []T {
	out := make([]T, 0)
	for _, r := range records {
		if pred == nil || pred(r) {
			out = append(out, r)
		}
	}
	return out
}
