// Package limits classifies spending totals against the configured limits.
package limits

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

type Status string

const (
	StatusOK       Status = "OK"
	StatusWarning  Status = "WARNING"
	StatusExceeded Status = "EXCEEDED"
)

// Thresholds are the fractions of a limit at which spending is flagged.
// Daily and monthly warnings fire at different points.
type Thresholds struct {
	DailyWarning   decimal.Decimal
	MonthlyWarning decimal.Decimal
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		DailyWarning:   decimal.RequireFromString("0.80"),
		MonthlyWarning: decimal.RequireFromString("0.75"),
	}
}

func (t Thresholds) Validate() error {
	return errors.Join(
		ValidateRatio("daily", t.DailyWarning),
		ValidateRatio("monthly", t.MonthlyWarning),
	)
}

// ValidateRatio checks that a warning ratio is in (0, 1].
func ValidateRatio(name string, v decimal.Decimal) error {
	if !v.IsPositive() || v.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid %s warning ratio %s: must be greater than 0 and at most 1", name, v)
	}
	return nil
}

// Evaluation is the outcome of comparing a total with a limit.
type Evaluation struct {
	Total    decimal.Decimal `json:"total"`
	Limit    decimal.Decimal `json:"limit"`
	Ratio    decimal.Decimal `json:"ratio"`     // clamped to [0, 1] for progress bars
	RawRatio decimal.Decimal `json:"raw_ratio"` // may exceed 1
	Status   Status          `json:"status"`
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Evaluate classifies total against limit. EXCEEDED wins over WARNING.
// A limit of zero or less never divides: the ratio is zero and any spending
// at all counts as exceeding it.
func Evaluate(total, limit, warnRatio decimal.Decimal) Evaluation {
	ev := Evaluation{Total: total, Limit: limit, Ratio: decimal.Zero, RawRatio: decimal.Zero}
	if !limit.IsPositive() {
		ev.Status = StatusOK
		if total.IsPositive() {
			ev.Status = StatusExceeded
		}
		return ev
	}

	ev.RawRatio = total.Div(limit)
	ev.Ratio = decimal.Min(decimal.Max(ev.RawRatio, decimal.Zero), one)
	switch {
	case total.GreaterThanOrEqual(limit):
		ev.Status = StatusExceeded
	case total.GreaterThanOrEqual(limit.Mul(warnRatio)):
		ev.Status = StatusWarning
	default:
		ev.Status = StatusOK
	}
	return ev
}

// Percent is the unclamped percentage of the limit used.
func (e Evaluation) Percent() decimal.Decimal {
	return e.RawRatio.Mul(hundred)
}

// Remaining is limit minus total; negative once the limit is passed.
func (e Evaluation) Remaining() decimal.Decimal {
	return e.Limit.Sub(e.Total)
}

// Evaluator applies the daily and monthly thresholds.
type Evaluator struct {
	Thresholds Thresholds
}

func NewEvaluator(t Thresholds) Evaluator {
	return Evaluator{Thresholds: t}
}

func (e Evaluator) Daily(total decimal.Decimal, l core.Limits) Evaluation {
	return Evaluate(total, l.Daily, e.Thresholds.DailyWarning)
}

func (e Evaluator) Monthly(total decimal.Decimal, l core.Limits) Evaluation {
	return Evaluate(total, l.Monthly, e.Thresholds.MonthlyWarning)
}
