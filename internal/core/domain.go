package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	// Expense is a single outgoing transaction. Amounts are stored non-negative;
	// the collection it lives in gives the sign.
	Expense struct {
		ID       int64
		Amount   decimal.Decimal
		Category string
		Date     Date
		Note     string
	}

	// Income is a single incoming transaction.
	Income struct {
		ID     int64
		Amount decimal.Decimal
		Source string
		Date   Date
	}

	// Goal is a savings target. Progress is moved manually, never derived from income.
	Goal struct {
		ID       int64
		Name     string
		Amount   decimal.Decimal // target
		Progress decimal.Decimal
		Deadline Date
	}

	// Limits is the singleton spending-limit configuration.
	Limits struct {
		Daily   decimal.Decimal
		Monthly decimal.Decimal
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptySource   = errors.New("empty income source")
	ErrEmptyName     = errors.New("empty goal name")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrNoteTooLong   = errors.New("note too long (max 500 characters)")
)

// DefaultLimits is used whenever no limits have been saved yet.
func DefaultLimits() Limits {
	return Limits{
		Daily:   decimal.NewFromInt(50),
		Monthly: decimal.NewFromInt(1500),
	}
}

// TxDate and TxAmount let aggregation treat expenses and income alike.
func (e Expense) TxDate() Date              { return e.Date }
func (e Expense) TxAmount() decimal.Decimal { return e.Amount }
func (i Income) TxDate() Date               { return i.Date }
func (i Income) TxAmount() decimal.Decimal  { return i.Amount }

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Note) > 500 {
		return ErrNoteTooLong
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if i.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.Progress.IsNegative() {
		return ErrInvalidAmount
	}
	if err := g.Deadline.Validate(); err != nil {
		return err
	}
	return nil
}

// Completed is derived from progress so it can never disagree with it.
func (g Goal) Completed() bool {
	return g.Progress.GreaterThanOrEqual(g.Amount)
}

// Percent returns progress as a percentage of the target, capped at 100.
func (g Goal) Percent() decimal.Decimal {
	if !g.Amount.IsPositive() {
		return decimal.Zero
	}
	p := g.Progress.Div(g.Amount).Mul(decimal.NewFromInt(100))
	if p.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return p
}

// DaysLeft counts calendar days from today until the deadline; negative once it has passed.
func (g Goal) DaysLeft(today Date) int {
	return today.DaysUntil(g.Deadline)
}

func (l Limits) Validate() error {
	if l.Daily.IsNegative() || l.Monthly.IsNegative() {
		return ErrInvalidLimit
	}
	return nil
}
