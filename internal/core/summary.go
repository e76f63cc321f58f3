package core

import "github.com/shopspring/decimal"

// Advisory levels, in increasing severity.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelDanger  = "danger"
)

// Advisory is a user-facing message produced alongside an operation's result.
// Advisories never stop an operation.
type Advisory struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// Summary holds the income/expense totals of a period.
type Summary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

// DaySummary is one calendar cell.
type DaySummary struct {
	Date            Date
	HasTransactions bool
	Income          decimal.Decimal
	Expenses        decimal.Decimal
}
