package aggregate

import (
	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

// Sum adds the amounts of the records matching pred. A nil pred matches all.
// Totals stay exact; round only when formatting.
func Sum[T Transaction](records []T, pred func(T) bool) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if pred == nil || pred(r) {
			total = total.Add(r.TxAmount())
		}
	}
	return total
}

// DailyTotal sums the records dated exactly day.
func DailyTotal[T Transaction](records []T, day core.Date) decimal.Decimal {
	return Sum(records, DayOf[T](day))
}

// MonthlyTotal sums the records dated in p.
func MonthlyTotal[T Transaction](records []T, p core.Period) decimal.Decimal {
	return Sum(records, MonthOf[T](p))
}

// CategoryTotals is a per-category breakdown in first-seen order.
type CategoryTotals []core.CategoryAmount

// GroupByCategory totals expenses per category. Categories appear in the
// order they are first seen, so chart legends are stable across runs.
func GroupByCategory(expenses []core.Expense) CategoryTotals {
	out := CategoryTotals{}
	index := make(map[string]int)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, core.CategoryAmount{Name: e.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	return out
}

// Total is the sum over all categories.
func (c CategoryTotals) Total() decimal.Decimal {
	total := decimal.Zero
	for _, ca := range c {
		total = total.Add(ca.Amount)
	}
	return total
}

// Get returns the total for name and whether the category was present.
func (c CategoryTotals) Get(name string) (decimal.Decimal, bool) {
	for _, ca := range c {
		if ca.Name == name {
			return ca.Amount, true
		}
	}
	return decimal.Zero, false
}

// DayData is the calendar cell for day.
func DayData(expenses []core.Expense, income []core.Income, day core.Date) core.DaySummary {
	dayExpenses := Filter(expenses, DayOf[core.Expense](day))
	dayIncome := Filter(income, DayOf[core.Income](day))
	return core.DaySummary{
		Date:            day,
		HasTransactions: len(dayExpenses) > 0 || len(dayIncome) > 0,
		Income:          Sum(dayIncome, nil),
		Expenses:        Sum(dayExpenses, nil),
	}
}

// MonthSummary returns income, expenses and balance for p.
func MonthSummary(expenses []core.Expense, income []core.Income, p core.Period) core.Summary {
	in := MonthlyTotal(income, p)
	out := MonthlyTotal(expenses, p)
	return core.Summary{Income: in, Expenses: out, Balance: in.Sub(out)}
}
