// Package report assembles the monthly financial report and its CSV export.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"moneytracker/internal/aggregate"
	"moneytracker/internal/core"
	"moneytracker/internal/ledger"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
)

// Report is everything an export needs for one month. Row slices are never
// nil, even for an empty month.
type Report struct {
	Period         core.Period
	TotalIncome    decimal.Decimal
	TotalExpenses  decimal.Decimal
	Balance        decimal.Decimal
	CategoryTotals aggregate.CategoryTotals
	IncomeRows     []core.Income
	ExpenseRows    []core.Expense
}

// IsEmpty reports whether the month had no transactions at all.
func (r Report) IsEmpty() bool {
	return len(r.IncomeRows) == 0 && len(r.ExpenseRows) == 0
}

// SnapshotReader is the part of the ledger the builder needs.
type SnapshotReader interface {
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
}

type Builder struct {
	src    SnapshotReader
	logger *log.Logger
}

func NewBuilder(src SnapshotReader, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Discard()
	}
	return &Builder{src: src, logger: logger.WithComponent(log.ComponentReport)}
}

// Build reads storage fresh and assembles the report for p.
func (b *Builder) Build(ctx context.Context, p core.Period) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	start := time.Now()
	snap, err := b.src.Snapshot(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read ledger: %w", err)
	}
	r := FromSnapshot(snap, p)
	metrics.ReportsBuilt.Inc()
	metrics.ReportBuildDuration.Observe(time.Since(start).Seconds())
	b.logger.DebugContext(ctx, "Report built",
		log.FieldOperation, log.OpBuild,
		log.FieldPeriod, p.Key(),
		"income_rows", len(r.IncomeRows),
		"expense_rows", len(r.ExpenseRows))
	return r, nil
}

// FromSnapshot is the pure part of Build.
func FromSnapshot(snap ledger.Snapshot, p core.Period) Report {
	income := aggregate.Filter(snap.Income, aggregate.MonthOf[core.Income](p))
	expenses := aggregate.Filter(snap.Expenses, aggregate.MonthOf[core.Expense](p))

	sort.SliceStable(income, func(i, j int) bool { return income[i].Date.Before(income[j].Date) })
	sort.SliceStable(expenses, func(i, j int) bool { return expenses[i].Date.Before(expenses[j].Date) })

	totalIncome := aggregate.Sum(income, nil)
	totalExpenses := aggregate.Sum(expenses, nil)
	return Report{
		Period:         p,
		TotalIncome:    totalIncome,
		TotalExpenses:  totalExpenses,
		Balance:        totalIncome.Sub(totalExpenses),
		CategoryTotals: aggregate.GroupByCategory(expenses),
		IncomeRows:     income,
		ExpenseRows:    expenses,
	}
}
