package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"moneytracker/internal/core"
)

const (
	noIncomeLine  = "No income transactions for this period"
	noExpenseLine = "No expense transactions for this period"
)

// WriteCSV writes r as a sectioned CSV document: title, summary, income
// table, expense table. Lines end in CRLF. Fields containing commas (the
// display dates do) are quoted.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	rows := [][]string{
		{"Financial Report - " + r.Period.String()},
		{""},
		{"Summary"},
		{"Total Income", core.FormatMoney(r.TotalIncome)},
		{"Total Expenses", core.FormatMoney(r.TotalExpenses)},
		{"Balance", core.FormatMoney(r.Balance)},
		{""},
		{"Income Transactions"},
		{"Date", "Amount", "Source"},
	}
	if len(r.IncomeRows) == 0 {
		rows = append(rows, []string{noIncomeLine})
	}
	for _, in := range r.IncomeRows {
		rows = append(rows, []string{in.Date.Display(), core.FormatMoney(in.Amount), in.Source})
	}

	rows = append(rows,
		[]string{""},
		[]string{"Expense Transactions"},
		[]string{"Date", "Amount", "Category", "Note"},
	)
	if len(r.ExpenseRows) == 0 {
		rows = append(rows, []string{noExpenseLine})
	}
	for _, e := range r.ExpenseRows {
		rows = append(rows, []string{e.Date.Display(), core.FormatMoney(e.Amount), e.Category, e.Note})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// FileName is the download name for r's period, e.g.
// Financial_Report_March_2024.csv.
func FileName(p core.Period, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("Financial_Report_%s_%d.%s", p.Month, p.Year, ext)
}
