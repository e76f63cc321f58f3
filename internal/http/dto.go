package http

import (
	"github.com/shopspring/decimal"

	"moneytracker/internal/aggregate"
	"moneytracker/internal/core"
	"moneytracker/internal/ledger"
	"moneytracker/internal/limits"
	"moneytracker/internal/report"
	"moneytracker/internal/services"
)

// Wire shapes. Amounts are decimal strings with two places so clients never
// see float rounding.
type (
	expenseDTO struct {
		ID       int64     `json:"id"`
		Amount   string    `json:"amount"`
		Category string    `json:"category"`
		Date     core.Date `json:"date"`
		Note     string    `json:"note,omitempty"`
	}

	incomeDTO struct {
		ID     int64     `json:"id"`
		Amount string    `json:"amount"`
		Source string    `json:"source"`
		Date   core.Date `json:"date"`
	}

	goalDTO struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Target    string    `json:"amount"`
		Progress  string    `json:"progress"`
		Deadline  core.Date `json:"deadline"`
		Percent   string    `json:"percent"`
		DaysLeft  int       `json:"days_left"`
		Completed bool      `json:"completed"`
	}

	evaluationDTO struct {
		Total     string        `json:"total"`
		Limit     string        `json:"limit"`
		Remaining string        `json:"remaining"`
		Percent   string        `json:"percent"`
		Ratio     string        `json:"ratio"`
		Status    limits.Status `json:"status"`
	}

	summaryDTO struct {
		Income   string `json:"income"`
		Expenses string `json:"expenses"`
		Balance  string `json:"balance"`
	}

	categoryDTO struct {
		Name   string `json:"name"`
		Amount string `json:"amount"`
	}

	dayDTO struct {
		Date            core.Date `json:"date"`
		HasTransactions bool      `json:"has_transactions"`
		Income          string    `json:"income"`
		Expenses        string    `json:"expenses"`
	}

	limitsDTO struct {
		Daily   string `json:"daily"`
		Monthly string `json:"monthly"`
	}

	expenseResultDTO struct {
		Expense    expenseDTO      `json:"expense"`
		Advisories []core.Advisory `json:"advisories"`
	}

	incomeResultDTO struct {
		Income     incomeDTO       `json:"income"`
		Advisories []core.Advisory `json:"advisories"`
	}

	dailyDTO struct {
		Date       core.Date       `json:"date"`
		Spending   evaluationDTO   `json:"spending"`
		Advisories []core.Advisory `json:"advisories"`
	}

	quickExpenseDTO struct {
		Expense    expenseDTO      `json:"expense"`
		Daily      dailyDTO        `json:"daily"`
		Advisories []core.Advisory `json:"advisories"`
	}

	dashboardDTO struct {
		Period     core.Period   `json:"period"`
		Summary    summaryDTO    `json:"summary"`
		Categories []categoryDTO `json:"categories"`
		Monthly    evaluationDTO `json:"monthly_limit"`
		Indicator  string        `json:"indicator"`
	}

	calendarDTO struct {
		Period        core.Period `json:"period"`
		Prev          core.Period `json:"prev"`
		Next          core.Period `json:"next"`
		LeadingBlanks int         `json:"leading_blanks"`
		Days          []dayDTO    `json:"days"`
		Summary       summaryDTO  `json:"summary"`
	}

	dayDetailsDTO struct {
		Day      dayDTO       `json:"day"`
		Income   []incomeDTO  `json:"income"`
		Expenses []expenseDTO `json:"expenses"`
	}

	limitsResultDTO struct {
		Limits     limitsDTO       `json:"limits"`
		Monthly    evaluationDTO   `json:"monthly_limit"`
		Advisories []core.Advisory `json:"advisories"`
	}

	reportDTO struct {
		Period        core.Period   `json:"period"`
		TotalIncome   string        `json:"total_income"`
		TotalExpenses string        `json:"total_expenses"`
		Balance       string        `json:"balance"`
		Categories    []categoryDTO `json:"categories"`
		Income        []incomeDTO   `json:"income"`
		Expenses      []expenseDTO  `json:"expenses"`
		Empty         bool          `json:"empty"`
	}

	previewDTO struct {
		Period core.Period         `json:"period"`
		State  report.PreviewState `json:"state"`
		Report *reportDTO          `json:"report,omitempty"`
	}

	pruneDTO struct {
		Cutoff   core.Date `json:"cutoff"`
		Expenses int       `json:"expenses_removed"`
		Income   int       `json:"income_removed"`
	}
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func advisories(a []core.Advisory) []core.Advisory {
	if a == nil {
		return []core.Advisory{}
	}
	return a
}

func toExpenseDTO(e core.Expense) expenseDTO {
	return expenseDTO{ID: e.ID, Amount: money(e.Amount), Category: e.Category, Date: e.Date, Note: e.Note}
}

func toExpenseDTOs(es []core.Expense) []expenseDTO {
	out := make([]expenseDTO, 0, len(es))
	for _, e := range es {
		out = append(out, toExpenseDTO(e))
	}
	return out
}

func toIncomeDTO(in core.Income) incomeDTO {
	return incomeDTO{ID: in.ID, Amount: money(in.Amount), Source: in.Source, Date: in.Date}
}

func toIncomeDTOs(ins []core.Income) []incomeDTO {
	out := make([]incomeDTO, 0, len(ins))
	for _, in := range ins {
		out = append(out, toIncomeDTO(in))
	}
	return out
}

func toGoalDTO(v services.GoalView) goalDTO {
	return goalDTO{
		ID:        v.Goal.ID,
		Name:      v.Goal.Name,
		Target:    money(v.Goal.Amount),
		Progress:  money(v.Goal.Progress),
		Deadline:  v.Goal.Deadline,
		Percent:   v.Percent.StringFixed(1),
		DaysLeft:  v.DaysLeft,
		Completed: v.Completed,
	}
}

func toEvaluationDTO(ev limits.Evaluation) evaluationDTO {
	return evaluationDTO{
		Total:     money(ev.Total),
		Limit:     money(ev.Limit),
		Remaining: money(ev.Remaining()),
		Percent:   ev.Percent().StringFixed(1),
		Ratio:     ev.Ratio.StringFixed(4),
		Status:    ev.Status,
	}
}

func toSummaryDTO(s core.Summary) summaryDTO {
	return summaryDTO{Income: money(s.Income), Expenses: money(s.Expenses), Balance: money(s.Balance)}
}

func toCategoryDTOs(c aggregate.CategoryTotals) []categoryDTO {
	out := make([]categoryDTO, 0, len(c))
	for _, ca := range c {
		out = append(out, categoryDTO{Name: ca.Name, Amount: money(ca.Amount)})
	}
	return out
}

func toDayDTO(d core.DaySummary) dayDTO {
	return dayDTO{Date: d.Date, HasTransactions: d.HasTransactions, Income: money(d.Income), Expenses: money(d.Expenses)}
}

func toLimitsDTO(l core.Limits) limitsDTO {
	return limitsDTO{Daily: money(l.Daily), Monthly: money(l.Monthly)}
}

func toDailyDTO(d services.DailySpending) dailyDTO {
	return dailyDTO{Date: d.Date, Spending: toEvaluationDTO(d.Evaluation), Advisories: advisories(d.Advisories)}
}

func toReportDTO(r report.Report) reportDTO {
	return reportDTO{
		Period:        r.Period,
		TotalIncome:   money(r.TotalIncome),
		TotalExpenses: money(r.TotalExpenses),
		Balance:       money(r.Balance),
		Categories:    toCategoryDTOs(r.CategoryTotals),
		Income:        toIncomeDTOs(r.IncomeRows),
		Expenses:      toExpenseDTOs(r.ExpenseRows),
		Empty:         r.IsEmpty(),
	}
}

func toPruneDTO(r ledger.PruneResult) pruneDTO {
	return pruneDTO{Cutoff: r.Cutoff, Expenses: r.Expenses, Income: r.Income}
}
