package ledger

import "moneytracker/internal/core"

// Retention is a calendar window measured back from today.
type Retention struct {
	Years  int
	Months int
	Days   int
}

// OneYear keeps the last calendar year of transactions.
var OneYear = Retention{Years: 1}

// Cutoff is the newest date that falls outside the window.
func (r Retention) Cutoff(today core.Date) core.Date {
	return today.AddDate(-r.Years, -r.Months, -r.Days)
}

func (r Retention) IsZero() bool {
	return r.Years == 0 && r.Months == 0 && r.Days == 0
}
