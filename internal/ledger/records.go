package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

// Stored document shapes. Amounts are written as JSON numbers and accepted
// back as numbers or numeric strings, since older data was written both ways.
type (
	expenseDoc struct {
		ID       int64           `json:"id"`
		Amount   json.RawMessage `json:"amount"`
		Category string          `json:"category"`
		Date     string          `json:"date"`
		Note     string          `json:"note"`
	}

	incomeDoc struct {
		ID     int64           `json:"id"`
		Amount json.RawMessage `json:"amount"`
		Source string          `json:"source"`
		Date   string          `json:"date"`
	}

	goalDoc struct {
		ID        int64           `json:"id"`
		Name      string          `json:"name"`
		Amount    json.RawMessage `json:"amount"`
		Progress  json.RawMessage `json:"progress"`
		Deadline  string          `json:"deadline"`
		Completed bool            `json:"completed"`
	}

	limitsDoc struct {
		Daily   json.RawMessage `json:"daily"`
		Monthly json.RawMessage `json:"monthly"`
	}

	// datedDoc is the minimal view used when only the date matters.
	datedDoc struct {
		ID   int64  `json:"id"`
		Date string `json:"date"`
	}
)

var errMissingAmount = errors.New("missing amount")

// parseStoredAmount accepts 12.5, "12.5" and "12,5". Negative or
// non-numeric values are rejected.
func parseStoredAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, errMissingAmount
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, core.ErrInvalidAmount
		}
		return core.ParseAmount(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return decimal.Zero, core.ErrInvalidAmount
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil || d.IsNegative() {
		return decimal.Zero, core.ErrInvalidAmount
	}
	return d, nil
}

func amountJSON(d decimal.Decimal) json.RawMessage {
	return json.RawMessage(d.String())
}

func decodeExpense(raw json.RawMessage) (core.Expense, error) {
	var doc expenseDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return core.Expense{}, fmt.Errorf("decode expense: %w", err)
	}
	amount, err := parseStoredAmount(doc.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d amount: %w", doc.ID, err)
	}
	date, err := core.ParseDate(doc.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", doc.ID, err)
	}
	e := core.Expense{ID: doc.ID, Amount: amount, Category: doc.Category, Date: date, Note: doc.Note}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", doc.ID, err)
	}
	return e, nil
}

func encodeExpense(e core.Expense) (json.RawMessage, error) {
	return json.Marshal(expenseDoc{
		ID:       e.ID,
		Amount:   amountJSON(e.Amount),
		Category: e.Category,
		Date:     e.Date.String(),
		Note:     e.Note,
	})
}

func decodeIncome(raw json.RawMessage) (core.Income, error) {
	var doc incomeDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return core.Income{}, fmt.Errorf("decode income: %w", err)
	}
	amount, err := parseStoredAmount(doc.Amount)
	if err != nil {
		return core.Income{}, fmt.Errorf("income %d amount: %w", doc.ID, err)
	}
	date, err := core.ParseDate(doc.Date)
	if err != nil {
		return core.Income{}, fmt.Errorf("income %d: %w", doc.ID, err)
	}
	in := core.Income{ID: doc.ID, Amount: amount, Source: doc.Source, Date: date}
	if err := in.Validate(); err != nil {
		return core.Income{}, fmt.Errorf("income %d: %w", doc.ID, err)
	}
	return in, nil
}

func encodeIncome(in core.Income) (json.RawMessage, error) {
	return json.Marshal(incomeDoc{
		ID:     in.ID,
		Amount: amountJSON(in.Amount),
		Source: in.Source,
		Date:   in.Date.String(),
	})
}

// decodeGoal ignores the stored completed flag; it is derived from progress.
func decodeGoal(raw json.RawMessage) (core.Goal, error) {
	var doc goalDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return core.Goal{}, fmt.Errorf("decode goal: %w", err)
	}
	amount, err := parseStoredAmount(doc.Amount)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %d amount: %w", doc.ID, err)
	}
	progress := decimal.Zero
	if len(doc.Progress) > 0 {
		if progress, err = parseStoredAmount(doc.Progress); err != nil {
			return core.Goal{}, fmt.Errorf("goal %d progress: %w", doc.ID, err)
		}
	}
	deadline, err := core.ParseDate(doc.Deadline)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %d: %w", doc.ID, err)
	}
	g := core.Goal{ID: doc.ID, Name: doc.Name, Amount: amount, Progress: progress, Deadline: deadline}
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("goal %d: %w", doc.ID, err)
	}
	return g, nil
}

func encodeGoal(g core.Goal) (json.RawMessage, error) {
	return json.Marshal(goalDoc{
		ID:        g.ID,
		Name:      g.Name,
		Amount:    amountJSON(g.Amount),
		Progress:  amountJSON(g.Progress),
		Deadline:  g.Deadline.String(),
		Completed: g.Completed(),
	})
}

func decodeLimits(raw []byte) (core.Limits, error) {
	var doc limitsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return core.Limits{}, fmt.Errorf("decode limits: %w", err)
	}
	daily, err := parseStoredAmount(doc.Daily)
	if err != nil {
		return core.Limits{}, fmt.Errorf("daily limit: %w", err)
	}
	monthly, err := parseStoredAmount(doc.Monthly)
	if err != nil {
		return core.Limits{}, fmt.Errorf("monthly limit: %w", err)
	}
	return core.Limits{Daily: daily, Monthly: monthly}, nil
}

func encodeLimits(l core.Limits) ([]byte, error) {
	return json.Marshal(limitsDoc{Daily: amountJSON(l.Daily), Monthly: amountJSON(l.Monthly)})
}

func recordID(raw json.RawMessage) (int64, bool) {
	var doc datedDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, false
	}
	return doc.ID, true
}

func recordDate(raw json.RawMessage) (core.Date, bool) {
	var doc datedDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return core.Date{}, false
	}
	d, err := core.ParseDate(doc.Date)
	if err != nil {
		return core.Date{}, false
	}
	return d, true
}
