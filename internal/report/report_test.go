package report

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
	"moneytracker/internal/kv/memory"
	"moneytracker/internal/ledger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var march = core.Period{Year: 2024, Month: time.March}

func seededLedger(t *testing.T, docs map[string]string) *ledger.Ledger {
	t.Helper()
	store := memory.New()
	for k, v := range docs {
		if err := store.Set(context.Background(), k, []byte(v)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return ledger.New(store, nil)
}

func TestBuildScenario(t *testing.T) {
	l := seededLedger(t, map[string]string{
		ledger.KeyExpenses: `[{"id":1,"amount":30,"date":"2024-03-05","category":"food"}]`,
		ledger.KeyIncome:   `[{"id":2,"amount":1000,"date":"2024-03-01","source":"salary"}]`,
		ledger.KeyLimits:   `{"daily":50,"monthly":1500}`,
	})
	r, err := NewBuilder(l, nil).Build(context.Background(), march)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !r.TotalIncome.Equal(dec("1000")) || !r.TotalExpenses.Equal(dec("30")) || !r.Balance.Equal(dec("970")) {
		t.Fatalf("unexpected totals: income=%s expenses=%s balance=%s", r.TotalIncome, r.TotalExpenses, r.Balance)
	}
	if len(r.CategoryTotals) != 1 {
		t.Fatalf("unexpected categories: %+v", r.CategoryTotals)
	}
	if food, ok := r.CategoryTotals.Get("food"); !ok || !food.Equal(dec("30")) {
		t.Fatalf("food = %s (ok=%v)", food, ok)
	}
}

func TestBuildSortsStablyAndFilters(t *testing.T) {
	l := seededLedger(t, map[string]string{
		ledger.KeyExpenses: `[
			{"id":1,"amount":1,"date":"2024-03-20","category":"a"},
			{"id":2,"amount":2,"date":"2024-03-05","category":"b"},
			{"id":3,"amount":3,"date":"2024-04-01","category":"a"},
			{"id":4,"amount":4,"date":"2024-03-05","category":"c"},
			{"id":5,"amount":5,"date":"2024-02-29","category":"a"}
		]`,
	})
	r, err := NewBuilder(l, nil).Build(context.Background(), march)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var ids []int64
	for _, e := range r.ExpenseRows {
		ids = append(ids, e.ID)
	}
	if want := []int64{2, 4, 1}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("row order = %v, want %v", ids, want)
	}
	if !r.CategoryTotals.Total().Equal(r.TotalExpenses) {
		t.Fatalf("category totals %s != total expenses %s", r.CategoryTotals.Total(), r.TotalExpenses)
	}
}

func TestBuildEmptyPeriod(t *testing.T) {
	r, err := NewBuilder(seededLedger(t, nil), nil).Build(context.Background(), march)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !r.IsEmpty() || r.IncomeRows == nil || r.ExpenseRows == nil || r.CategoryTotals == nil {
		t.Fatalf("empty report must have empty non-nil slices: %#v", r)
	}
	if !r.Balance.IsZero() || !r.TotalIncome.IsZero() || !r.TotalExpenses.IsZero() {
		t.Fatalf("empty report must have zero totals: %+v", r)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	l := seededLedger(t, map[string]string{
		ledger.KeyExpenses: `[{"id":1,"amount":"12.34","date":"2024-03-05","category":"food"},{"id":2,"amount":5,"date":"2024-03-01","category":"fun"}]`,
		ledger.KeyIncome:   `[{"id":3,"amount":100,"date":"2024-03-02","source":"gift"}]`,
	})
	b := NewBuilder(l, nil)
	first, err := b.Build(context.Background(), march)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := b.Build(context.Background(), march)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("builds differ:\n%+v\n%+v", first, second)
	}
}

type brokenSource struct{}

func (brokenSource) Snapshot(context.Context) (ledger.Snapshot, error) {
	return ledger.Snapshot{}, ledger.ErrStorageUnavailable
}

func TestBuildErrors(t *testing.T) {
	if _, err := NewBuilder(brokenSource{}, nil).Build(context.Background(), march); !errors.Is(err, ledger.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := NewBuilder(brokenSource{}, nil).Build(context.Background(), core.Period{Year: 2024}); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestWriteCSV(t *testing.T) {
	r := FromSnapshot(ledger.Snapshot{
		Expenses: []core.Expense{{ID: 1, Amount: dec("30"), Category: "food", Date: core.NewDate(2024, time.March, 5), Note: "lunch"}},
		Income:   []core.Income{{ID: 2, Amount: dec("1000"), Source: "salary", Date: core.NewDate(2024, time.March, 1)}},
	}, march)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, r); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := strings.Join([]string{
		"Financial Report - March 2024",
		"",
		"Summary",
		"Total Income,$1000.00",
		"Total Expenses,$30.00",
		"Balance,$970.00",
		"",
		"Income Transactions",
		"Date,Amount,Source",
		`"Mar 1, 2024",$1000.00,salary`,
		"",
		"Expense Transactions",
		"Date,Amount,Category,Note",
		`"Mar 5, 2024",$30.00,food,lunch`,
		"",
	}, "\r\n")
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, FromSnapshot(ledger.Snapshot{}, march)); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()
	for _, line := range []string{noIncomeLine, noExpenseLine, "Balance,$0.00"} {
		if !strings.Contains(out, line+"\r\n") {
			t.Errorf("missing line %q in:\n%s", line, out)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(march, ".csv"); got != "Financial_Report_March_2024.csv" {
		t.Fatalf("FileName = %q", got)
	}
	if got := FileName(core.Period{Year: 2023, Month: time.December}, "pdf"); got != "Financial_Report_December_2023.pdf" {
		t.Fatalf("FileName = %q", got)
	}
}

func TestPreviewStateMachine(t *testing.T) {
	l := seededLedger(t, map[string]string{
		ledger.KeyIncome: `[{"id":1,"amount":10,"date":"2024-03-01","source":"s"}]`,
	})
	p := NewPreview(NewBuilder(l, nil), march)

	if _, state, _ := p.Current(); state != PreviewEmpty {
		t.Fatalf("initial state = %s", state)
	}
	r, err := p.Generate(context.Background())
	if err != nil || !r.TotalIncome.Equal(dec("10")) {
		t.Fatalf("Generate: %+v err=%v", r, err)
	}
	if _, state, _ := p.Current(); state != PreviewShown {
		t.Fatalf("state after generate = %s", state)
	}

	// Re-selecting the same period keeps the preview.
	if err := p.Select(march); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, state, _ := p.Current(); state != PreviewShown {
		t.Fatalf("same-period select hid the preview")
	}

	if err := p.Select(march.Next()); err != nil {
		t.Fatalf("Select: %v", err)
	}
	period, state, cur := p.Current()
	if state != PreviewEmpty || period != march.Next() || !cur.TotalIncome.IsZero() {
		t.Fatalf("period change should clear the preview: %v %s %+v", period, state, cur)
	}

	if err := p.Select(core.Period{Year: 2024, Month: 13}); err == nil {
		t.Fatal("expected invalid period error")
	}
}
