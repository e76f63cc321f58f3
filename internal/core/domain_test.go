package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 5 {
		t.Fatalf("wrong components: %v", d)
	}
	if d.String() != "2024-03-05" {
		t.Fatalf("String() = %q", d.String())
	}

	for _, bad := range []string{"", "2024-3-5", "2024-02-30", "2024-03-05T00:00:00", "yesterday"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("%q: expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestTodayUsesLocalComponents(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("EST", -5*3600)
	now := time.Date(2024, time.March, 31, 23, 30, 0, 0, loc)
	got := Today(now)
	if !got.Equal(NewDate(2024, time.March, 31)) {
		t.Fatalf("Today() = %s, want 2024-03-31", got)
	}
	if got.Period() != (Period{2024, time.March}) {
		t.Fatalf("Period() = %v", got.Period())
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.March, 1)
	b, err := d.MarshalJSON()
	if err != nil || string(b) != `"2024-03-01"` {
		t.Fatalf("MarshalJSON = %s (err=%v)", b, err)
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil || !back.Equal(d) {
		t.Fatalf("UnmarshalJSON = %v (err=%v)", back, err)
	}
	if err := back.UnmarshalJSON([]byte(`12`)); err == nil {
		t.Fatal("expected error for numeric date")
	}
}

func TestPeriod(t *testing.T) {
	p, err := ParsePeriod("2024-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.String() != "March 2024" || p.Key() != "2024-03" {
		t.Fatalf("got %q / %q", p.String(), p.Key())
	}
	if p.Days() != 31 {
		t.Fatalf("Days() = %d", p.Days())
	}
	if feb := (Period{2024, time.February}); feb.Days() != 29 {
		t.Fatalf("leap February has %d days", feb.Days())
	}
	if got := (Period{2024, time.January}).Prev(); got != (Period{2023, time.December}) {
		t.Fatalf("Prev() = %v", got)
	}
	if got := (Period{2024, time.December}).Next(); got != (Period{2025, time.January}) {
		t.Fatalf("Next() = %v", got)
	}
	if _, err := ParsePeriod("2024-13"); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if err := (Period{2024, 0}).Validate(); err == nil {
		t.Fatal("expected month 0 to be invalid")
	}
}

func TestGoalDerivedFields(t *testing.T) {
	g := Goal{Name: "Laptop", Amount: dec("1000"), Progress: dec("250"), Deadline: NewDate(2024, time.April, 10)}
	if g.Completed() {
		t.Fatal("goal should not be completed")
	}
	if !g.Percent().Equal(dec("25")) {
		t.Fatalf("Percent() = %s", g.Percent())
	}
	if got := g.DaysLeft(NewDate(2024, time.March, 31)); got != 10 {
		t.Fatalf("DaysLeft() = %d", got)
	}

	g.Progress = dec("1200")
	if !g.Completed() {
		t.Fatal("goal should be completed")
	}
	if !g.Percent().Equal(dec("100")) {
		t.Fatalf("Percent() should be capped, got %s", g.Percent())
	}
}

func TestValidate(t *testing.T) {
	date := NewDate(2024, time.March, 5)
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"expense ok", Expense{Amount: dec("30"), Category: "food", Date: date}.Validate(), nil},
		{"expense no category", Expense{Amount: dec("30"), Category: " ", Date: date}.Validate(), ErrEmptyCategory},
		{"expense negative", Expense{Amount: dec("-1"), Category: "food", Date: date}.Validate(), ErrInvalidAmount},
		{"expense no date", Expense{Amount: dec("1"), Category: "food"}.Validate(), ErrInvalidDate},
		{"income ok", Income{Amount: dec("1000"), Source: "salary", Date: date}.Validate(), nil},
		{"income no source", Income{Amount: dec("1000"), Date: date}.Validate(), ErrEmptySource},
		{"goal zero target", Goal{Name: "x", Amount: dec("0"), Deadline: date}.Validate(), ErrInvalidAmount},
		{"goal no name", Goal{Amount: dec("10"), Deadline: date}.Validate(), ErrEmptyName},
		{"limits negative", Limits{Daily: dec("-1"), Monthly: dec("10")}.Validate(), ErrInvalidLimit},
		{"limits default", DefaultLimits().Validate(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want == nil {
				if tt.err != nil {
					t.Fatalf("unexpected error: %v", tt.err)
				}
				return
			}
			if !errors.Is(tt.err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, tt.err)
			}
		})
	}
}
