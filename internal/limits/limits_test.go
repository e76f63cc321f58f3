package limits

import (
	"testing"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		limit    string
		warn     string
		status   Status
		ratio    string
		rawRatio string
	}{
		{"daily warning at 80%", "40", "50", "0.8", StatusWarning, "0.8", "0.8"},
		{"exactly at limit", "50", "50", "0.8", StatusExceeded, "1", "1"},
		{"zero of zero", "0", "0", "0.8", StatusOK, "0", "0"},
		{"spending against zero limit", "1", "0", "0.8", StatusExceeded, "0", "0"},
		{"negative limit", "0", "-5", "0.8", StatusOK, "0", "0"},
		{"below warning", "39.99", "50", "0.8", StatusOK, "0.7998", "0.7998"},
		{"monthly warning at 75%", "1125", "1500", "0.75", StatusWarning, "0.75", "0.75"},
		{"monthly just below 75%", "1124.99", "1500", "0.75", StatusOK, "", ""},
		{"over limit keeps raw ratio", "75", "50", "0.8", StatusExceeded, "1", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate(dec(tt.total), dec(tt.limit), dec(tt.warn))
			if ev.Status != tt.status {
				t.Fatalf("status = %s, want %s", ev.Status, tt.status)
			}
			if tt.ratio != "" && !ev.Ratio.Equal(dec(tt.ratio)) {
				t.Errorf("ratio = %s, want %s", ev.Ratio, tt.ratio)
			}
			if tt.rawRatio != "" && !ev.RawRatio.Equal(dec(tt.rawRatio)) {
				t.Errorf("raw ratio = %s, want %s", ev.RawRatio, tt.rawRatio)
			}
			if ev.Ratio.IsNegative() || ev.Ratio.GreaterThan(decimal.NewFromInt(1)) {
				t.Errorf("ratio %s escaped [0, 1]", ev.Ratio)
			}
		})
	}
}

func TestPercentAndRemaining(t *testing.T) {
	ev := Evaluate(dec("75"), dec("50"), dec("0.8"))
	if !ev.Percent().Equal(dec("150")) {
		t.Fatalf("Percent() = %s", ev.Percent())
	}
	if !ev.Remaining().Equal(dec("-25")) {
		t.Fatalf("Remaining() = %s", ev.Remaining())
	}
}

func TestEvaluatorUsesSeparateThresholds(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())
	l := core.Limits{Daily: dec("100"), Monthly: dec("100")}

	// 76 is past the monthly threshold but not the daily one.
	if got := e.Daily(dec("76"), l).Status; got != StatusOK {
		t.Errorf("daily status = %s, want OK", got)
	}
	if got := e.Monthly(dec("76"), l).Status; got != StatusWarning {
		t.Errorf("monthly status = %s, want WARNING", got)
	}
}

func TestThresholdsValidate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if err := (Thresholds{DailyWarning: dec("0"), MonthlyWarning: dec("0.5")}).Validate(); err == nil {
		t.Fatal("expected zero ratio to be rejected")
	}
	if err := (Thresholds{DailyWarning: dec("0.5"), MonthlyWarning: dec("1.2")}).Validate(); err == nil {
		t.Fatal("expected ratio above 1 to be rejected")
	}
	err := (Thresholds{DailyWarning: dec("0"), MonthlyWarning: dec("1.5")}).Validate()
	want := "invalid daily warning ratio 0: must be greater than 0 and at most 1\n" +
		"invalid monthly warning ratio 1.5: must be greater than 0 and at most 1"
	if err == nil || err.Error() != want {
		t.Fatalf("Validate() = %v, want %q", err, want)
	}
}
