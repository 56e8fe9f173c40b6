package receivable

import (
	"testing"
	"time"
)

func TestMonthsBetween(t *testing.T) {
	from := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	months := MonthsBetween(from, to)
	want := []string{"2024-11", "2024-12", "2025-01", "2025-02"}
	if len(months) != len(want) {
		t.Fatalf("months=%v want=%v", months, want)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Fatalf("months[%d]=%s want=%s", i, months[i], want[i])
		}
	}
}

func TestMonthsBetween_SameMonth(t *testing.T) {
	from := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	months := MonthsBetween(from, to)
	if len(months) != 1 || months[0] != "2025-03" {
		t.Fatalf("months=%v want=[2025-03]", months)
	}
}

func TestMonthsBetween_Inverted(t *testing.T) {
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if months := MonthsBetween(from, to); months != nil {
		t.Fatalf("months=%v want=nil", months)
	}
}

func TestEndOfMonth(t *testing.T) {
	cases := map[string]string{
		"2025-01": "2025-01-31",
		"2025-02": "2025-02-28",
		"2024-02": "2024-02-29",
		"2025-04": "2025-04-30",
	}
	for month, want := range cases {
		got, err := EndOfMonth(month)
		if err != nil {
			t.Fatalf("EndOfMonth(%s): %v", month, err)
		}
		if got.Format("2006-01-02") != want {
			t.Fatalf("EndOfMonth(%s)=%s want=%s", month, got.Format("2006-01-02"), want)
		}
	}

	if _, err := EndOfMonth("not-a-month"); err == nil {
		t.Fatal("EndOfMonth must reject malformed input")
	}
}

func TestInstallmentPaid(t *testing.T) {
	if (Installment{SettlementStatus: SettlementOpen}).Paid() {
		t.Fatal("open installment must not report paid")
	}
	if !(Installment{SettlementStatus: SettlementPaid}).Paid() {
		t.Fatal("paid installment must report paid")
	}
	if !(Installment{SettlementStatus: SettlementSettled}).Paid() {
		t.Fatal("settled installment must report paid")
	}
}
