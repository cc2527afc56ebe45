package timecalc_test

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Tiliavir/simple-timesheet/internal/timecalc"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{90, "1m"},
		{3600, "1h 0m"},
		{3661, "1h 1m"},
		{5400, "1h 30m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{3, "3"},
		{2.5, "2.5"},
		{0.25, "0.25"},
		{24, "24"},
		{7.75, "7.75"},
		{0.1, "0.1"},
	}
	for _, tt := range tests {
		got := timecalc.FormatHours(tt.hours)
		if got != tt.want {
			t.Errorf("FormatHours(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestMonthsBefore(t *testing.T) {
	tests := []struct {
		in   civil.Date
		want civil.Date
	}{
		{date(2026, 10, 17), date(2026, 8, 17)},
		{date(2026, 1, 15), date(2025, 11, 15)},
		{date(2026, 2, 28), date(2025, 12, 28)},
		{date(2026, 4, 30), date(2026, 2, 28)},
		{date(2024, 4, 30), date(2024, 2, 29)},
		{date(2026, 5, 31), date(2026, 3, 31)},
		{date(2026, 12, 31), date(2026, 10, 31)},
	}
	for _, tt := range tests {
		got := timecalc.MonthsBefore(tt.in, 2)
		if got != tt.want {
			t.Errorf("MonthsBefore(%s, 2) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestToday(t *testing.T) {
	// 23:30 UTC is already the next day in Berlin.
	now := time.Date(2026, 2, 27, 23, 30, 0, 0, time.UTC)
	if got := timecalc.Today(now, nil); got != date(2026, 2, 27) {
		t.Errorf("Today(nil) = %s, want 2026-02-27", got)
	}
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if got := timecalc.Today(now, berlin); got != date(2026, 2, 28) {
		t.Errorf("Today(Berlin) = %s, want 2026-02-28", got)
	}
}

func TestWeekRange(t *testing.T) {
	// 2026-02-27 is a Friday (week 9).
	monday, sunday := timecalc.WeekRange(date(2026, 2, 27))
	if monday != date(2026, 2, 23) {
		t.Errorf("WeekRange monday = %s, want 2026-02-23", monday)
	}
	if sunday != date(2026, 3, 1) {
		t.Errorf("WeekRange sunday = %s, want 2026-03-01", sunday)
	}

	monday, sunday = timecalc.WeekRange(date(2026, 3, 1))
	if monday != date(2026, 2, 23) || sunday != date(2026, 3, 1) {
		t.Errorf("WeekRange(Sunday) = %s..%s, want 2026-02-23..2026-03-01", monday, sunday)
	}
}

func TestISOWeekLabel(t *testing.T) {
	got := timecalc.ISOWeekLabel(date(2026, 2, 27))
	if got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}

func TestInRange(t *testing.T) {
	from, to := date(2026, 2, 23), date(2026, 3, 1)
	if !timecalc.InRange(from, from, to) || !timecalc.InRange(to, from, to) {
		t.Error("InRange: bounds should be inclusive")
	}
	if timecalc.InRange(date(2026, 3, 2), from, to) {
		t.Error("InRange: 2026-03-02 should be outside")
	}
}

func TestEndOfDay(t *testing.T) {
	got := timecalc.EndOfDay(date(2026, 2, 27), time.UTC)
	want := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("EndOfDay = %v, want %v", got, want)
	}
	if start := timecalc.StartOfDay(date(2026, 2, 27), time.UTC); !start.Equal(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartOfDay = %v", start)
	}
}
