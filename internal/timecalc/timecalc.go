package timecalc

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Today returns the calendar date of now in loc. A nil loc means now's own location.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc != nil {
		now = now.In(loc)
	}
	return civil.DateOf(now)
}

// MonthsBefore returns the same day-of-month n calendar months before d.
// When the target month is shorter, the day is clamped to its last day
// (30 April minus two months is 28 or 29 February).
func MonthsBefore(d civil.Date, n int) civil.Date {
	// Go months are 1-based; shift to 0-based for the modulo arithmetic.
	total := d.Year*12 + int(d.Month) - 1 - n
	year, month := total/12, time.Month(total%12+1)
	day := d.Day
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WeekRange returns the Monday and Sunday of the ISO week containing d.
func WeekRange(d civil.Date) (civil.Date, civil.Date) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(d.In(time.UTC).Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := d.AddDays(-(wd - 1))
	return monday, monday.AddDays(6)
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(d civil.Date) string {
	year, week := d.In(time.UTC).ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// InRange reports whether d lies in [from, to].
func InRange(d, from, to civil.Date) bool {
	return !d.Before(from) && !d.After(to)
}

// FormatHours renders hours in their shortest natural decimal form:
// 3 → "3", 2.5 → "2.5", 0.25 → "0.25".
func FormatHours(h float64) string {
	return decimal.NewFromFloat(h).String()
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// StartOfDay returns 00:00:00 of d in loc.
func StartOfDay(d civil.Date, loc *time.Location) time.Time {
	return d.In(loc)
}

// EndOfDay returns 23:59:59 of d in loc.
func EndOfDay(d civil.Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 0, loc)
}
