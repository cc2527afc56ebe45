package timesheet

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/Tiliavir/simple-timesheet/internal/model"
	"github.com/Tiliavir/simple-timesheet/internal/timecalc"
)

// CSVHeader is the first line of every export.
const CSVHeader = "User Name,Date,Project,Description of Tasks,Hours Worked,Total Hours for the Day"

const lineEnd = "\n"

type dayKey struct {
	user string
	date civil.Date
}

// GenerateCsvOutput renders all stored entries as CSV, one row per entry in
// insertion order, each carrying the total hours its user logged that day.
// The output is identical for identical store contents.
func (s *Service) GenerateCsvOutput() string {
	entries := s.GetAllEntries()
	totals := dayTotals(entries)

	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteString(lineEnd)
	for _, e := range entries {
		total := totals[dayKey{e.User, e.Date}]
		fields := []string{
			csvEscape(e.User),
			csvEscape(e.Date.String()),
			csvEscape(e.Project),
			csvEscape(e.Description),
			timecalc.FormatHours(e.Hours),
			total.String(),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteString(lineEnd)
	}
	return b.String()
}

// dayTotals sums hours per (user, date).
func dayTotals(entries []model.Entry) map[dayKey]decimal.Decimal {
	totals := make(map[dayKey]decimal.Decimal, len(entries))
	for _, e := range entries {
		k := dayKey{e.User, e.Date}
		totals[k] = totals[k].Add(decimal.NewFromFloat(e.Hours))
	}
	return totals
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
// Blank fields render as the empty string.
func csvEscape(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
