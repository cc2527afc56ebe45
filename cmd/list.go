package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/simple-timesheet/internal/model"
	"github.com/Tiliavir/simple-timesheet/internal/timecalc"
)

var (
	listToday bool
	listWeek  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded entries",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listToday, "today", false, "Show today's entries")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show this week's entries")
	listCmd.MarkFlagsMutuallyExclusive("today", "week")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	entries, err := newClient(cfg).Entries(cmd.Context())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	today := timecalc.Today(time.Now(), loc)
	switch {
	case listWeek:
		from, to := timecalc.WeekRange(today)
		fmt.Printf("Week %s\n", timecalc.ISOWeekLabel(today))
		entries = filterEntries(entries, from, to)
	case listToday:
		entries = filterEntries(entries, today, today)
	}

	printList(os.Stdout, entries)
	return nil
}

// filterEntries keeps the entries dated within [from, to].
func filterEntries(entries []model.Entry, from, to civil.Date) []model.Entry {
	var out []model.Entry
	for _, e := range entries {
		if timecalc.InRange(e.Date, from, to) {
			out = append(out, e)
		}
	}
	return out
}

// printList groups entries by date and prints them with each user's day total.
// Dates are printed in ascending order; entries keep their recorded order.
func printList(w io.Writer, entries []model.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	byDay := map[civil.Date][]model.Entry{}
	var days []civil.Date
	for _, e := range entries {
		if _, seen := byDay[e.Date]; !seen {
			days = append(days, e.Date)
		}
		byDay[e.Date] = append(byDay[e.Date], e)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	for _, day := range days {
		fmt.Fprintln(w, day)
		totals := map[string]decimal.Decimal{}
		var users []string
		for _, e := range byDay[day] {
			if _, seen := totals[e.User]; !seen {
				users = append(users, e.User)
			}
			totals[e.User] = totals[e.User].Add(decimal.NewFromFloat(e.Hours))
			fmt.Fprintf(w, "  %-12s %-16s %6sh  %s\n", e.User, e.Project, timecalc.FormatHours(e.Hours), e.Description)
		}
		for _, u := range users {
			fmt.Fprintf(w, "  %-12s %-16s %6sh\n", u, "Total", totals[u].String())
		}
	}
}
