package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/simple-timesheet/internal/model"
	"github.com/Tiliavir/simple-timesheet/internal/timecalc"
)

var (
	addUser        string
	addHours       float64
	addDescription string
	addDate        string
)

var addCmd = &cobra.Command{
	Use:   "add <project>",
	Short: "Record hours worked on a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addUser, "user", os.Getenv("USER"), "Name of the person who did the work")
	addCmd.Flags().Float64Var(&addHours, "hours", 0, "Hours worked (greater than 0, at most 24)")
	addCmd.Flags().StringVar(&addDescription, "description", "", "What was done")
	addCmd.Flags().StringVar(&addDate, "date", "", "Day of the work (YYYY-MM-DD); defaults to today")
}

// entrySubmitter is the part of the API client add needs.
type entrySubmitter interface {
	AddEntry(ctx context.Context, in model.EntryInput) (model.Entry, error)
}

// parseDateFlag parses a YYYY-MM-DD flag value. An empty value means today.
func parseDateFlag(name, value string, today civil.Date) (civil.Date, error) {
	if value == "" {
		return today, nil
	}
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid --%s value %q: expected YYYY-MM-DD", name, value)
	}
	return d, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	date, err := parseDateFlag("date", addDate, timecalc.Today(time.Now(), loc))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	in := model.EntryInput{
		User:        addUser,
		Date:        date,
		Project:     args[0],
		Description: addDescription,
		Hours:       addHours,
	}
	if err := submitEntry(cmd.Context(), os.Stdout, newClient(cfg), in); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if model.IsValidation(err) {
			os.Exit(1)
		}
		os.Exit(2)
	}
	return nil
}

// submitEntry sends in and reports the stored entry on out.
func submitEntry(ctx context.Context, out io.Writer, sub entrySubmitter, in model.EntryInput) error {
	entry, err := sub.AddEntry(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Recorded %sh on %q for %s on %s.\n",
		timecalc.FormatHours(entry.Hours), entry.Project, entry.User, entry.Date)
	return nil
}
