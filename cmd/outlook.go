package cmd

import (
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/simple-timesheet/internal/outlook"
	"github.com/Tiliavir/simple-timesheet/internal/timecalc"
)

var (
	outlookFrom    string
	outlookTo      string
	outlookDate    string
	outlookUser    string
	outlookDryRun  bool
	outlookProject string
	outlookTZ      string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import Outlook calendar events as timesheet entries",
	Long: `Import busy, timed Outlook calendar events as timesheet entries.

Cancelled, all-day, private and free events are ignored. Each event becomes an
entry on its start date with the duration rounded to two decimals. Entries the
server rejects (for example dates outside the accepted window) are reported and
skipped.`,
	Args: cobra.NoArgs,
	RunE: runOutlookImport,
}

func init() {
	outlookImportCmd.Flags().StringVar(&outlookFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	outlookImportCmd.Flags().StringVar(&outlookTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	outlookImportCmd.Flags().StringVar(&outlookDate, "date", "", "Import a specific date (YYYY-MM-DD)")
	outlookImportCmd.Flags().StringVar(&outlookUser, "user", os.Getenv("USER"), "User name recorded on imported entries")
	outlookImportCmd.Flags().BoolVar(&outlookDryRun, "dry-run", false, "Print planned entries without submitting them")
	outlookImportCmd.Flags().StringVar(&outlookProject, "project", "", "Project for imported events (overrides outlook.default_project)")
	outlookImportCmd.Flags().StringVar(&outlookTZ, "timezone", "", "IANA timezone for event times (overrides outlook.timezone)")
	outlookImportCmd.MarkFlagsMutuallyExclusive("date", "from")
	outlookImportCmd.MarkFlagsMutuallyExclusive("date", "to")
	outlookCmd.AddCommand(outlookImportCmd)
}

// importRange resolves the --date, --from and --to flags into an inclusive
// date range. With no flags the range is today only.
func importRange(date, from, to string, today civil.Date) (civil.Date, civil.Date, error) {
	switch {
	case date != "":
		d, err := parseDateFlag("date", date, today)
		return d, d, err
	case from != "" || to != "":
		if from == "" {
			return civil.Date{}, civil.Date{}, fmt.Errorf("--from is required when --to is specified")
		}
		start, err := parseDateFlag("from", from, today)
		if err != nil {
			return civil.Date{}, civil.Date{}, err
		}
		end, err := parseDateFlag("to", to, today)
		if err != nil {
			return civil.Date{}, civil.Date{}, err
		}
		if end.Before(start) {
			return civil.Date{}, civil.Date{}, fmt.Errorf("--to %s is before --from %s", end, start)
		}
		return start, end, nil
	default:
		return today, today, nil
	}
}

func runOutlookImport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := cmd.Context()

	timezone := cfg.Outlook.Timezone
	if outlookTZ != "" {
		timezone = outlookTZ
	}
	project := cfg.Outlook.DefaultProject
	if outlookProject != "" {
		project = outlookProject
	}

	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --timezone value %q: %v\n", timezone, err)
			os.Exit(1)
		}
		loc = l
	}

	from, to, err := importRange(outlookDate, outlookFrom, outlookTo, timecalc.Today(time.Now(), loc))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	dryTag := ""
	if outlookDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Printf("Importing Outlook events (%s → %s)%s...\n", from, to, dryTag)
	fmt.Println()

	tokenPath, err := outlook.DefaultTokenPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	auth := &outlook.Authenticator{
		TenantID:  cfg.Outlook.TenantID,
		ClientID:  cfg.Outlook.ClientID,
		TokenPath: tokenPath,
		Out:       os.Stderr,
	}
	httpClient, err := auth.HTTPClient(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
		os.Exit(1)
	}

	graph := outlook.NewClient(httpClient, "")
	events, err := graph.GetCalendarView(ctx, timecalc.StartOfDay(from, loc), timecalc.EndOfDay(to, loc), timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch calendar events: %v\n", err)
		os.Exit(1)
	}

	opts := outlook.ImportOptions{
		User:     outlookUser,
		Project:  project,
		Timezone: timezone,
		DryRun:   outlookDryRun,
		Out:      os.Stdout,
	}
	result, err := outlook.Import(ctx, events, opts, newClient(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import error: %v\n", err)
		os.Exit(2)
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d imported\n", result.Imported)
	fmt.Printf("  %d skipped\n", result.Skipped)
	fmt.Printf("  %d rejected\n", result.Rejected)
	if result.Errors > 0 {
		fmt.Printf("  %d errors\n", result.Errors)
		os.Exit(2)
	}
	return nil
}
