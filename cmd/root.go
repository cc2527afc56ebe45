package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/simple-timesheet/internal/client"
	"github.com/Tiliavir/simple-timesheet/internal/config"
)

var (
	configPath string
	serverURL  string
)

var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Simple Timesheet – record hours worked and export them as CSV",
	Long: `timesheet runs a small web application where users record hours worked
per project and day, and export all entries as a CSV with daily totals.

"timesheet serve" hosts the entries in memory for the lifetime of the process.
The other commands talk to a running server.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.timesheet/config.json)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Timesheet server URL (overrides server_url)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(outlookCmd)
}

// loadConfig reads the config file and applies the persistent flags.
// Failures are fatal with exit code 2.
func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	return cfg
}

func newClient(cfg config.Config) *client.Client {
	return client.New(cfg.ServerURL, &http.Client{Timeout: 30 * time.Second})
}
