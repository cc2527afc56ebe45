package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the timesheet as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write the CSV to this file instead of stdout")
}

// csvSource is the part of the API client export needs.
type csvSource interface {
	CSV(ctx context.Context) ([]byte, error)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	var out io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		defer f.Close()
		out = f
	}

	if err := writeExport(cmd.Context(), out, newClient(cfg)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if exportOutput != "" {
		fmt.Fprintf(os.Stderr, "Timesheet written to %s\n", exportOutput)
	}
	return nil
}

// writeExport copies the server's CSV export to out unchanged.
func writeExport(ctx context.Context, out io.Writer, src csvSource) error {
	data, err := src.CSV(ctx)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
