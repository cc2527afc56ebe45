package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/simple-timesheet/internal/storage"
	"github.com/Tiliavir/simple-timesheet/internal/telemetry"
	"github.com/Tiliavir/simple-timesheet/internal/timecalc"
	"github.com/Tiliavir/simple-timesheet/internal/timesheet"
	"github.com/Tiliavir/simple-timesheet/internal/web"
)

var (
	serveAddr     string
	serveTimezone string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the timesheet web server",
	Long: `Run the timesheet web server. Entries live in memory and are lost when
the process exits.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides http_addr)")
	serveCmd.Flags().StringVar(&serveTimezone, "timezone", "", "IANA time zone deciding today's date (overrides timezone)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log.SetPrefix("[TIMESHEET] ")

	cfg := loadConfig()
	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}
	if serveTimezone != "" {
		cfg.Timezone = serveTimezone
	}
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.OTelEndpoint)
	if err != nil {
		log.Fatalf("init telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown telemetry: %v", err)
		}
	}()

	svc := timesheet.NewService(storage.NewMemory(), timesheet.WithLocation(loc))
	srv := web.NewServer(svc, web.Config{Addr: cfg.HTTPAddr, Location: loc})

	started := time.Now()
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Printf("server stopped: %v", err)
		return err
	}
	log.Printf("server stopped after %s with %d entries discarded",
		timecalc.FormatDuration(int64(time.Since(started).Seconds())), len(svc.GetAllEntries()))
	return nil
}
