// Package cli implements the uel-sync command line interface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/locnguyen/uel-calendar-sync/internal/calendar"
	"github.com/locnguyen/uel-calendar-sync/internal/config"
	"github.com/locnguyen/uel-calendar-sync/internal/gcal"
	"github.com/locnguyen/uel-calendar-sync/internal/history"
	"github.com/locnguyen/uel-calendar-sync/internal/server"
	"github.com/locnguyen/uel-calendar-sync/internal/syncer"
	"github.com/locnguyen/uel-calendar-sync/internal/timetable"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig    string
	flagHTMLFile  string
	flagDateRange string
	flagFormat    string
	flagToken     string
	flagUser      string
	flagOut       string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uel-sync",
		Short: "Sync the UEL timetable to Google Calendar",
		Long: `Extracts class-schedule events from a saved UEL timetable page and
reconciles them against Google Calendar, inserting only the events that are
not there yet.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "~/.config/uel-sync/config.yaml", "Config file path")

	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract schedule events from a timetable HTML file",
		RunE:  runExtract,
	}
	cmd.Flags().StringVar(&flagHTMLFile, "html", "", "Path to the saved timetable HTML (required)")
	cmd.Flags().StringVar(&flagDateRange, "range", "", `Week sentence, e.g. "Từ ngày 01/07/2024 đến ngày 07/07/2024" (required)`)
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.MarkFlagRequired("html")
	cmd.MarkFlagRequired("range")
	return cmd
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Extract and sync one week to Google Calendar",
		RunE:  runSync,
	}
	cmd.Flags().StringVar(&flagHTMLFile, "html", "", "Path to the saved timetable HTML (required)")
	cmd.Flags().StringVar(&flagDateRange, "range", "", "Week sentence (required)")
	cmd.Flags().StringVar(&flagToken, "token", "", "Google OAuth access token (default $GOOGLE_ACCESS_TOKEN)")
	cmd.Flags().StringVar(&flagUser, "user", "", "User id recorded in sync history")
	cmd.MarkFlagRequired("html")
	cmd.MarkFlagRequired("range")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an extracted week as an .ics file",
		RunE:  runExport,
	}
	cmd.Flags().StringVar(&flagHTMLFile, "html", "", "Path to the saved timetable HTML (required)")
	cmd.Flags().StringVar(&flagDateRange, "range", "", "Week sentence (required)")
	cmd.Flags().StringVar(&flagOut, "out", "week.ics", "Output .ics path")
	cmd.MarkFlagRequired("html")
	cmd.MarkFlagRequired("range")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the sync endpoint for the browser extension",
		RunE:  runServe,
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs",
		RunE:  runHistory,
	}
}

func loadConfig() (*config.Config, error) {
	path := flagConfig
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = home + path[1:]
	}
	return config.Load(path)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	html, err := os.ReadFile(flagHTMLFile)
	if err != nil {
		return fmt.Errorf("reading timetable HTML: %w", err)
	}

	events, week, err := timetable.NewWithTableID(cfg.TableID).Extract(string(html), flagDateRange)
	if err != nil {
		return fmt.Errorf("extracting schedule: %w", err)
	}

	result := &OutputResult{
		Week:       week,
		Events:     events,
		EventCount: len(events),
	}
	return WriteOutput(os.Stdout, result, format)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	token := flagToken
	if token == "" {
		token = os.Getenv("GOOGLE_ACCESS_TOKEN")
	}
	if token == "" {
		return fmt.Errorf("access token required (--token or $GOOGLE_ACCESS_TOKEN)")
	}

	html, err := os.ReadFile(flagHTMLFile)
	if err != nil {
		return fmt.Errorf("reading timetable HTML: %w", err)
	}

	events, week, err := timetable.NewWithTableID(cfg.TableID).Extract(string(html), flagDateRange)
	if err != nil {
		return fmt.Errorf("extracting schedule: %w", err)
	}

	engine := syncer.NewWithOptions(gcal.NewClient(token), cfg.Palette, cfg.ReminderMinutes)
	summary, err := engine.Sync(events, week)
	if err != nil {
		return fmt.Errorf("syncing: %w", err)
	}

	if store, err := history.New(cfg.DataDir); err == nil {
		if err := store.Append(flagUser, *summary); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not record history: %v\n", err)
		}
	}

	fmt.Printf("%s\n", summary.Message)
	fmt.Printf("Week: %s  Added: %d  Skipped: %d  Errors: %d  Time: %.2fs\n",
		summary.Week, summary.Added, summary.Skipped, summary.Errors, summary.ProcessingTime)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	html, err := os.ReadFile(flagHTMLFile)
	if err != nil {
		return fmt.Errorf("reading timetable HTML: %w", err)
	}

	events, week, err := timetable.NewWithTableID(cfg.TableID).Extract(string(html), flagDateRange)
	if err != nil {
		return fmt.Errorf("extracting schedule: %w", err)
	}

	ics := calendar.WeekICS(events, week)
	if err := os.WriteFile(flagOut, []byte(ics), 0644); err != nil {
		return fmt.Errorf("writing ICS file: %w", err)
	}

	fmt.Printf("Wrote %d events for %s to %s\n", len(events), week.Label(), flagOut)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := history.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing history: %w", err)
	}

	return server.New(cfg, store).Listen()
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := history.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing history: %w", err)
	}

	records, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No sync runs recorded.")
		return nil
	}
	for _, r := range records {
		fmt.Printf("%s  week=%s added=%d skipped=%d errors=%d\n",
			r.SyncedAt, r.Summary.Week, r.Summary.Added, r.Summary.Skipped, r.Summary.Errors)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
