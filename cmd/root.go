package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/yellowpages-leads/internal/archive"
	"github.com/JakeFAU/yellowpages-leads/internal/config"
	"github.com/JakeFAU/yellowpages-leads/internal/export"
	"github.com/JakeFAU/yellowpages-leads/internal/fetcher"
	"github.com/JakeFAU/yellowpages-leads/internal/logging"
	"github.com/JakeFAU/yellowpages-leads/internal/parser"
	"github.com/JakeFAU/yellowpages-leads/internal/scraper"
)

// appKeyType is the key for storing the app in the command context.
type appKeyType string

const appKey appKeyType = "app"

type options struct {
	keyword      string
	location     string
	pages        int
	inputConfig  string
	settingsPath string
	output       string
	format       string
	logJSON      bool
	logLevel     string
}

// app holds the services shared by a single run.
type app struct {
	runID    string
	logger   *zap.Logger
	settings config.Settings
	scraper  *scraper.Scraper
	now      func() time.Time
}

// newApp builds the run's services. It is a variable so tests can wrap it.
var newApp = func(opts *options) (*app, error) {
	logger, err := logging.New(logging.Config{JSON: opts.logJSON, Level: opts.logLevel})
	if err != nil {
		return nil, err
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	logger = logger.With(zap.String("run_id", runID.String()))

	settings := config.Load(opts.settingsPath, logger)
	logger.Info("Using settings", zap.Stringer("settings", settings))

	f, err := fetcher.New(settings.FetchConfig(), logger.Named("fetcher"))
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	var scraperOpts []scraper.Option
	if settings.ArchiveDirectory != "" {
		store, err := archive.New(archive.Config{Dir: settings.ArchiveDirectory})
		if err != nil {
			return nil, fmt.Errorf("init page archive: %w", err)
		}
		logger.Info("Archiving fetched pages", zap.String("dir", store.Dir()))
		scraperOpts = append(scraperOpts, scraper.WithArchive(store))
	}

	s := scraper.New(settings.BaseURL, f, parser.New(logger.Named("parser")), logger.Named("scraper"), scraperOpts...)
	return &app{
		runID:    runID.String(),
		logger:   logger,
		settings: settings,
		scraper:  s,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "yellowpages-leads",
		Short: "Collect business leads from Yellow Pages search results.",
		Long: `yellowpages-leads searches the Yellow Pages directory for a keyword and
location, walks the result pages and exports the listings it finds as JSON
and/or CSV. Use --input-config to run many searches in one go.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !export.ValidFormat(opts.format) {
				return fmt.Errorf("invalid --format %q: must be one of json, csv, both", opts.format)
			}
			a, err := newApp(opts)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return run(cmd.Context(), a, opts)
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, err := resolveApp(cmd.Context()); err == nil {
				_ = a.logger.Sync() //nolint:errcheck // best-effort flush
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.keyword, "keyword", "", "business category or keyword, e.g. 'plumbers'")
	flags.StringVar(&opts.location, "location", "", "city and state, e.g. 'Los Angeles, CA'")
	flags.IntVar(&opts.pages, "pages", 1, "number of result pages to scrape for a single search")
	flags.StringVar(&opts.inputConfig, "input-config", "", "JSON file listing multiple searches (batch mode)")
	flags.StringVar(&opts.settingsPath, "settings", "", "settings JSON file")
	flags.StringVar(&opts.output, "output", "", "output file path; a timestamped file in the output directory is used when omitted")
	flags.StringVar(&opts.format, "format", export.FormatJSON, "output format: json, csv or both")
	flags.BoolVar(&opts.logJSON, "log-json", false, "emit JSON logs instead of console logs")
	flags.StringVar(&opts.logLevel, "log-level", "info", "minimum log level: debug, info, warn or error")

	return cmd
}

func resolveApp(ctx context.Context) (*app, error) {
	if ctx == nil {
		return nil, errors.New("application services not initialized")
	}
	a, ok := ctx.Value(appKey).(*app)
	if !ok || a == nil {
		return nil, errors.New("application services not initialized")
	}
	return a, nil
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
