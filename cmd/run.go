package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/yellowpages-leads/internal/config"
	"github.com/JakeFAU/yellowpages-leads/internal/export"
	"github.com/JakeFAU/yellowpages-leads/internal/leads"
	"github.com/JakeFAU/yellowpages-leads/internal/metrics"
)

// ErrMissingSearch is returned when neither batch mode nor a complete single
// search was requested.
var ErrMissingSearch = errors.New("either provide --input-config for batch mode or both --keyword and --location for a single search")

func run(ctx context.Context, a *app, opts *options) error {
	var (
		found  []leads.Lead
		suffix string
	)

	if opts.inputConfig != "" {
		queries, err := config.LoadSearches(opts.inputConfig, a.logger)
		if err != nil {
			return err
		}
		found = a.scraper.RunBatch(ctx, queries, a.settings.BatchConcurrency)
		suffix = export.SuffixBatch
	} else {
		if opts.keyword == "" || opts.location == "" {
			a.logger.Error("Missing search arguments", zap.Error(ErrMissingSearch))
			return ErrMissingSearch
		}
		q := leads.SearchQuery{Keyword: opts.keyword, Location: opts.location, Pages: opts.pages}
		a.logger.Info("Running single search",
			zap.String("keyword", q.Keyword),
			zap.String("location", q.Location),
			zap.Int("pages", q.Pages),
		)
		found = a.scraper.Search(ctx, q)
		a.logger.Info("Collected leads", zap.Int("count", len(found)))
		suffix = export.SuffixSingle
	}

	defer a.writeMetrics()

	if len(found) == 0 {
		a.logger.Warn("No leads were collected; nothing to export")
		return nil
	}

	paths, err := a.exportLeads(found, opts, suffix)
	for _, p := range paths {
		a.logger.Info("Exported leads", zap.Int("count", len(found)), zap.String("path", p))
	}
	return err
}

func (a *app) exportLeads(found []leads.Lead, opts *options, suffix string) ([]string, error) {
	now := a.now()
	var written []string
	for _, ext := range export.Extensions(opts.format) {
		path := export.ResolvePath(opts.output, a.settings.OutputDirectory, ext, suffix, now)
		switch ext {
		case export.FormatJSON:
			if err := export.WriteJSON(path, found); err != nil {
				return written, fmt.Errorf("export json: %w", err)
			}
		case export.FormatCSV:
			ok, err := export.WriteCSV(path, found)
			if err != nil {
				return written, fmt.Errorf("export csv: %w", err)
			}
			if !ok {
				continue
			}
		}
		written = append(written, path)
	}
	return written, nil
}

func (a *app) writeMetrics() {
	if a.settings.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(a.settings.MetricsTextfile); err != nil {
		a.logger.Warn("Failed to write metrics textfile", zap.Error(err))
		return
	}
	a.logger.Info("Wrote metrics textfile", zap.String("path", a.settings.MetricsTextfile))
}
