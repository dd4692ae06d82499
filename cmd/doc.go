// Package cmd implements the yellowpages-leads command line.
//
// A run performs either one search (--keyword and --location, over --pages
// result pages) or a batch of searches read from --input-config, then writes
// the collected leads as JSON, CSV or both.
//
// Wiring:
//   - Settings come from the --settings JSON file through internal/config, with
//     YPLEADS_* environment overrides. A bad settings file never stops a run.
//   - internal/fetcher performs the HTTP GETs through gocolly with a random
//     politeness pause and retries; internal/parser extracts leads with goquery;
//     internal/scraper paginates and runs batches.
//   - When archive_directory is set, every fetched page is kept on disk by
//     internal/archive. When metrics_textfile is set, run metrics are written in
//     the Prometheus textfile format once the run ends.
//   - zap provides structured logging; each run carries a run_id field.
//
// Exit status is non-zero when the arguments are invalid, the batch file
// cannot be read, or an export fails.
package cmd
