// Package scraper drives a directory search across result pages and collects
// the leads found on each one.
package scraper

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/yellowpages-leads/internal/leads"
	"github.com/JakeFAU/yellowpages-leads/internal/metrics"
)

// Reasons a search stopped paginating.
const (
	StopFetchFailed = "fetch_failed"
	StopEmptyPage   = "empty_page"
	StopMaxPages    = "max_pages"
)

const archiveContentType = "text/html; charset=utf-8"

// Fetcher returns the HTML of a page. Any error means there is no page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// PageParser extracts the leads on one result page.
type PageParser interface {
	ParsePage(html string) []leads.Lead
}

// PageArchive stores raw result pages.
type PageArchive interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Scraper runs searches against one directory site.
type Scraper struct {
	baseURL string
	fetcher Fetcher
	parser  PageParser
	archive PageArchive
	now     func() time.Time
	logger  *zap.Logger
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithArchive stores every fetched page in archive.
func WithArchive(archive PageArchive) Option {
	return func(s *Scraper) {
		s.archive = archive
	}
}

// New builds a Scraper for the site rooted at baseURL.
func New(baseURL string, fetcher Fetcher, parser PageParser, logger *zap.Logger, opts ...Option) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scraper{
		baseURL: baseURL,
		fetcher: fetcher,
		parser:  parser,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search walks result pages 1..q.Pages and returns their leads in page
// order. It stops early when a page cannot be fetched or holds no leads;
// whatever was collected up to that point is returned.
func (s *Scraper) Search(ctx context.Context, q leads.SearchQuery) []leads.Lead {
	start := time.Now()
	logger := s.logger.With(zap.String("keyword", q.Keyword), zap.String("location", q.Location))
	results := make([]leads.Lead, 0)
	stop := StopMaxPages

	for page := 1; page <= q.Pages; page++ {
		pageURL := BuildSearchURL(s.baseURL, q.Keyword, q.Location, page)
		logger.Debug("Built search URL", zap.String("url", pageURL))

		html, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			logger.Warn("Stopping search due to fetch failure", zap.Int("page", page), zap.Error(err))
			stop = StopFetchFailed
			break
		}
		s.archivePage(ctx, pageURL, html, logger)

		pageLeads := s.parser.ParsePage(html)
		metrics.ObservePage(len(pageLeads))
		if len(pageLeads) == 0 {
			logger.Info("No results found on page; assuming end of listings", zap.Int("page", page))
			stop = StopEmptyPage
			break
		}

		logger.Info("Parsed results from page", zap.Int("page", page), zap.Int("count", len(pageLeads)))
		results = append(results, pageLeads...)
	}

	metrics.ObserveSearch(stop, time.Since(start))
	return results
}

func (s *Scraper) archivePage(ctx context.Context, pageURL, html string, logger *zap.Logger) {
	if s.archive == nil {
		return
	}
	objectName := archiveObjectName(pageURL, s.now())
	uri, err := s.archive.PutObject(ctx, objectName, archiveContentType, strings.NewReader(html))
	if err != nil {
		logger.Warn("Failed to archive page", zap.String("url", pageURL), zap.Error(err))
		return
	}
	logger.Debug("Archived page", zap.String("url", pageURL), zap.String("uri", uri))
}

func archiveObjectName(pageURL string, fetchedAt time.Time) string {
	urlHash := fmt.Sprintf("%x", sha256.Sum256([]byte(pageURL)))
	return path.Join(
		"pages",
		fetchedAt.Format("2006-01-02"),
		fmt.Sprintf("%s.html", urlHash),
	)
}
