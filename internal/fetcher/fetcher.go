// Package fetcher retrieves search result pages over HTTP using gocolly, with
// a randomized politeness delay and a retry policy tuned for flaky listing sites.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/yellowpages-leads/internal/metrics"
)

// Request headers sent with every attempt besides User-Agent.
const (
	HeaderAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	HeaderAcceptLanguage = "en-US,en;q=0.9"
)

const defaultTimeout = 20 * time.Second

var (
	// ErrClientStatus reports a non-200, non-5xx response. It is not retried.
	ErrClientStatus = errors.New("rejected by server")
	// ErrRetriesExhausted reports that every attempt failed transiently.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// Config controls request behavior. It is fixed for the lifetime of a Fetcher.
type Config struct {
	UserAgent string
	// DelayMin and DelayMax bound the random pause before each attempt, in seconds.
	DelayMin float64
	DelayMax float64
	// MaxRetries is the total number of attempts per URL.
	MaxRetries int
	// Proxies maps a URL scheme ("http", "https" or "all") to a proxy URL.
	Proxies map[string]string
	Timeout time.Duration
	// Transport overrides the HTTP transport; Proxies is ignored when set.
	Transport http.RoundTripper
}

// Fetcher issues GET requests for result pages.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	pauser        pauseController
	randFloat     func() float64
	logger        *zap.Logger
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

type attemptResult struct {
	statusCode int
	body       []byte
}

// New builds a Fetcher. It fails only when a configured proxy URL is invalid.
func New(cfg Config, logger *zap.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	transport := cfg.Transport
	if transport == nil {
		proxy, err := proxyFunc(cfg.Proxies)
		if err != nil {
			return nil, err
		}
		transport = newHTTPTransport(proxy)
	}

	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.UserAgent(cfg.UserAgent),
	)
	// Error statuses must reach OnResponse so the retry policy can see them.
	c.ParseHTTPErrorResponse = true
	c.WithTransport(transport)
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		pauser:        &timerPauseController{},
		randFloat:     rand.Float64,
		logger:        logger,
	}, nil
}

// Fetch returns the body of rawURL. Server errors and transport failures are
// retried up to MaxRetries attempts; any other non-200 status ends the fetch
// at once with ErrClientStatus.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	maxRetries := f.cfg.MaxRetries
	for attempt := 1; attempt <= maxRetries; attempt++ {
		f.logger.Info("Requesting",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
		)
		f.pause(ctx)
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("fetch %s: %w", rawURL, err)
		}

		res, err := f.attempt(ctx, rawURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", fmt.Errorf("fetch %s: %w", rawURL, ctxErr)
			}
			metrics.ObserveFetchAttempt(rawURL, metrics.OutcomeTransportError, 0)
			f.logger.Warn("Request failed",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Error(err),
			)
			if attempt == maxRetries {
				return "", fmt.Errorf("fetch %s: %w: %w", rawURL, ErrRetriesExhausted, err)
			}
			continue
		}

		switch {
		case res.statusCode >= http.StatusInternalServerError:
			metrics.ObserveFetchAttempt(rawURL, metrics.OutcomeServerError, 0)
			f.logger.Warn("Server error",
				zap.String("url", rawURL),
				zap.Int("status_code", res.statusCode),
				zap.Int("attempt", attempt),
			)
			continue
		case res.statusCode != http.StatusOK:
			metrics.ObserveFetchAttempt(rawURL, metrics.OutcomeClientError, 0)
			f.logger.Error("Non-OK status",
				zap.String("url", rawURL),
				zap.Int("status_code", res.statusCode),
				zap.Int("attempt", attempt),
			)
			return "", fmt.Errorf("fetch %s: status %d: %w", rawURL, res.statusCode, ErrClientStatus)
		}

		metrics.ObserveFetchAttempt(rawURL, metrics.OutcomeOK, len(res.body))
		f.logger.Debug("Received page", zap.String("url", rawURL), zap.Int("bytes", len(res.body)))
		return string(res.body), nil
	}
	return "", fmt.Errorf("fetch %s after %d attempts: %w", rawURL, maxRetries, ErrRetriesExhausted)
}

func (f *Fetcher) pause(ctx context.Context) {
	delay, ok := politeDelay(f.cfg.DelayMin, f.cfg.DelayMax, f.randFloat())
	if !ok {
		return
	}
	f.logger.Debug("Sleeping to throttle requests", zap.Duration("delay", delay))
	f.pauser.Pause(ctx, delay)
	metrics.ObservePoliteDelay(delay)
}

func (f *Fetcher) attempt(ctx context.Context, rawURL string) (attemptResult, error) {
	var (
		result   attemptResult
		fetchErr error
	)
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	collector.ParseHTTPErrorResponse = true
	f.configureCollectorHooks(collector, &result, &fetchErr)

	if err := collector.Visit(rawURL); err != nil {
		return attemptResult{}, fmt.Errorf("colly visit failed: %w", err)
	}
	if fetchErr != nil {
		return attemptResult{}, fmt.Errorf("colly response failed: %w", fetchErr)
	}
	if result.statusCode == 0 {
		return attemptResult{}, errors.New("colly fetch produced no result")
	}
	return result, nil
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, result *attemptResult, fetchErr *error) {
	hooks.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", f.cfg.UserAgent)
		r.Headers.Set("Accept", HeaderAccept)
		r.Headers.Set("Accept-Language", HeaderAcceptLanguage)
		r.Headers.Set("Connection", "keep-alive")
	})

	hooks.OnResponse(func(r *colly.Response) {
		*result = attemptResult{
			statusCode: r.StatusCode,
			body:       append([]byte(nil), r.Body...),
		}
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
}

func proxyFunc(proxies map[string]string) (func(*http.Request) (*url.URL, error), error) {
	if len(proxies) == 0 {
		return http.ProxyFromEnvironment, nil
	}
	parsed := make(map[string]*url.URL, len(proxies))
	for scheme, raw := range proxies {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse proxy for %q: %w", scheme, err)
		}
		parsed[strings.ToLower(scheme)] = u
	}
	return func(req *http.Request) (*url.URL, error) {
		if u, ok := parsed[req.URL.Scheme]; ok {
			return u, nil
		}
		if u, ok := parsed["all"]; ok {
			return u, nil
		}
		return http.ProxyFromEnvironment(req)
	}, nil
}

func newHTTPTransport(proxy func(*http.Request) (*url.URL, error)) *http.Transport {
	return &http.Transport{
		Proxy: proxy,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
