// Package metrics exposes Prometheus collectors for the lead scraper.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch attempt outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeServerError    = "server_error"
	OutcomeClientError    = "client_error"
	OutcomeTransportError = "transport_error"
)

var (
	fetchAttemptsTotal        *prometheus.CounterVec
	fetchBytesTotal           *prometheus.CounterVec
	pagesParsedTotal          *prometheus.CounterVec
	leadsExtractedTotal       prometheus.Counter
	containersRejectedTotal   *prometheus.CounterVec
	searchesTotal             *prometheus.CounterVec
	searchDurationSeconds     prometheus.Histogram
	politenessDelaySecondsSum prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus collectors on the default registry.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ypleads_fetch_attempts_total",
				Help: "Total number of HTTP attempts, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ypleads_fetch_bytes_total",
				Help: "Total number of body bytes received with a 200 response, labeled by site.",
			},
			[]string{"site"},
		)

		pagesParsedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ypleads_pages_parsed_total",
				Help: "Total number of result pages parsed, labeled by whether they held listings.",
			},
			[]string{"result"},
		)

		leadsExtractedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ypleads_leads_extracted_total",
				Help: "Total number of leads extracted from result pages.",
			},
		)

		containersRejectedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ypleads_containers_rejected_total",
				Help: "Total number of listing containers that produced no lead, labeled by reason.",
			},
			[]string{"reason"},
		)

		searchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ypleads_searches_total",
				Help: "Total number of searches run, labeled by how pagination stopped.",
			},
			[]string{"stop"},
		)

		searchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ypleads_search_duration_seconds",
				Help:    "Histogram of wall time spent per search.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		)

		politenessDelaySecondsSum = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ypleads_politeness_delay_seconds_total",
				Help: "Total seconds slept before requests.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveFetchAttempt counts one HTTP attempt and, for successful ones, its body size.
func ObserveFetchAttempt(rawURL, outcome string, bytesFetched int) {
	Init()
	site := SanitizeSite(rawURL)
	fetchAttemptsTotal.WithLabelValues(site, outcome).Inc()
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(site).Add(float64(bytesFetched))
	}
}

// ObservePoliteDelay records time slept before a request.
func ObservePoliteDelay(d time.Duration) {
	Init()
	if d > 0 {
		politenessDelaySecondsSum.Add(d.Seconds())
	}
}

// ObservePage records one parsed page and the leads it produced.
func ObservePage(leadCount int) {
	Init()
	result := "listings"
	if leadCount == 0 {
		result = "empty"
	}
	pagesParsedTotal.WithLabelValues(result).Inc()
	leadsExtractedTotal.Add(float64(leadCount))
}

// ObserveRejectedContainer counts a container that yielded no lead.
func ObserveRejectedContainer(reason string) {
	Init()
	containersRejectedTotal.WithLabelValues(reason).Inc()
}

// ObserveSearch records a finished search and why it stopped paginating.
func ObserveSearch(stop string, duration time.Duration) {
	Init()
	searchesTotal.WithLabelValues(stop).Inc()
	searchDurationSeconds.Observe(duration.Seconds())
}

// WriteTextfile dumps the default registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	Init()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
