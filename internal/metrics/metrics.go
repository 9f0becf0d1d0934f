// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"newsLedger/internal/model"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "newsledger_submissions_total",
		Help: "Accepted article submissions by chain registration outcome.",
	}, []string{"chain_status"})

	VerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "newsledger_verifications_total",
		Help: "Verification requests by confirming source.",
	}, []string{"source"})

	UpstreamRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "newsledger_upstream_request_duration_seconds",
		Help:    "Duration of outbound fetches and chain calls.",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"component", "operation", "status"})

	CrawlArticlesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "newsledger_crawl_articles_total",
		Help: "Crawled article links by outcome.",
	}, []string{"source", "outcome"})
)

// MustRegister registers all collectors.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		SubmissionsTotal,
		VerificationsTotal,
		UpstreamRequestDuration,
		CrawlArticlesTotal,
	)
}

// ObserveUpstream records the duration and status of an outbound call.
func ObserveUpstream(component, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	UpstreamRequestDuration.WithLabelValues(component, operation, status).Observe(time.Since(start).Seconds())
}

// IncSubmission counts an accepted submission.
func IncSubmission(status model.ChainStatus) {
	SubmissionsTotal.WithLabelValues(string(status)).Inc()
}

// IncVerification counts a completed verification.
func IncVerification(source model.Source) {
	label := string(source)
	if label == "" {
		label = "none"
	}
	VerificationsTotal.WithLabelValues(label).Inc()
}

// IncCrawl counts a crawled link outcome.
func IncCrawl(source, outcome string) {
	CrawlArticlesTotal.WithLabelValues(source, outcome).Inc()
}
