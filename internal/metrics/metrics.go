// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the Prometheus collectors for the tracker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	IngestCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "neurotrack_ingest_cycles_total",
		Help: "Number of completed ingestion cycles",
	})

	RecordsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "neurotrack_records_ingested_total",
		Help: "Records processed per ingestion outcome",
	}, []string{"outcome"})

	FeedFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neurotrack_feed_fetch_duration_seconds",
		Help:    "Duration of external feed fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"source", "status"})

	FeedFetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "neurotrack_feed_fetch_errors_total",
		Help: "Failed feed fetches per source",
	}, []string{"source"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neurotrack_http_request_duration_seconds",
		Help:    "Duration of API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	BriefingsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "neurotrack_briefings_sent_total",
		Help: "Briefing emails delivered",
	})

	BriefingsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "neurotrack_briefings_skipped_total",
		Help: "Briefing runs skipped per reason",
	}, []string{"reason"})
)

// MustRegister registers all collectors with the registerer.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		IngestCycles,
		RecordsIngested,
		FeedFetchDuration,
		FeedFetchErrors,
		HTTPRequestDuration,
		BriefingsSent,
		BriefingsSkipped,
	)
}

// ObserveIngest records the outcome counts of one ingestion cycle.
func ObserveIngest(stored, skipped, invalid int) {
	IngestCycles.Inc()
	RecordsIngested.WithLabelValues("stored").Add(float64(stored))
	RecordsIngested.WithLabelValues("skipped").Add(float64(skipped))
	RecordsIngested.WithLabelValues("invalid").Add(float64(invalid))
}

// ObserveFeedFetch records the duration and status of one feed fetch.
func ObserveFeedFetch(source string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		FeedFetchErrors.WithLabelValues(source).Inc()
	}
	FeedFetchDuration.WithLabelValues(source, status).Observe(time.Since(start).Seconds())
}
