// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest runs one fetch-and-store cycle: pull every enabled feed,
// de-duplicate, score, and upsert into the record store.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/neurotrack/internal/feeds"
	"github.com/pdiddy/neurotrack/internal/metrics"
	"github.com/pdiddy/neurotrack/internal/store"
	"github.com/pdiddy/neurotrack/pkg/types"
)

// Runner executes ingestion cycles against a single store.
type Runner struct {
	store   *store.Store
	cfg     types.FeedsConfig
	log     zerolog.Logger
	sources []feeds.Source
}

// NewRunner builds a runner for the sources enabled in the configuration.
func NewRunner(st *store.Store, cfg types.FeedsConfig, log zerolog.Logger) *Runner {
	enabled := feeds.Enabled(cfg)
	sources := make([]feeds.Source, len(enabled))
	for i, src := range enabled {
		sources[i] = &instrumentedSource{src}
	}
	return &Runner{store: st, cfg: cfg, log: log, sources: sources}
}

// Summary reports one ingestion cycle.
type Summary struct {
	Fetched      int      `json:"fetched"`
	DupsRemoved  int      `json:"dups_removed"`
	Stored       int      `json:"stored"`
	Skipped      int      `json:"skipped"`
	Invalid      int      `json:"invalid"`
	SourceErrors []string `json:"source_errors,omitempty"`
}

// Run fetches all enabled feeds and upserts the merged records. Source
// failures degrade the cycle; a storage failure aborts it.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	out := feeds.FetchAll(ctx, r.sources, r.cfg, r.log)

	upsert, err := r.store.UpsertBatch(ctx, out.Records)
	if err != nil {
		return Summary{}, fmt.Errorf("storing fetched records: %w", err)
	}

	metrics.ObserveIngest(upsert.Stored, upsert.Skipped, upsert.Invalid)
	r.log.Info().
		Int("fetched", len(out.Records)).
		Int("stored", upsert.Stored).
		Int("skipped", upsert.Skipped).
		Int("invalid", upsert.Invalid).
		Int("dups_removed", out.DupsRemoved).
		Msg("ingestion cycle complete")

	return Summary{
		Fetched:      len(out.Records),
		DupsRemoved:  out.DupsRemoved,
		Stored:       upsert.Stored,
		Skipped:      upsert.Skipped,
		Invalid:      upsert.Invalid,
		SourceErrors: out.SourceErrors,
	}, nil
}

// instrumentedSource reports fetch duration and failures to Prometheus.
type instrumentedSource struct {
	feeds.Source
}

func (s *instrumentedSource) Fetch(ctx context.Context, cfg types.FeedsConfig) ([]types.Record, error) {
	start := time.Now()
	records, err := s.Source.Fetch(ctx, cfg)
	metrics.ObserveFeedFetch(s.Name(), start, err)
	return records, err
}
