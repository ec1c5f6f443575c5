// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/neurotrack/internal/briefing"
	"github.com/pdiddy/neurotrack/internal/ingest"
	"github.com/pdiddy/neurotrack/internal/metrics"
	"github.com/pdiddy/neurotrack/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve runs the tracker API: record search, stats, trending keywords,
collections, subscribers, manual ingestion, and briefing triggers, plus
Prometheus metrics on /metrics. With --ingest-interval greater than zero
the server also runs ingestion cycles on a timer.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg := trackerConfig()

	st, err := openStore(log)
	if err != nil {
		return err
	}
	defer st.Close()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	runner := ingest.NewRunner(st, cfg.Feeds, log)
	briefer := func(ctx context.Context) (briefing.Result, error) {
		return briefing.Send(ctx, st, cfg.Briefing, smtpCredentials(), log)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interval, _ := cmd.Flags().GetDuration("ingest-interval")
	if interval > 0 {
		go ingestLoop(ctx, runner, interval, log)
	}

	srv := server.New(st, runner, briefer, log)
	return srv.Start(ctx, cfg.Server.Addr)
}

// ingestLoop runs ingestion cycles on a fixed timer until the context is
// cancelled. The first cycle runs immediately.
func ingestLoop(ctx context.Context, runner *ingest.Runner, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := runner.Run(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled ingestion failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func init() {
	serveCmd.Flags().Duration("ingest-interval", 30*time.Minute, "periodic ingestion interval (0 disables)")

	rootCmd.AddCommand(serveCmd)
}
