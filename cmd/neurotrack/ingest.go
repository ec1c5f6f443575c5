// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/neurotrack/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch all enabled feeds and store the results",
	Long: `Ingest pulls PubMed, arXiv, the journal feeds, and Google News, scores
every item, and upserts the batch into the local database. Records already
present are refreshed in place; matching collection rules are applied to
newly stored records.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	log := newLogger()
	st, err := openStore(log)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	runner := ingest.NewRunner(st, trackerConfig().Feeds, log)
	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Fetched %d record(s), stored %d, skipped %d, invalid %d\n",
		summary.Fetched, summary.Stored, summary.Skipped, summary.Invalid)
	if summary.DupsRemoved > 0 {
		fmt.Printf("Removed %d cross-source duplicate(s)\n", summary.DupsRemoved)
	}
	if len(summary.SourceErrors) > 0 {
		fmt.Printf("Source errors:\n  %s\n", strings.Join(summary.SourceErrors, "\n  "))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
