// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record counts per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		stats, err := st.Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Total:     %d\n", stats.Total)
		fmt.Printf("Journals:  %d\n", stats.Journals)
		fmt.Printf("Preprints: %d\n", stats.Preprints)
		fmt.Printf("News:      %d\n", stats.News)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
