// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show trending keywords across stored records",
	Long: `Trends counts how many stored records mention each vocabulary keyword in
its title or abstract and lists the most frequent ones. Use --from/--to to
restrict the count to a publication date range.`,
	RunE: runTrends,
}

func runTrends(cmd *cobra.Command, args []string) error {
	log := newLogger()
	st, err := openStore(log)
	if err != nil {
		return err
	}
	defer st.Close()

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	limit, _ := cmd.Flags().GetInt("limit")

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	keywords, err := st.TrendingKeywords(ctx, from, to, limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(keywords)
	}

	if len(keywords) == 0 {
		fmt.Println("No trending keywords.")
		return nil
	}
	for i, kw := range keywords {
		fmt.Printf("%2d. %-30s %d\n", i+1, kw.Keyword, kw.Count)
	}
	return nil
}

func init() {
	trendsCmd.Flags().String("from", "", "date range start (YYYY-MM-DD)")
	trendsCmd.Flags().String("to", "", "date range end (YYYY-MM-DD)")
	trendsCmd.Flags().Int("limit", 15, "maximum keywords to show")
	trendsCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(trendsCmd)
}
