// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/neurotrack/internal/store"
	"github.com/pdiddy/neurotrack/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored records with filters and pagination",
	Long: `Search matches the free-text query against title, abstract, authors, and
source, combined with category, provider, and date filters. Results are
sorted by importance (default) or by date.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	log := newLogger()
	st, err := openStore(log)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := store.SearchOptions{}
	if len(args) > 0 {
		opts.Query = args[0]
	}
	category, _ := cmd.Flags().GetString("category")
	opts.Category = types.Category(category)
	opts.Provider, _ = cmd.Flags().GetString("provider")
	opts.DateFrom, _ = cmd.Flags().GetString("from")
	opts.DateTo, _ = cmd.Flags().GetString("to")
	opts.Page, _ = cmd.Flags().GetInt("page")
	opts.PageSize, _ = cmd.Flags().GetInt("page-size")
	if sortBy, _ := cmd.Flags().GetString("sort"); sortBy == "date" {
		opts.Sort = store.SortDate
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	page, err := st.Search(ctx, opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(page, jsonOutput)
}

func formatSearchOutput(page store.SearchPage, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}

	if page.Total == 0 {
		fmt.Println("No records found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-8s  %-50s  %-20s  %-12s\n",
		"Score", "Level", "Title", "Source", "Date")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 105))

	for _, rec := range page.Items {
		title := rec.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		source := rec.Source
		if len(source) > 20 {
			source = source[:20]
		}
		fmt.Fprintf(os.Stdout, "%-5d  %-8s  %-50s  %-20s  %-12s\n",
			rec.Importance, rec.ImportanceLevel, title, source, rec.Date)
	}

	fmt.Fprintf(os.Stdout, "\nPage %d (%d per page), %d total", page.Page, page.PageSize, page.Total)
	if page.HasMore {
		fmt.Fprint(os.Stdout, ", more available")
	}
	fmt.Fprintln(os.Stdout)
	return nil
}

func init() {
	searchCmd.Flags().String("category", "", "filter by category (journal, preprint, news)")
	searchCmd.Flags().String("provider", "", "filter by provider (e.g. PubMed, arXiv)")
	searchCmd.Flags().String("from", "", "date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "date range end (YYYY-MM-DD)")
	searchCmd.Flags().String("sort", "importance", "sort order: importance or date")
	searchCmd.Flags().Int("page", 1, "page number")
	searchCmd.Flags().Int("page-size", 0, "results per page (max 200)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
