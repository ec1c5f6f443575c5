// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/neurotrack/internal/store"
	"github.com/pdiddy/neurotrack/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored records to YAML or JSON",
	Long: `Export writes every stored record to stdout or a file, most important
first. The same filters as search apply.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	log := newLogger()
	st, err := openStore(log)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := store.SearchOptions{PageSize: 200}
	category, _ := cmd.Flags().GetString("category")
	opts.Category = types.Category(category)
	opts.Provider, _ = cmd.Flags().GetString("provider")

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	var records []types.Record
	for page := 1; ; page++ {
		opts.Page = page
		result, err := st.Search(ctx, opts)
		if err != nil {
			return err
		}
		records = append(records, result.Items...)
		if !result.HasMore {
			break
		}
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(records)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		return fmt.Errorf("unknown format %q: use yaml or json", format)
	}
}

func init() {
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	exportCmd.Flags().String("output", "", "output file (default stdout)")
	exportCmd.Flags().String("category", "", "filter by category")
	exportCmd.Flags().String("provider", "", "filter by provider")

	rootCmd.AddCommand(exportCmd)
}
