// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage record collections",
	Long: `Collections group records by rule or by hand. Preset collections are
seeded at startup and classify new records automatically; custom collections
are curated with the add and remove subcommands.`,
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all collections with their item counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		collections, err := st.ListCollections(ctx)
		if err != nil {
			return err
		}
		for _, c := range collections {
			marker := " "
			if c.IsPreset {
				marker = "*"
			}
			fmt.Printf("%s %4d  %s %s (%d items)\n", marker, c.ID, c.Icon, c.Name, c.ItemCount)
		}
		if len(collections) > 0 {
			fmt.Println("\n* preset collection")
		}
		return nil
	},
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a custom collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		icon, _ := cmd.Flags().GetString("icon")

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		id, err := st.CreateCollection(ctx, args[0], icon)
		if err != nil {
			return err
		}
		fmt.Printf("Created collection %d: %s\n", id, args[0])
		return nil
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a custom collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid collection id %q", args[0])
		}

		log := newLogger()
		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		if err := st.DeleteCollection(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Deleted collection %d\n", id)
		return nil
	},
}

var collectionsAddCmd = &cobra.Command{
	Use:   "add <id> <record-url>",
	Short: "Add a record to a collection by URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid collection id %q", args[0])
		}

		log := newLogger()
		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		if err := st.AddToCollection(ctx, id, args[1], "manual"); err != nil {
			return err
		}
		fmt.Println("Added.")
		return nil
	},
}

var collectionsRemoveCmd = &cobra.Command{
	Use:   "remove <id> <record-url>",
	Short: "Remove a record from a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid collection id %q", args[0])
		}

		log := newLogger()
		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		if err := st.RemoveFromCollection(ctx, id, args[1]); err != nil {
			return err
		}
		fmt.Println("Removed.")
		return nil
	},
}

var collectionsClassifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Re-run rule classification over all stored records",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		if err := st.AutoClassify(ctx, nil); err != nil {
			return err
		}
		fmt.Println("Classification complete.")
		return nil
	},
}

func init() {
	collectionsCreateCmd.Flags().String("icon", "", "collection icon")

	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	collectionsCmd.AddCommand(collectionsAddCmd)
	collectionsCmd.AddCommand(collectionsRemoveCmd)
	collectionsCmd.AddCommand(collectionsClassifyCmd)
	rootCmd.AddCommand(collectionsCmd)
}
