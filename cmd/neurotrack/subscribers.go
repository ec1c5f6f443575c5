// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var subscribersCmd = &cobra.Command{
	Use:   "subscribers",
	Short: "Manage briefing subscribers",
}

var subscribersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active subscribers",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		subscribers, err := st.ActiveSubscribers(ctx)
		if err != nil {
			return err
		}
		if len(subscribers) == 0 {
			fmt.Println("No active subscribers.")
			return nil
		}
		for _, s := range subscribers {
			if s.Name != "" {
				fmt.Printf("%s <%s>\n", s.Name, s.Email)
			} else {
				fmt.Println(s.Email)
			}
		}
		return nil
	},
}

var subscribersAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Subscribe an email address to the briefing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		name, _ := cmd.Flags().GetString("name")

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		if err := st.AddSubscriber(ctx, args[0], name); err != nil {
			return err
		}
		fmt.Printf("Subscribed %s\n", args[0])
		return nil
	},
}

var subscribersRemoveCmd = &cobra.Command{
	Use:   "remove <email>",
	Short: "Unsubscribe an email address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		if err := st.RemoveSubscriber(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Unsubscribed %s\n", args[0])
		return nil
	},
}

func init() {
	subscribersAddCmd.Flags().String("name", "", "subscriber display name")

	subscribersCmd.AddCommand(subscribersListCmd)
	subscribersCmd.AddCommand(subscribersAddCmd)
	subscribersCmd.AddCommand(subscribersRemoveCmd)
	rootCmd.AddCommand(subscribersCmd)
}
