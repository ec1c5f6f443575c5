// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/neurotrack/internal/briefing"
)

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Send the daily briefing to active subscribers",
	Long: `Briefing collects the records stored in the configured window, renders
the HTML digest, and mails it to every active subscriber. SMTP credentials
are read from .secrets/smtp-user and .secrets/smtp-password.`,
	RunE: runBriefing,
}

func runBriefing(cmd *cobra.Command, args []string) error {
	log := newLogger()
	st, err := openStore(log)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	result, err := briefing.Send(ctx, st, trackerConfig().Briefing, smtpCredentials(), log)
	if err != nil {
		return err
	}

	if result.Skipped != "" {
		fmt.Printf("Briefing skipped: %s\n", result.Skipped)
		return nil
	}
	fmt.Printf("Briefing sent to %d subscriber(s), covering %d record(s)\n",
		result.Sent, result.Records)
	return nil
}

func init() {
	rootCmd.AddCommand(briefingCmd)
}
