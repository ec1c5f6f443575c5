// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the neurotrack CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/neurotrack/internal/briefing"
	"github.com/pdiddy/neurotrack/internal/logging"
	"github.com/pdiddy/neurotrack/internal/secrets"
	"github.com/pdiddy/neurotrack/internal/store"
	"github.com/pdiddy/neurotrack/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the neurotrack CLI.
var rootCmd = &cobra.Command{
	Use:   "neurotrack",
	Short: "Track brain-computer interface research and industry news",
	Long: `neurotrack ingests BCI content from PubMed, arXiv, journal feeds, and
Google News into a local SQLite database, scores each record for importance,
and serves the collection through a CLI and an HTTP API.

Use ingest to pull the feeds, search and trends to query the database, and
serve to run the API with the dashboard endpoints.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./neurotrack.yaml or ~/.config/neurotrack/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("neurotrack")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "neurotrack"))
		}
	}

	viper.SetEnvPrefix("NEUROTRACK")
	viper.AutomaticEnv()

	viper.SetDefault("store.data_dir", "data")
	viper.SetDefault("store.default_page_size", 50)
	viper.SetDefault("feeds.timeout", "30s")
	viper.SetDefault("feeds.user_agent", "neurotrack/"+version)
	viper.SetDefault("feeds.query", "brain-computer interface")
	viper.SetDefault("feeds.max_results", 30)
	viper.SetDefault("feeds.enable_pubmed", true)
	viper.SetDefault("feeds.enable_arxiv", true)
	viper.SetDefault("feeds.enable_journals", true)
	viper.SetDefault("feeds.enable_news", true)
	viper.SetDefault("server.addr", ":3000")
	viper.SetDefault("briefing.smtp_host", "smtp.gmail.com")
	viper.SetDefault("briefing.smtp_port", 587)
	viper.SetDefault("briefing.window_hours", 24)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// trackerConfig assembles the component configurations from viper.
func trackerConfig() types.TrackerConfig {
	return types.TrackerConfig{
		Store: types.StoreConfig{
			DataDir:         viper.GetString("store.data_dir"),
			DefaultPageSize: viper.GetInt("store.default_page_size"),
		},
		Feeds: types.FeedsConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("feeds.timeout"),
				UserAgent: viper.GetString("feeds.user_agent"),
			},
			Query:          viper.GetString("feeds.query"),
			MaxResults:     viper.GetInt("feeds.max_results"),
			EnablePubMed:   viper.GetBool("feeds.enable_pubmed"),
			EnableArxiv:    viper.GetBool("feeds.enable_arxiv"),
			EnableJournals: viper.GetBool("feeds.enable_journals"),
			EnableNews:     viper.GetBool("feeds.enable_news"),
		},
		Server: types.ServerConfig{
			Addr: viper.GetString("server.addr"),
		},
		Briefing: types.BriefingConfig{
			SMTPHost:     viper.GetString("briefing.smtp_host"),
			SMTPPort:     viper.GetInt("briefing.smtp_port"),
			From:         viper.GetString("briefing.from"),
			WindowHours:  viper.GetInt("briefing.window_hours"),
			DashboardURL: viper.GetString("briefing.dashboard_url"),
		},
	}
}

func newLogger() zerolog.Logger {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	return logging.New(verbose)
}

// openStore opens the record store for the configured data directory.
func openStore(log zerolog.Logger) (*store.Store, error) {
	return store.New(trackerConfig().Store, log)
}

// smtpCredentials builds the briefing credentials from loaded secrets.
func smtpCredentials() briefing.Credentials {
	return briefing.Credentials{
		User:     loadedSecrets["smtp-user"],
		Password: loadedSecrets["smtp-password"],
	}
}

// commandTimeout bounds one-shot CLI operations.
const commandTimeout = 5 * time.Minute

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
