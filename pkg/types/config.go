// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "neurotrack/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StoreConfig holds settings for the record store.
type StoreConfig struct {
	// DataDir is the directory holding the SQLite database file.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DefaultPageSize is the page size used when a query does not
	// specify one (default 50). Requested sizes are clamped to [1,200].
	DefaultPageSize int `json:"default_page_size" yaml:"default_page_size"`
}

// FeedsConfig holds settings for the external feed adapters.
type FeedsConfig struct {
	HTTPConfig `yaml:",inline"`

	// Query is the topic query sent to the search-style feeds
	// (default "brain-computer interface").
	Query string `json:"query" yaml:"query"`

	// MaxResults caps the number of items requested per feed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnablePubMed, EnableArxiv, EnableJournals, and EnableNews toggle the
	// individual feed adapters.
	EnablePubMed   bool `json:"enable_pubmed" yaml:"enable_pubmed"`
	EnableArxiv    bool `json:"enable_arxiv" yaml:"enable_arxiv"`
	EnableJournals bool `json:"enable_journals" yaml:"enable_journals"`
	EnableNews     bool `json:"enable_news" yaml:"enable_news"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":3000").
	Addr string `json:"addr" yaml:"addr"`
}

// BriefingConfig holds settings for the daily briefing delivery.
type BriefingConfig struct {
	// SMTPHost and SMTPPort locate the outbound mail server. Credentials
	// come from the secrets directory (smtp-user, smtp-password).
	SMTPHost string `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `json:"smtp_port" yaml:"smtp_port"`

	// From is the sender address for briefing mail.
	From string `json:"from" yaml:"from"`

	// WindowHours selects how far back the briefing looks for new
	// records (default 24).
	WindowHours int `json:"window_hours" yaml:"window_hours"`

	// DashboardURL is linked from the briefing footer.
	DashboardURL string `json:"dashboard_url,omitempty" yaml:"dashboard_url,omitempty"`
}

// TrackerConfig groups all component configurations.
type TrackerConfig struct {
	Store    StoreConfig    `json:"store" yaml:"store"`
	Feeds    FeedsConfig    `json:"feeds" yaml:"feeds"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Briefing BriefingConfig `json:"briefing" yaml:"briefing"`
}
