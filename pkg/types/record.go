// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Category classifies a content record by publication kind.
type Category string

const (
	CategoryJournal  Category = "journal"
	CategoryPreprint Category = "preprint"
	CategoryNews     Category = "news"
	CategoryAll      Category = "all"
)

// ImportanceLevel is the discrete tier derived from the importance score.
type ImportanceLevel string

const (
	LevelCritical ImportanceLevel = "critical"
	LevelHigh     ImportanceLevel = "high"
	LevelMedium   ImportanceLevel = "medium"
	LevelLow      ImportanceLevel = "low"
)

// Record is a single content item (journal article, preprint, or news item)
// normalized from one of the external feeds. The URL is the natural key for
// deduplication; two sightings of the same URL are the same record.
type Record struct {
	// URL uniquely identifies the record across all feeds.
	URL string `json:"url" yaml:"url"`

	// Title is the original title. Records without a title are rejected
	// at upsert time.
	Title string `json:"title" yaml:"title"`

	// TitleZh is an optional translated title.
	TitleZh string `json:"title_zh,omitempty" yaml:"title_zh,omitempty"`

	// Authors is the joined author list as provided by the feed.
	Authors string `json:"authors" yaml:"authors"`

	// Source is the human-readable outlet name (e.g. "Nature Neuroscience").
	Source string `json:"source" yaml:"source"`

	// Date is the publication date string as provided by the feed. It is
	// not guaranteed to parse; scoring and sorting degrade gracefully.
	Date string `json:"date" yaml:"date"`

	// Abstract is the summary text, HTML-stripped and truncated by the
	// feed adapters.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Category is journal, preprint, news, or empty when unspecified.
	Category Category `json:"category" yaml:"category"`

	// Provider identifies the feed the record came from (e.g. "PubMed",
	// "arXiv", "Google News"), distinct from Source.
	Provider string `json:"provider" yaml:"provider"`

	// Importance and ImportanceLevel are derived on every upsert from the
	// record's current field values. They are never set by feed adapters.
	Importance      int             `json:"importance" yaml:"importance"`
	ImportanceLevel ImportanceLevel `json:"importance_level" yaml:"importance_level"`

	// FetchedAt is the first-sighting timestamp, assigned by the store and
	// preserved across subsequent upserts.
	FetchedAt string `json:"fetched_at,omitempty" yaml:"fetched_at,omitempty"`
}

// Subscriber is a briefing recipient. Unsubscribing clears Active rather
// than deleting the row, so resubscribing restores the original record.
type Subscriber struct {
	ID        int64  `json:"id" yaml:"id"`
	Email     string `json:"email" yaml:"email"`
	Name      string `json:"name" yaml:"name"`
	Active    bool   `json:"active" yaml:"active"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

// Collection is a named grouping of records with an ordered set of
// lowercase match rules. Preset collections are seeded at startup and
// cannot be deleted.
type Collection struct {
	ID        int64    `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Icon      string   `json:"icon" yaml:"icon"`
	Rules     []string `json:"rules" yaml:"rules"`
	IsPreset  bool     `json:"is_preset" yaml:"is_preset"`
	ItemCount int      `json:"item_count" yaml:"item_count"`
	CreatedAt string   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// KeywordCount is one entry of the trending-keyword ranking.
type KeywordCount struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Count   int    `json:"count" yaml:"count"`
}

// Stats holds live per-category record counts.
type Stats struct {
	Total     int `json:"total" yaml:"total"`
	Journals  int `json:"journals" yaml:"journals"`
	Preprints int `json:"preprints" yaml:"preprints"`
	News      int `json:"news" yaml:"news"`
}
