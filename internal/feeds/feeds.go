// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feeds fetches content from the external sources (PubMed, arXiv,
// journal RSS, Google News) and normalizes each item into a types.Record.
// The core never fetches anything itself; this layer runs before records
// reach the store.
package feeds

import (
	"context"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/pdiddy/neurotrack/internal/scoring"
	"github.com/pdiddy/neurotrack/pkg/types"
)

// Source fetches one external feed and returns normalized records.
type Source interface {
	Name() string
	Fetch(ctx context.Context, cfg types.FeedsConfig) ([]types.Record, error)
}

// Enabled returns the sources selected by the configuration.
func Enabled(cfg types.FeedsConfig) []Source {
	var sources []Source
	if cfg.EnablePubMed {
		sources = append(sources, &PubMedSource{})
	}
	if cfg.EnableArxiv {
		sources = append(sources, &ArxivSource{})
	}
	if cfg.EnableJournals {
		sources = append(sources, &JournalSource{})
	}
	if cfg.EnableNews {
		sources = append(sources, &NewsSource{})
	}
	return sources
}

// FetchOutput holds the merged records and per-source failures from one
// fetch cycle.
type FetchOutput struct {
	Records      []types.Record
	DupsRemoved  int
	SourceErrors []string
}

// FetchAll fans the fetch out to all sources concurrently. A failing
// source is reported and skipped; the cycle degrades to whatever the
// remaining sources returned. Results are de-duplicated by URL.
func FetchAll(ctx context.Context, sources []Source, cfg types.FeedsConfig, log zerolog.Logger) FetchOutput {
	type sourceResult struct {
		name    string
		records []types.Record
		err     error
	}

	ch := make(chan sourceResult, len(sources))
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			records, err := src.Fetch(ctx, cfg)
			ch <- sourceResult{name: src.Name(), records: records, err: err}
		}(src)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var out FetchOutput
	for res := range ch {
		if res.err != nil {
			log.Warn().Str("source", res.name).Err(res.err).Msg("feed fetch failed")
			out.SourceErrors = append(out.SourceErrors, res.name+": "+res.err.Error())
			continue
		}
		log.Info().Str("source", res.name).Int("records", len(res.records)).Msg("feed fetched")
		out.Records = append(out.Records, res.records...)
	}

	for i := range out.Records {
		out.Records[i].Date = normalizeDate(out.Records[i].Date)
	}
	out.Records, out.DupsRemoved = dedupeByURL(out.Records)
	return out
}

// normalizeDate rewrites parseable feed dates as ISO dates so that the
// store's string comparison orders and filters them chronologically.
// Unparseable values pass through unchanged.
func normalizeDate(s string) string {
	if t, ok := scoring.ParseDate(s); ok {
		return t.Format("2006-01-02")
	}
	return s
}

// dedupeByURL keeps the first sighting of each URL. Records without a URL
// pass through; the store skips them later.
func dedupeByURL(records []types.Record) ([]types.Record, int) {
	seen := make(map[string]struct{}, len(records))
	deduped := make([]types.Record, 0, len(records))
	removed := 0
	for _, rec := range records {
		if rec.URL != "" {
			if _, ok := seen[rec.URL]; ok {
				removed++
				continue
			}
			seen[rec.URL] = struct{}{}
		}
		deduped = append(deduped, rec)
	}
	return deduped, removed
}

// abstractLimit is the maximum abstract length in runes.
const abstractLimit = 300

// cleanAbstract strips HTML markup and truncates to abstractLimit runes.
func cleanAbstract(s string) string {
	return truncate(stripHTML(s), abstractLimit)
}

// stripHTML extracts the text content from a fragment that may contain
// markup. Plain text passes through unchanged.
func stripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

// collapseWhitespace normalizes runs of whitespace (arXiv wraps titles
// across lines) into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
