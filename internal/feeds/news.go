// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feeds

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/pdiddy/neurotrack/internal/httputil"
	"github.com/pdiddy/neurotrack/pkg/types"
)

// newsAPIBase is the Google News RSS search endpoint. Declared as a var
// so tests can substitute an httptest server.
var newsAPIBase = "https://news.google.com/rss/search"

// newsQueries are the industry searches run on each fetch cycle.
var newsQueries = []string{
	"Neuralink brain-computer interface",
	"Synchron BCI",
	"Blackrock Neurotech",
	"Paradromics neural",
	"brain-computer interface FDA",
}

// newsPerQueryLimit caps the items taken from each query's feed.
const newsPerQueryLimit = 8

// newsDedupPrefix is the number of characters of the lowercased title
// used to spot near-duplicate coverage across queries.
const newsDedupPrefix = 60

// NewsSource fetches industry news from Google News RSS. The same story
// often appears under several queries, so items are de-duplicated by
// title prefix before being returned.
type NewsSource struct{}

// Name returns the source identifier.
func (s *NewsSource) Name() string { return "news" }

// Fetch runs all news queries concurrently. A failing query is skipped;
// the source only errors when every query failed.
func (s *NewsSource) Fetch(ctx context.Context, cfg types.FeedsConfig) ([]types.Record, error) {
	results := make([][]types.Record, len(newsQueries))
	errs := make([]error, len(newsQueries))

	var wg sync.WaitGroup
	for i, query := range newsQueries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			results[i], errs[i] = s.fetchQuery(ctx, cfg, query)
		}(i, query)
	}
	wg.Wait()

	var records []types.Record
	var failures []string
	for i := range results {
		if errs[i] != nil {
			failures = append(failures, fmt.Sprintf("%q: %v", newsQueries[i], errs[i]))
			continue
		}
		records = append(records, results[i]...)
	}
	if len(records) == 0 && len(failures) > 0 {
		return nil, fmt.Errorf("all news queries failed: %s", strings.Join(failures, "; "))
	}
	return dedupeByTitle(records), nil
}

func (s *NewsSource) fetchQuery(ctx context.Context, cfg types.FeedsConfig, query string) ([]types.Record, error) {
	endpoint := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en", newsAPIBase, url.QueryEscape(query))

	body, err := httputil.GetBody(ctx, cfg.HTTPConfig, endpoint)
	if err != nil {
		return nil, err
	}
	items, err := parseFeedItems(body)
	if err != nil {
		return nil, fmt.Errorf("parsing news feed: %w", err)
	}
	if len(items) > newsPerQueryLimit {
		items = items[:newsPerQueryLimit]
	}

	var records []types.Record
	for _, item := range items {
		if item.Link == "" {
			continue
		}
		source := item.Source
		if source == "" {
			source = "News"
		}
		records = append(records, types.Record{
			URL:      item.Link,
			Title:    stripHTML(item.Title),
			Authors:  item.Source,
			Source:   source,
			Date:     item.Date,
			Abstract: cleanAbstract(item.Description),
			Category: types.CategoryNews,
			Provider: "Google News",
		})
	}
	return records, nil
}

// dedupeByTitle keeps the first record for each lowercased title prefix.
func dedupeByTitle(records []types.Record) []types.Record {
	seen := make(map[string]struct{}, len(records))
	deduped := make([]types.Record, 0, len(records))
	for _, rec := range records {
		key := strings.ToLower(rec.Title)
		if len(key) > newsDedupPrefix {
			key = key[:newsDedupPrefix]
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, rec)
	}
	return deduped
}
