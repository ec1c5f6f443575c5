// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/neurotrack/internal/httputil"
	"github.com/pdiddy/neurotrack/pkg/types"
)

// journalFeedLimit caps the number of items taken from each journal feed.
const journalFeedLimit = 15

// journalFeeds lists the journal RSS/Atom endpoints. Declared as a var so
// tests can substitute httptest servers.
var journalFeeds = []struct {
	URL  string
	Name string
}{
	{"https://www.nature.com/subjects/neuroscience.rss", "Nature Neuroscience"},
	{"https://www.nature.com/subjects/brain-machine-interface.rss", "Nature BMI"},
	{"https://www.science.org/action/showFeed?type=etoc&feed=rss&jc=science", "Science"},
	{"https://www.cell.com/neuron/rss", "Neuron (Cell)"},
}

// JournalSource fetches the journal feeds. A feed that fails is skipped;
// the source only errors when every feed failed.
type JournalSource struct{}

// Name returns the source identifier.
func (s *JournalSource) Name() string { return "journals" }

// Fetch pulls all journal feeds concurrently.
func (s *JournalSource) Fetch(ctx context.Context, cfg types.FeedsConfig) ([]types.Record, error) {
	type feedResult struct {
		records []types.Record
		err     error
	}

	results := make([]feedResult, len(journalFeeds))
	var wg sync.WaitGroup
	for i, feed := range journalFeeds {
		wg.Add(1)
		go func(i int, feedURL, name string) {
			defer wg.Done()
			records, err := fetchFeed(ctx, cfg, feedURL, name)
			results[i] = feedResult{records: records, err: err}
		}(i, feed.URL, feed.Name)
	}
	wg.Wait()

	var records []types.Record
	var errs []string
	for i, res := range results {
		if res.err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", journalFeeds[i].Name, res.err))
			continue
		}
		records = append(records, res.records...)
	}
	if len(records) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("all journal feeds failed: %s", strings.Join(errs, "; "))
	}
	return records, nil
}

// fetchFeed retrieves one journal feed and normalizes its items.
func fetchFeed(ctx context.Context, cfg types.FeedsConfig, feedURL, sourceName string) ([]types.Record, error) {
	body, err := httputil.GetBody(ctx, cfg.HTTPConfig, feedURL)
	if err != nil {
		return nil, err
	}

	items, err := parseFeedItems(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s feed: %w", sourceName, err)
	}
	if len(items) > journalFeedLimit {
		items = items[:journalFeedLimit]
	}

	var records []types.Record
	for _, item := range items {
		if item.Link == "" {
			continue
		}
		records = append(records, types.Record{
			URL:      item.Link,
			Title:    stripHTML(item.Title),
			Source:   sourceName,
			Date:     item.Date,
			Abstract: cleanAbstract(item.Description),
			Category: types.CategoryJournal,
			Provider: sourceName,
		})
	}
	return records, nil
}

// feedItem is a normalized RSS or Atom entry.
type feedItem struct {
	Title       string
	Link        string
	Description string
	Date        string
	Source      string
}

// parseFeedItems decodes RSS 2.0 (<rss><channel><item>) and Atom
// (<feed><entry>) documents into a common item shape.
func parseFeedItems(body []byte) ([]feedItem, error) {
	var doc feedDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	var items []feedItem
	if doc.Channel != nil {
		for _, it := range doc.Channel.Items {
			items = append(items, feedItem{
				Title:       strings.TrimSpace(it.Title),
				Link:        strings.TrimSpace(it.Link),
				Description: it.Description,
				Date:        firstNonEmpty(it.PubDate, it.DCDate),
				Source:      strings.TrimSpace(it.Source),
			})
		}
		return items, nil
	}
	for _, entry := range doc.Entries {
		items = append(items, feedItem{
			Title:       strings.TrimSpace(entry.Title),
			Link:        entry.linkHref(),
			Description: firstNonEmpty(entry.Summary, entry.Content),
			Date:        firstNonEmpty(entry.Published, entry.Updated),
		})
	}
	return items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// feedDocument matches either a <rss> or a <feed> root element.
type feedDocument struct {
	Channel *rssChannel `xml:"channel"`
	Entries []atomEntry `xml:"entry"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	DCDate      string `xml:"date"`
	Source      string `xml:"source"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// linkHref prefers the rel="alternate" link, falling back to the first.
func (e atomEntry) linkHref() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" || l.Rel == "" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(e.Links) > 0 {
		return strings.TrimSpace(e.Links[0].Href)
	}
	return ""
}
