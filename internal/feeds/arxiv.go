// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/neurotrack/internal/httputil"
	"github.com/pdiddy/neurotrack/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv API for recent preprints.
type ArxivSource struct{}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Fetch queries arXiv sorted by submission date and normalizes the Atom
// entries into preprint records.
func (s *ArxivSource) Fetch(ctx context.Context, cfg types.FeedsConfig) ([]types.Record, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}

	q := buildArxivQuery(cfg.Query)
	endpoint := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, q, maxResults)

	body, err := httputil.GetBody(ctx, cfg.HTTPConfig, endpoint)
	if err != nil {
		return nil, fmt.Errorf("arXiv: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var records []types.Record
	for _, entry := range feed.Entries {
		link := strings.TrimSpace(entry.ID)
		if link == "" {
			continue
		}

		var authors []string
		for _, a := range entry.Authors {
			authors = append(authors, strings.TrimSpace(a.Name))
		}

		records = append(records, types.Record{
			URL:      link,
			Title:    collapseWhitespace(entry.Title),
			Authors:  strings.Join(authors, ", "),
			Source:   "arXiv",
			Date:     strings.TrimSpace(entry.Published),
			Abstract: cleanAbstract(collapseWhitespace(entry.Summary)),
			Category: types.CategoryPreprint,
			Provider: "arXiv",
		})
	}
	return records, nil
}

// buildArxivQuery constructs the search_query parameter. Each word of the
// configured query becomes an all: term joined with AND.
func buildArxivQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		terms = []string{"brain-computer", "interface"}
	}
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		parts = append(parts, "all:"+url.QueryEscape(term))
	}
	return strings.Join(parts, "+AND+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}
