// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/neurotrack/internal/httputil"
	"github.com/pdiddy/neurotrack/pkg/types"
)

// pubmedAPIBase is the NCBI E-utilities endpoint. Declared as a var so
// tests can substitute an httptest server.
var pubmedAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMedSource queries PubMed via the E-utilities API: esearch for the
// newest matching article IDs, then esummary for their metadata.
type PubMedSource struct{}

// Name returns the source identifier.
func (s *PubMedSource) Name() string { return "pubmed" }

// Fetch returns the newest PubMed articles matching the configured query.
func (s *PubMedSource) Fetch(ctx context.Context, cfg types.FeedsConfig) ([]types.Record, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}
	query := cfg.Query
	if query == "" {
		query = "brain-computer interface"
	}

	ids, err := s.search(ctx, cfg, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.summaries(ctx, cfg, ids)
}

func (s *PubMedSource) search(ctx context.Context, cfg types.FeedsConfig, query string, maxResults int) ([]string, error) {
	endpoint := fmt.Sprintf("%s/esearch.fcgi?db=pubmed&term=%s&retmax=%d&sort=date&retmode=json",
		pubmedAPIBase, url.QueryEscape(query), maxResults)

	body, err := httputil.GetBody(ctx, cfg.HTTPConfig, endpoint)
	if err != nil {
		return nil, fmt.Errorf("PubMed search: %w", err)
	}

	var result struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing PubMed search response: %w", err)
	}
	return result.ESearchResult.IDList, nil
}

// pubmedSummary is one article entry in an esummary response.
type pubmedSummary struct {
	Title           string `json:"title"`
	FullJournalName string `json:"fulljournalname"`
	Source          string `json:"source"`
	PubDate         string `json:"pubdate"`
	Authors         []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

func (s *PubMedSource) summaries(ctx context.Context, cfg types.FeedsConfig, ids []string) ([]types.Record, error) {
	endpoint := fmt.Sprintf("%s/esummary.fcgi?db=pubmed&id=%s&retmode=json",
		pubmedAPIBase, strings.Join(ids, ","))

	body, err := httputil.GetBody(ctx, cfg.HTTPConfig, endpoint)
	if err != nil {
		return nil, fmt.Errorf("PubMed summary: %w", err)
	}

	// The result object maps each UID to its summary alongside a "uids"
	// list, so the entries have to be decoded individually.
	var result struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing PubMed summary response: %w", err)
	}

	var uids []string
	if raw, ok := result.Result["uids"]; ok {
		if err := json.Unmarshal(raw, &uids); err != nil {
			return nil, fmt.Errorf("parsing PubMed uid list: %w", err)
		}
	}

	var records []types.Record
	for _, uid := range uids {
		raw, ok := result.Result[uid]
		if !ok {
			continue
		}
		var item pubmedSummary
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if strings.TrimSpace(item.Title) == "" {
			continue
		}

		var authors []string
		for _, a := range item.Authors {
			authors = append(authors, a.Name)
		}
		source := item.FullJournalName
		if source == "" {
			source = item.Source
		}

		records = append(records, types.Record{
			URL:      fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", uid),
			Title:    stripHTML(item.Title),
			Authors:  strings.Join(authors, ", "),
			Source:   source,
			Date:     item.PubDate,
			Category: types.CategoryJournal,
			Provider: "PubMed",
		})
	}
	return records, nil
}
