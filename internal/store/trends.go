// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/neurotrack/pkg/types"
)

// trendVocabulary is the curated keyword list ranked by the trend
// analyzer. Ties in count are broken by position in this list.
var trendVocabulary = []string{
	"brain-computer interface", "BCI", "neural interface", "neuroprosthesis", "EEG",
	"intracortical", "neurostimulation", "neuromodulation", "brain-machine interface",
	"neural decoding", "spike sorting", "motor imagery", "P300", "SSVEP",
	"deep brain stimulation", "DBS", "electrocorticography", "ECoG", "fNIRS",
	"Neuralink", "Synchron", "Blackrock", "Paradromics", "FDA", "clinical trial",
	"speech decoding", "handwriting", "spinal cord", "paralysis", "prosthetic",
	"invasive", "non-invasive", "implant", "electrode", "neural network",
	"machine learning", "deep learning", "signal processing", "real-time",
	"closed-loop", "brain-spine", "optogenetics", "neuroplasticity", "rehabilitation",
}

// defaultTrendTopN bounds the trending result when no limit is given.
const defaultTrendTopN = 15

// TrendingKeywords counts, for each vocabulary term, the records in the
// optional date range whose title+abstract contain it at least once.
// Counting is presence-per-record: a term occurring twice in one record
// counts once. Terms with zero occurrences are excluded; the rest are
// sorted by count descending with vocabulary order as tie-break and
// truncated to topN (default 15).
func (s *Store) TrendingKeywords(ctx context.Context, dateFrom, dateTo string, topN int) ([]types.KeywordCount, error) {
	if topN <= 0 {
		topN = defaultTrendTopN
	}

	query := `SELECT title, abstract FROM records`
	var (
		conds []string
		args  []any
	)
	if dateFrom != "" {
		conds = append(conds, "date >= ?")
		args = append(args, dateFrom)
	}
	if dateTo != "" {
		conds = append(conds, "date <= ?")
		args = append(args, dateTo)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records for trends: %w", err)
	}
	defer rows.Close()

	counts := make([]int, len(trendVocabulary))
	lowered := make([]string, len(trendVocabulary))
	for i, term := range trendVocabulary {
		lowered[i] = strings.ToLower(term)
	}

	for rows.Next() {
		var title, abstract string
		if err := rows.Scan(&title, &abstract); err != nil {
			return nil, fmt.Errorf("scanning record text: %w", err)
		}
		text := strings.ToLower(title + " " + abstract)
		for i, term := range lowered {
			if strings.Contains(text, term) {
				counts[i]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var ranked []types.KeywordCount
	for i, term := range trendVocabulary {
		if counts[i] > 0 {
			ranked = append(ranked, types.KeywordCount{Keyword: term, Count: counts[i]})
		}
	}
	// Stable sort keeps vocabulary order for equal counts.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, nil
}
