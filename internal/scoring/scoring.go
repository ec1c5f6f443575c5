// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring computes the composite importance score for content
// records. The score combines source authority (35%), recency (25%), and
// keyword relevance (40%) into a 0-100 value and a discrete level. Scoring
// is a pure function of the record's current field values: the same record
// always produces the same score, so recomputation on every upsert is
// idempotent.
package scoring

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/neurotrack/pkg/types"
)

// Now returns the reference time for recency scoring. Tests override this
// to pin bucket boundaries.
var Now = time.Now

// defaultAuthority is used for outlets not present in the authority table.
const defaultAuthority = 40

// sourceAuthority maps known outlet and provider names to an authority
// value. Matching is a case-sensitive substring test against the record's
// Source and Provider, in declaration order, first match wins.
var sourceAuthority = []struct {
	Name  string
	Score int
}{
	{"Nature Neuroscience", 95},
	{"Nature BMI", 95},
	{"Nature Medicine", 95},
	{"Nature Materials", 95},
	{"Nature Biotechnology", 95},
	{"Nature", 95},
	{"Science Translational Medicine", 92},
	{"Science", 93},
	{"The Lancet Neurology", 92},
	{"The Lancet", 91},
	{"PNAS", 88},
	{"Neuron (Cell)", 90},
	{"Cell", 90},
	{"NEJM", 95},
	{"PubMed", 70},
	{"arXiv", 60},
	{"Google News", 50},
}

// keywordRule pairs a precompiled case-insensitive pattern with its weight.
// Every matching rule contributes its weight; the sum is capped at 100.
type keywordRule struct {
	re     *regexp.Regexp
	weight int
}

func rule(pattern string, weight int) keywordRule {
	return keywordRule{re: regexp.MustCompile(`(?i)` + pattern), weight: weight}
}

// keywordRules lists the high-value patterns tested against title+abstract.
// Compiled once at process start to avoid per-record allocation.
var keywordRules = []keywordRule{
	// Core technology.
	rule(`brain[-\s]?computer\s+interface`, 15),
	rule(`brain[-\s]?machine\s+interface`, 15),
	rule(`brain[-\s]?spine\s+interface`, 15),
	rule(`\bBCI\b`, 12),
	rule(`neural\s+(interface|implant|prosthe)`, 12),
	rule(`deep\s+brain\s+stimulation`, 10),

	// Milestone events.
	rule(`first[-\s]in[-\s]human`, 20),
	rule(`FDA\s+(clearance|approval|approved|clears)`, 20),
	rule(`clinical\s+trial`, 12),
	rule(`breakthrough`, 10),
	rule(`first\s+(ever|time|demonstration)`, 10),
	rule(`human\s+trial`, 15),
	rule(`restores?\s+(walking|speech|movement|vision|hearing)`, 15),

	// Key companies.
	rule(`Neuralink`, 18),
	rule(`Synchron`, 15),
	rule(`Blackrock\s+Neurotech`, 14),
	rule(`Paradromics`, 14),
	rule(`Precision\s+Neuroscience`, 13),
	rule(`Kernel`, 10),
	rule(`CTRL[-\s]?Labs`, 10),

	// Major funding.
	rule(`DARPA`, 12),
	rule(`NIH`, 8),
	rule(`\$\d+\s*[MB]`, 10),

	// Technical directions.
	rule(`wireless`, 5),
	rule(`high[-\s]?density`, 5),
	rule(`real[-\s]?time`, 4),
	rule(`non[-\s]?invasive`, 5),
	rule(`closed[-\s]?loop`, 5),
	rule(`decoder|decoding`, 5),
	rule(`speech\s+decod`, 8),
	rule(`motor\s+(cortex|control|intention)`, 6),
	rule(`paralyz|tetraplegia|quadriplegia`, 8),
	rule(`spinal\s+cord`, 6),
	rule(`electrode\s+array`, 5),
	rule(`graphene|flexible\s+electrode`, 5),
	rule(`optogenetic`, 5),
	rule(`transformer|foundation\s+model`, 4),
}

// dateLayouts lists the formats feed dates are tried against, most
// specific first. Feeds provide anything from RFC 3339 timestamps to
// PubMed's "2021 May 12".
var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006 Jan 2",
	"2006 Jan",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006",
}

// ParseDate parses a feed-provided date string. The second return value
// reports whether any known layout matched.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Score computes the 0-100 importance score for a record.
func Score(rec types.Record) int {
	a := authorityScore(rec)
	r := recencyScore(rec.Date)
	k := keywordScore(rec.Title + " " + rec.Abstract)

	score := math.Round(0.35*float64(a) + 0.25*float64(r) + 0.40*float64(k))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

// Level maps a score to its importance tier. Each tier is inclusive on its
// lower bound: 70 is critical, 50 is high, 30 is medium.
func Level(score int) types.ImportanceLevel {
	switch {
	case score >= 70:
		return types.LevelCritical
	case score >= 50:
		return types.LevelHigh
	case score >= 30:
		return types.LevelMedium
	default:
		return types.LevelLow
	}
}

// Evaluate returns both the score and its level for a record.
func Evaluate(rec types.Record) (int, types.ImportanceLevel) {
	s := Score(rec)
	return s, Level(s)
}

func authorityScore(rec types.Record) int {
	for _, entry := range sourceAuthority {
		if strings.Contains(rec.Source, entry.Name) || strings.Contains(rec.Provider, entry.Name) {
			return entry.Score
		}
	}
	return defaultAuthority
}

// recencyScore maps record age to a step function. Unparseable or absent
// dates score a neutral 50. A tie at a bucket boundary lands in the
// earlier, higher-scoring bucket.
func recencyScore(date string) int {
	t, ok := ParseDate(date)
	if !ok {
		return 50
	}
	hours := Now().Sub(t).Hours()
	switch {
	case hours <= 6:
		return 100
	case hours <= 24:
		return 90
	case hours <= 72:
		return 80
	case hours <= 168:
		return 65
	case hours <= 720:
		return 45
	default:
		return 25
	}
}

func keywordScore(text string) int {
	total := 0
	for _, r := range keywordRules {
		if r.re.MatchString(text) {
			total += r.weight
		}
	}
	if total > 100 {
		total = 100
	}
	return total
}
