// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"testing"
	"time"

	"github.com/pdiddy/neurotrack/pkg/types"
)

// fixNow pins the scoring clock for the duration of a test.
func fixNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := Now
	Now = func() time.Time { return at }
	t.Cleanup(func() { Now = orig })
}

// saturatedAbstract matches enough keyword rules to exceed the 100 cap.
const saturatedAbstract = "A brain-computer interface and brain-machine interface with a neural implant " +
	"achieved a first-in-human FDA approval after a clinical trial, a breakthrough human trial " +
	"that restores walking. Neuralink, Synchron, Blackrock Neurotech, and Paradromics with DARPA " +
	"funding of $250M built a wireless high-density real-time closed-loop decoder."

func TestScoreDeterministic(t *testing.T) {
	fixNow(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	rec := types.Record{
		URL:      "https://example.org/a",
		Title:    "A speech neuroprosthesis",
		Abstract: "Decoding speech from motor cortex activity in a clinical trial.",
		Source:   "Nature",
		Date:     "2026-02-28",
	}

	first := Score(rec)
	second := Score(rec)
	if first != second {
		t.Errorf("Score not deterministic: %d then %d", first, second)
	}
}

func TestScoreMaximum(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixNow(t, now)

	rec := types.Record{
		Title:    "BCI milestone",
		Abstract: saturatedAbstract,
		Source:   "Nature",
		Date:     now.Add(-1 * time.Hour).Format(time.RFC3339),
	}

	// round(0.35*95 + 0.25*100 + 0.40*100) = round(98.25) = 98, the
	// highest score the weight table can produce.
	if got := Score(rec); got != 98 {
		t.Errorf("Score = %d, want 98", got)
	}
}

func TestScoreFloor(t *testing.T) {
	fixNow(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	rec := types.Record{
		Title:    "Quarterly earnings report",
		Abstract: "Nothing relevant here.",
		Source:   "Unknown Gazette",
		Date:     "2019-01-01",
	}

	// round(0.35*40 + 0.25*25 + 0) = round(20.25) = 20.
	if got := Score(rec); got != 20 {
		t.Errorf("Score = %d, want 20", got)
	}
}

func TestLevelBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  types.ImportanceLevel
	}{
		{100, types.LevelCritical},
		{70, types.LevelCritical},
		{69, types.LevelHigh},
		{50, types.LevelHigh},
		{49, types.LevelMedium},
		{30, types.LevelMedium},
		{29, types.LevelLow},
		{0, types.LevelLow},
	}

	for _, tt := range tests {
		if got := Level(tt.score); got != tt.want {
			t.Errorf("Level(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestAuthorityScore(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		provider string
		want     int
	}{
		{"exact outlet", "Nature", "", 95},
		{"longer name wins", "Nature Neuroscience", "", 95},
		{"substring containment", "The Lancet Neurology Reports", "", 92},
		{"provider fallback", "", "PubMed", 70},
		{"arxiv provider", "arXiv", "arXiv", 60},
		{"news aggregate", "TechCrunch", "Google News", 50},
		{"unknown defaults", "Random Blog", "rss", 40},
		{"case sensitive", "nature", "", 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := types.Record{Source: tt.source, Provider: tt.provider}
			if got := authorityScore(rec); got != tt.want {
				t.Errorf("authorityScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRecencyBuckets(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixNow(t, now)

	tests := []struct {
		name string
		age  time.Duration
		want int
	}{
		{"one hour", 1 * time.Hour, 100},
		{"exactly six hours", 6 * time.Hour, 100},
		{"twelve hours", 12 * time.Hour, 90},
		{"exactly one day", 24 * time.Hour, 90},
		{"two days", 48 * time.Hour, 80},
		{"five days", 120 * time.Hour, 65},
		{"two weeks", 336 * time.Hour, 45},
		{"exactly thirty days", 720 * time.Hour, 45},
		{"three months", 2200 * time.Hour, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date := now.Add(-tt.age).Format(time.RFC3339)
			if got := recencyScore(date); got != tt.want {
				t.Errorf("recencyScore(%s) = %d, want %d", date, got, tt.want)
			}
		})
	}
}

func TestRecencyUnparseable(t *testing.T) {
	tests := []string{"", "not a date", "Spring 2026"}
	for _, date := range tests {
		if got := recencyScore(date); got != 50 {
			t.Errorf("recencyScore(%q) = %d, want neutral 50", date, got)
		}
	}
}

func TestKeywordScoreAdditive(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"no match", "ordinary market update", 0},
		{"single rule", "a new breakthrough", 10},
		{"two distinct rules", "Neuralink announced a breakthrough", 28},
		{"case insensitive", "NEURALINK announced a BREAKTHROUGH", 28},
		{"repeated match counts once", "breakthrough after breakthrough", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keywordScore(tt.text); got != tt.want {
				t.Errorf("keywordScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKeywordScoreCap(t *testing.T) {
	if got := keywordScore(saturatedAbstract); got != 100 {
		t.Errorf("keywordScore = %d, want capped at 100", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		year int
	}{
		{"2023-08-23T00:00:00Z", true, 2023},
		{"2023-08-23", true, 2023},
		{"2021 May 12", true, 2021},
		{"2021 May", true, 2021},
		{"Wed, 21 Feb 2026 09:00:00 GMT", true, 2026},
		{"2024", true, 2024},
		{"", false, 0},
		{"soonish", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got.Year() != tt.year {
				t.Errorf("ParseDate(%q) year = %d, want %d", tt.in, got.Year(), tt.year)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	fixNow(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	rec := types.Record{
		Title:    "Neuralink receives FDA approval for human trial",
		Abstract: "A first-in-human clinical trial of the implant.",
		Source:   "Reuters",
		Provider: "Google News",
		Date:     "2026-03-01",
	}

	score, level := Evaluate(rec)
	if score < 70 {
		t.Errorf("score = %d, want >= 70 for a milestone news item", score)
	}
	if level != types.LevelCritical {
		t.Errorf("level = %q, want critical", level)
	}
}
