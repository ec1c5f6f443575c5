// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/pdiddy/neurotrack/pkg/types"
)

// seedSearchFixture stores a small mixed corpus with known dates and
// categories. Importance is derived, so fixtures steer it through the
// source: Nature outranks unknown outlets.
func seedSearchFixture(t *testing.T, s *Store) {
	t.Helper()
	records := []types.Record{
		{
			URL: "https://news/t1", Title: "Synchron trial update", Category: types.CategoryNews,
			Provider: "Google News", Source: "Reuters", Date: "2026-02-10",
			Abstract: "Stentrode follow-up data.",
		},
		{
			URL: "https://news/t2", Title: "Neuralink FDA approval", Category: types.CategoryNews,
			Provider: "Google News", Source: "Reuters", Date: "2026-02-15",
			Abstract: "FDA clearance for the implant.",
		},
		{
			URL: "https://news/t3", Title: "Paradromics first-in-human", Category: types.CategoryNews,
			Provider: "Google News", Source: "STAT News", Date: "2026-02-20",
			Abstract: "First-in-human feasibility study.",
		},
		{
			URL: "https://journal/1", Title: "A speech neuroprosthesis", Category: types.CategoryJournal,
			Provider: "PubMed", Source: "Nature", Date: "2026-01-05",
			Authors:  "Willett FR, Hochberg LR",
			Abstract: "Decoding attempted speech from motor cortex.",
		},
		{
			URL: "https://preprint/1", Title: "EEG foundation model", Category: types.CategoryPreprint,
			Provider: "arXiv", Source: "arXiv", Date: "2026-01-20",
			Abstract: "A large brain model for EEG decoding.",
		},
	}
	mustUpsert(t, s, records...)
}

func urls(page SearchPage) []string {
	out := make([]string, len(page.Items))
	for i, r := range page.Items {
		out[i] = r.URL
	}
	return out
}

func TestSearchFilters(t *testing.T) {
	s := testStore(t)
	seedSearchFixture(t, s)

	tests := []struct {
		name      string
		opts      SearchOptions
		wantTotal int
	}{
		{"no filters", SearchOptions{}, 5},
		{"category exact", SearchOptions{Category: types.CategoryNews}, 3},
		{"all sentinel disables category", SearchOptions{Category: types.CategoryAll}, 5},
		{"provider exact", SearchOptions{Provider: "arXiv"}, 1},
		{"free text in title", SearchOptions{Query: "Neuralink"}, 1},
		{"free text case-insensitive", SearchOptions{Query: "neuralink"}, 1},
		{"free text in abstract", SearchOptions{Query: "motor cortex"}, 1},
		{"free text in authors", SearchOptions{Query: "Hochberg"}, 1},
		{"date lower bound", SearchOptions{DateFrom: "2026-02-01"}, 3},
		{"date upper bound", SearchOptions{DateTo: "2026-01-31"}, 2},
		{"date range", SearchOptions{DateFrom: "2026-02-11", DateTo: "2026-02-16"}, 1},
		{"filters AND-combine", SearchOptions{Category: types.CategoryNews, Query: "FDA"}, 1},
		{"no matches", SearchOptions{Query: "xylophone"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Search(context.Background(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if page.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d (items %v)", page.Total, tt.wantTotal, urls(page))
			}
			if len(page.Items) != tt.wantTotal {
				t.Errorf("len(Items) = %d, want %d", len(page.Items), tt.wantTotal)
			}
		})
	}
}

func TestSearchSortByDate(t *testing.T) {
	s := testStore(t)
	seedSearchFixture(t, s)

	page, err := s.Search(context.Background(), SearchOptions{
		Category: types.CategoryNews,
		Sort:     SortDate,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"https://news/t3", "https://news/t2", "https://news/t1"}
	got := urls(page)
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSearchSortByImportance(t *testing.T) {
	s := testStore(t)
	seedSearchFixture(t, s)

	page, err := s.Search(context.Background(), SearchOptions{Sort: SortImportance})
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(page.Items); i++ {
		prev, cur := page.Items[i-1], page.Items[i]
		if cur.Importance > prev.Importance {
			t.Errorf("items not sorted by importance: %d before %d", prev.Importance, cur.Importance)
		}
		if cur.Importance == prev.Importance && cur.Date > prev.Date {
			t.Errorf("date tie-break violated: %s before %s", prev.Date, cur.Date)
		}
	}
}

func TestSearchMissingDatesSortLast(t *testing.T) {
	s := testStore(t)
	mustUpsert(t, s,
		types.Record{URL: "https://dated", Title: "Dated", Date: "2026-02-01"},
		types.Record{URL: "https://undated", Title: "Undated", Date: ""},
	)

	page, err := s.Search(context.Background(), SearchOptions{Sort: SortDate})
	if err != nil {
		t.Fatal(err)
	}
	if page.Items[len(page.Items)-1].URL != "https://undated" {
		t.Errorf("undated record should sort last, got order %v", urls(page))
	}
}

func TestSearchPaginationClamping(t *testing.T) {
	s := testStore(t)
	seedSearchFixture(t, s)

	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, 50},
		{"negative page", -3, 10, 1, 10},
		{"oversized page size", 1, 1000, 1, 200},
		{"zero size uses default", 2, 0, 2, 50},
		{"negative size clamps to one", 1, -5, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Search(context.Background(), SearchOptions{Page: tt.page, PageSize: tt.size})
			if err != nil {
				t.Fatal(err)
			}
			if page.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", page.Page, tt.wantPage)
			}
			if page.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", page.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestSearchPaginationCoversAllRows(t *testing.T) {
	s := testStore(t)

	const total = 23
	const size = 5
	var batch []types.Record
	for i := 0; i < total; i++ {
		batch = append(batch, types.Record{
			URL:   fmt.Sprintf("https://example.org/p%02d", i),
			Title: fmt.Sprintf("Record %02d", i),
			Date:  fmt.Sprintf("2026-01-%02d", i+1),
		})
	}
	mustUpsert(t, s, batch...)

	seen := make(map[string]bool)
	for pageNum := 1; ; pageNum++ {
		page, err := s.Search(context.Background(), SearchOptions{
			Sort: SortDate, Page: pageNum, PageSize: size,
		})
		if err != nil {
			t.Fatal(err)
		}
		if page.Total != total {
			t.Fatalf("Total = %d on page %d, want %d", page.Total, pageNum, total)
		}
		for _, rec := range page.Items {
			if seen[rec.URL] {
				t.Errorf("record %s returned on more than one page", rec.URL)
			}
			seen[rec.URL] = true
		}
		if !page.HasMore {
			if len(page.Items) == 0 && total > 0 && pageNum <= (total+size-1)/size {
				t.Error("empty page before all rows were seen")
			}
			break
		}
	}

	if len(seen) != total {
		t.Errorf("pages covered %d distinct records, want %d", len(seen), total)
	}
}

func TestSearchHasMore(t *testing.T) {
	s := testStore(t)
	seedSearchFixture(t, s) // 5 records

	tests := []struct {
		page, size  int
		wantHasMore bool
	}{
		{1, 2, true},
		{2, 2, true},
		{3, 2, false},
		{1, 5, false},
		{1, 10, false},
		{7, 2, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page%d_size%d", tt.page, tt.size), func(t *testing.T) {
			page, err := s.Search(context.Background(), SearchOptions{Page: tt.page, PageSize: tt.size})
			if err != nil {
				t.Fatal(err)
			}
			if page.HasMore != tt.wantHasMore {
				t.Errorf("HasMore = %v, want %v", page.HasMore, tt.wantHasMore)
			}
		})
	}
}
