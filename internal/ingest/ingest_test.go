// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/neurotrack/internal/feeds"
	"github.com/pdiddy/neurotrack/internal/store"
	"github.com/pdiddy/neurotrack/pkg/types"
)

type stubSource struct {
	name    string
	records []types.Record
	err     error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, _ types.FeedsConfig) ([]types.Record, error) {
	return s.records, s.err
}

func testRunner(t *testing.T, sources ...feeds.Source) (*Runner, *store.Store) {
	t.Helper()
	st, err := store.New(types.StoreConfig{DataDir: filepath.Join(t.TempDir(), "data")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	r := NewRunner(st, types.FeedsConfig{}, zerolog.Nop())
	r.sources = sources
	return r, st
}

func TestRunStoresFetchedRecords(t *testing.T) {
	r, st := testRunner(t, &stubSource{name: "a", records: []types.Record{
		{URL: "https://example.com/1", Title: "Implant study", Category: types.CategoryJournal},
		{URL: "https://example.com/2", Title: "EEG dataset", Category: types.CategoryPreprint},
	}})

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Fetched)
	assert.Equal(t, 2, sum.Stored)
	assert.Zero(t, sum.Invalid)
	assert.Empty(t, sum.SourceErrors)

	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}

func TestRunDeduplicatesAcrossSources(t *testing.T) {
	r, _ := testRunner(t,
		&stubSource{name: "a", records: []types.Record{
			{URL: "https://example.com/same", Title: "One"},
		}},
		&stubSource{name: "b", records: []types.Record{
			{URL: "https://example.com/same", Title: "One again"},
		}},
	)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Fetched)
	assert.Equal(t, 1, sum.DupsRemoved)
	assert.Equal(t, 1, sum.Stored)
}

func TestRunSurvivesSourceFailure(t *testing.T) {
	r, st := testRunner(t,
		&stubSource{name: "broken", err: errors.New("timeout")},
		&stubSource{name: "ok", records: []types.Record{
			{URL: "https://example.com/1", Title: "One"},
		}},
	)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Stored)
	require.Len(t, sum.SourceErrors, 1)
	assert.Contains(t, sum.SourceErrors[0], "broken")

	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

func TestRunEmptyCycle(t *testing.T) {
	r, _ := testRunner(t)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.Fetched)
	assert.Zero(t, sum.Stored)
}
