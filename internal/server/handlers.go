// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pdiddy/neurotrack/internal/store"
	"github.com/pdiddy/neurotrack/pkg/types"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleRecords answers GET /api/records with a filtered, paginated page.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := store.SearchOptions{
		Query:    q.Get("q"),
		Category: types.Category(q.Get("category")),
		Provider: q.Get("provider"),
		DateFrom: q.Get("from"),
		DateTo:   q.Get("to"),
	}
	if q.Get("sort") == "date" {
		opts.Sort = store.SortDate
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = page
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
		opts.PageSize = size
	}

	page, err := s.store.Search(r.Context(), opts)
	if err != nil {
		s.log.Error().Err(err).Msg("record search failed")
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("stats query failed")
		writeError(w, http.StatusInternalServerError, "stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	category := types.Category(r.URL.Query().Get("category"))
	providers, err := s.store.Providers(r.Context(), category)
	if err != nil {
		s.log.Error().Err(err).Msg("provider query failed")
		writeError(w, http.StatusInternalServerError, "providers failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"providers": providers})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	topN := 0
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		topN = limit
	}

	keywords, err := s.store.TrendingKeywords(r.Context(), q.Get("from"), q.Get("to"), topN)
	if err != nil {
		s.log.Error().Err(err).Msg("trending query failed")
		writeError(w, http.StatusInternalServerError, "trending failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"keywords": keywords})
}

// handleIngest triggers a fetch cycle synchronously and reports its
// summary.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.ingestor == nil {
		writeError(w, http.StatusServiceUnavailable, "ingestion not configured")
		return
	}
	summary, err := s.ingestor.Run(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("ingestion cycle failed")
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSendBriefing(w http.ResponseWriter, r *http.Request) {
	if s.briefer == nil {
		writeError(w, http.StatusServiceUnavailable, "briefing not configured")
		return
	}
	result, err := s.briefer(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("briefing send failed")
		writeError(w, http.StatusInternalServerError, "briefing failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
