// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the tracker over HTTP: record search, stats,
// trends, collections, subscribers, and manual ingestion and briefing
// triggers.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdiddy/neurotrack/internal/briefing"
	"github.com/pdiddy/neurotrack/internal/ingest"
	"github.com/pdiddy/neurotrack/internal/metrics"
	"github.com/pdiddy/neurotrack/internal/store"
)

// Ingestor triggers one ingestion cycle.
type Ingestor interface {
	Run(ctx context.Context) (ingest.Summary, error)
}

// BriefingFunc sends the briefing when POST /api/briefing/send fires.
type BriefingFunc func(ctx context.Context) (briefing.Result, error)

// Server wraps the chi router and its dependencies.
type Server struct {
	router   chi.Router
	store    *store.Store
	ingestor Ingestor
	briefer  BriefingFunc
	log      zerolog.Logger
}

// New builds the router. ingestor and briefer may be nil; the matching
// endpoints then answer 503.
func New(st *store.Store, ingestor Ingestor, briefer BriefingFunc, log zerolog.Logger) *Server {
	s := &Server{
		store:    st,
		ingestor: ingestor,
		briefer:  briefer,
		log:      log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/records", s.handleRecords)
		r.Get("/stats", s.handleStats)
		r.Get("/providers", s.handleProviders)
		r.Get("/trending", s.handleTrending)
		r.Post("/ingest", s.handleIngest)

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", s.handleListCollections)
			r.Post("/", s.handleCreateCollection)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", s.handleDeleteCollection)
				r.Get("/items", s.handleCollectionItems)
				r.Post("/items", s.handleAddCollectionItem)
				r.Delete("/items", s.handleRemoveCollectionItem)
			})
		})

		r.Route("/subscribers", func(r chi.Router) {
			r.Get("/", s.handleListSubscribers)
			r.Post("/", s.handleAddSubscriber)
			r.Delete("/", s.handleRemoveSubscriber)
		})

		r.Post("/briefing/send", s.handleSendBriefing)
	})

	s.router = r
	return s
}

// Handler returns the root handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// instrument logs each request and feeds the API latency histogram. It
// sits outside Recoverer so panics are counted as 500s.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		elapsed := time.Since(start)

		metrics.HTTPRequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(status)).
			Observe(elapsed.Seconds())
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", elapsed).
			Msg("request")
	})
}

// Start runs the HTTP server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
