// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"

	"github.com/pdiddy/neurotrack/internal/store"
)

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := s.store.ListCollections(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("collection list failed")
		writeError(w, http.StatusInternalServerError, "collections failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": collections})
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	id, err := s.store.CreateCollection(r.Context(), req.Name, req.Icon)
	if err != nil {
		s.log.Error().Err(err).Msg("collection create failed")
		writeError(w, http.StatusInternalServerError, "create failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := collectionID(w, r)
	if !ok {
		return
	}

	err := s.store.DeleteCollection(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrPresetCollection):
		writeError(w, http.StatusForbidden, "preset collections cannot be deleted")
	case errors.Is(err, store.ErrCollectionNotFound):
		writeError(w, http.StatusNotFound, "collection not found")
	case err != nil:
		s.log.Error().Err(err).Msg("collection delete failed")
		writeError(w, http.StatusInternalServerError, "delete failed")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func (s *Server) handleCollectionItems(w http.ResponseWriter, r *http.Request) {
	id, ok := collectionID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	items, err := s.store.CollectionItems(r.Context(), id, page, pageSize)
	if err != nil {
		s.log.Error().Err(err).Msg("collection items failed")
		writeError(w, http.StatusInternalServerError, "items failed")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddCollectionItem(w http.ResponseWriter, r *http.Request) {
	id, ok := collectionID(w, r)
	if !ok {
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	if err := s.store.AddToCollection(r.Context(), id, req.URL, "manual"); err != nil {
		s.log.Error().Err(err).Msg("collection add failed")
		writeError(w, http.StatusInternalServerError, "add failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (s *Server) handleRemoveCollectionItem(w http.ResponseWriter, r *http.Request) {
	id, ok := collectionID(w, r)
	if !ok {
		return
	}

	recordURL := r.URL.Query().Get("url")
	if recordURL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	if err := s.store.RemoveFromCollection(r.Context(), id, recordURL); err != nil {
		s.log.Error().Err(err).Msg("collection remove failed")
		writeError(w, http.StatusInternalServerError, "remove failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleListSubscribers(w http.ResponseWriter, r *http.Request) {
	subscribers, err := s.store.ActiveSubscribers(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("subscriber list failed")
		writeError(w, http.StatusInternalServerError, "subscribers failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscribers": subscribers})
}

func (s *Server) handleAddSubscriber(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := s.store.AddSubscriber(r.Context(), req.Email, req.Name); err != nil {
		s.log.Error().Err(err).Msg("subscriber add failed")
		writeError(w, http.StatusInternalServerError, "subscribe failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

func (s *Server) handleRemoveSubscriber(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := s.store.RemoveSubscriber(r.Context(), email); err != nil {
		s.log.Error().Err(err).Msg("subscriber remove failed")
		writeError(w, http.StatusInternalServerError, "unsubscribe failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}

// collectionID parses the {id} route parameter, answering 400 itself on
// bad input.
func collectionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid collection id")
		return 0, false
	}
	return id, true
}
