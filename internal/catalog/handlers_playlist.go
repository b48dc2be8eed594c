package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleProcessPlaylist(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req struct {
		PlaylistURL string `json:"playlistUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaylistURL == "" {
		writeError(w, http.StatusBadRequest, "Please provide a playlistUrl")
		return
	}

	playlistID, err := ParsePlaylistID(req.PlaylistURL)
	if err != nil {
		writePlaylistError(w, err)
		return
	}

	ctx := r.Context()
	existingCatalog, err := s.store.GetCatalog(ctx, playlistID)
	if err != nil {
		writePlaylistError(w, err)
		return
	}
	existingProgress, err := s.store.GetProgress(ctx, playlistID)
	if err != nil {
		writePlaylistError(w, err)
		return
	}

	// A completed run is served straight from cache; the caller counts as a
	// viewer of it until their stream detaches.
	if existingCatalog != nil && existingProgress != nil && existingProgress.Status == StatusCompleted {
		if _, err := s.store.Attach(ctx, playlistID); err != nil {
			writePlaylistError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"playlistId": playlistID,
			"status":     StatusCompleted,
			"data":       existingCatalog,
		})
		return
	}

	// Any stale non-completed state is cleared before a fresh run starts.
	if err := s.store.ClearProgress(ctx, playlistID); err != nil {
		writePlaylistError(w, err)
		return
	}
	if _, err := s.store.Attach(ctx, playlistID); err != nil {
		writePlaylistError(w, err)
		return
	}

	// The run outlives this request; cancellation is cooperative through the
	// viewer counter, not through the request context.
	go s.processPlaylist(context.Background(), playlistID)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"playlistId": playlistID,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistId")

	progress, err := s.store.GetProgress(r.Context(), playlistID)
	if err != nil {
		writePlaylistError(w, err)
		return
	}
	if progress == nil {
		writeError(w, http.StatusNotFound, "Playlist not found")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistId")

	if err := s.store.ClearProgress(r.Context(), playlistID); err != nil {
		writePlaylistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Process cancelled",
	})
}
