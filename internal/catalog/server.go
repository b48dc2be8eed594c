package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	store    *Store
	source   PlaylistSource
	searcher ReleaseSearcher

	// lookupDelay paces the enrichment loop between items; pollInterval is
	// how often a stream publisher re-reads progress.
	lookupDelay  time.Duration
	pollInterval time.Duration
}

func NewServer(store *Store, source PlaylistSource, searcher ReleaseSearcher, lookupDelay, pollInterval time.Duration) *Server {
	if lookupDelay <= 0 {
		lookupDelay = time.Second
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Server{
		store:        store,
		source:       source,
		searcher:     searcher,
		lookupDelay:  lookupDelay,
		pollInterval: pollInterval,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Post("/api/process-playlist", s.handleProcessPlaylist)
	r.Route("/api/playlist/{playlistId}", func(r chi.Router) {
		r.Get("/stream", s.handleStream)
		r.Get("/ws", s.handleStreamWS)
		r.Get("/status", s.handleStatus)
		r.Post("/cancel", s.handleCancel)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "catalog-service",
	})
}
