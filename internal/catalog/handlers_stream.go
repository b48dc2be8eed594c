package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// The service sits behind the gateway's CORS policy.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// publishProgress drives one observer: it polls progress and catalog, hands
// every emitted state to send, and returns after a terminal event, a send
// failure or context cancellation. Callers own attach/detach.
func (s *Server) publishProgress(ctx context.Context, playlistID string, send func(v any) error) {
	for {
		progress, err := s.store.GetProgress(ctx, playlistID)
		if err != nil {
			return
		}
		snapshot, err := s.store.GetCatalog(ctx, playlistID)
		if err != nil {
			return
		}

		switch {
		case progress == nil:
			_ = send(map[string]any{"error": "Playlist not found"})
			return

		case progress.ActiveConnections <= 0:
			_ = send(map[string]any{"error": "No active connections"})
			return

		case progress.Status == StatusCompleted && snapshot != nil:
			_ = send(map[string]any{
				"status": StatusCompleted,
				"data":   snapshot,
			})
			return

		case progress.Status == StatusProcessing:
			if err := send(map[string]any{
				"status":  StatusProcessing,
				"current": progress.CurrentItem,
				"total":   progress.TotalItems,
				"data":    snapshot,
			}); err != nil {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.pollInterval):
		}
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistId")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	if _, err := s.store.Attach(r.Context(), playlistID); err != nil {
		writePlaylistError(w, err)
		return
	}
	// The request context is already gone when the client disconnects, so
	// the detach runs on a fresh one. It must run on every exit path: it is
	// what tears down an abandoned run.
	defer func() {
		if _, err := s.store.Detach(context.Background(), playlistID); err != nil {
			log.Printf("catalog-service: detach %s: %v", playlistID, err)
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.publishProgress(r.Context(), playlistID, func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
}

// handleStreamWS is the WebSocket mirror of the event stream: the same event
// sequence, one JSON message per emitted state, socket closed after a
// terminal event.
func (s *Server) handleStreamWS(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistId")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("catalog-service: ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	if _, err := s.store.Attach(r.Context(), playlistID); err != nil {
		log.Printf("catalog-service: ws attach %s: %v", playlistID, err)
		return
	}
	defer func() {
		if _, err := s.store.Detach(context.Background(), playlistID); err != nil {
			log.Printf("catalog-service: ws detach %s: %v", playlistID, err)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Inbound messages are discarded; a read error means the client is gone.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.publishProgress(ctx, playlistID, func(v any) error {
		return conn.WriteJSON(v)
	})

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
