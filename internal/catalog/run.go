package catalog

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jm2375/Kirk-Cataloger/internal/youtube"
)

// Source titles of playlist items whose video no longer exists. These never
// reach the metadata lookup but still count as processed.
var removedTitles = map[string]bool{
	"Deleted video": true,
	"Private video": true,
}

type runStats struct {
	processed int
	enriched  int
	skipped   int // lookup failed or matched nothing; entry left as fetched
	removed   int // deleted/private videos, never looked up
}

// processPlaylist is the enrichment run: fetch the playlist, enrich each
// entry in order, publish catalog+progress after every step. It stops as
// soon as the progress record disappears or reports no viewers, and clears
// all state when the playlist itself cannot be fetched.
func (s *Server) processPlaylist(ctx context.Context, playlistID string) runStats {
	runID := uuid.NewString()[:8]
	var stats runStats

	items, err := s.source.PlaylistItems(ctx, playlistID)
	if err != nil || len(items) == 0 {
		log.Printf("catalog-service: run %s: fetch playlist %s failed: %v", runID, playlistID, err)
		s.teardown(ctx, playlistID, runID)
		return stats
	}

	entries := make([]Entry, len(items))
	for i, it := range items {
		entries[i] = Entry{
			Position: it.Position,
			Date:     titleYear(it.Title),
			Type:     titleType(it.Title),
			YTName:   it.Title,
			YTLink:   youtube.WatchURL(it.VideoID),
			Channel:  it.Channel,
		}
	}

	total := len(entries)
	if err := s.store.SaveProgress(ctx, playlistID, 0, total, StatusProcessing); err != nil {
		log.Printf("catalog-service: run %s: save progress %s: %v", runID, playlistID, err)
		s.teardown(ctx, playlistID, runID)
		return stats
	}
	log.Printf("catalog-service: run %s: playlist %s started, %d items", runID, playlistID, total)

	for i := range entries {
		progress, err := s.store.GetProgress(ctx, playlistID)
		if err != nil {
			log.Printf("catalog-service: run %s: read progress %s: %v", runID, playlistID, err)
			s.teardown(ctx, playlistID, runID)
			return stats
		}
		if progress == nil || progress.ActiveConnections <= 0 {
			log.Printf("catalog-service: run %s: playlist %s has no viewers, stopping at %d/%d",
				runID, playlistID, i, total)
			return stats
		}

		s.enrichEntry(ctx, &entries[i], &stats)
		stats.processed++

		if err := s.store.SaveCatalog(ctx, playlistID, entries); err != nil {
			log.Printf("catalog-service: run %s: save catalog %s: %v", runID, playlistID, err)
		}
		if err := s.store.SaveProgress(ctx, playlistID, i+1, total, StatusProcessing); err != nil {
			log.Printf("catalog-service: run %s: save progress %s: %v", runID, playlistID, err)
		}

		select {
		case <-ctx.Done():
			return stats
		case <-time.After(s.lookupDelay):
		}
	}

	if err := s.store.SaveProgress(ctx, playlistID, total, total, StatusCompleted); err != nil {
		log.Printf("catalog-service: run %s: finish playlist %s: %v", runID, playlistID, err)
		s.teardown(ctx, playlistID, runID)
		return stats
	}
	log.Printf("catalog-service: run %s: playlist %s completed (%d enriched, %d skipped, %d removed)",
		runID, playlistID, stats.enriched, stats.skipped, stats.removed)
	return stats
}

// enrichEntry overwrites the entry's enrichment fields from the best lookup
// match. Lookup errors and empty results leave the entry as fetched;
// enrichment is best effort and never aborts the run.
func (s *Server) enrichEntry(ctx context.Context, e *Entry, stats *runStats) {
	if removedTitles[e.YTName] {
		stats.removed++
		return
	}

	rel, err := s.searcher.SearchRelease(ctx, e.YTName)
	if err != nil || rel == nil {
		stats.skipped++
		return
	}

	e.Score = rel.Score
	e.Title = rel.Title
	e.Artist = formatArtists(rel.Artists)
	e.Date = releaseYear(rel.Date)
	e.MBID = rel.ID
	if rel.PrimaryType != "" {
		e.Type = rel.PrimaryType
	} else {
		e.Type = "Unknown"
	}
	stats.enriched++
}

func (s *Server) teardown(ctx context.Context, playlistID, runID string) {
	if err := s.store.ClearProgress(ctx, playlistID); err != nil {
		log.Printf("catalog-service: run %s: teardown %s: %v", runID, playlistID, err)
	}
}
