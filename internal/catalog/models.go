package catalog

import (
	"context"
	"time"

	"github.com/jm2375/Kirk-Cataloger/internal/musicbrainz"
	"github.com/jm2375/Kirk-Cataloger/internal/youtube"
)

// Entry is one playlist item of a catalog snapshot. The yt* fields are fixed
// at fetch time; the remaining fields start at their defaults and are
// overwritten when the metadata lookup finds a match.
type Entry struct {
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Date     *int    `json:"date"`
	Type     string  `json:"type"`
	MBID     string  `json:"mbid"`
	YTName   string  `json:"ytname"`
	YTLink   string  `json:"ytlink"`
	Channel  string  `json:"channel"`
}

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// Progress is the per-playlist status record. ActiveConnections mirrors the
// viewer counter at the moment the record was written.
type Progress struct {
	Status            string    `json:"status"`
	CurrentItem       int       `json:"currentItem"`
	TotalItems        int       `json:"totalItems"`
	Timestamp         time.Time `json:"timestamp"`
	ActiveConnections int       `json:"activeConnections"`
}

// PlaylistSource lists every item of a playlist in source order.
type PlaylistSource interface {
	PlaylistItems(ctx context.Context, playlistID string) ([]youtube.PlaylistItem, error)
}

// ReleaseSearcher returns the best release for a free-text query, or
// (nil, nil) when nothing matched.
type ReleaseSearcher interface {
	SearchRelease(ctx context.Context, query string) (*musicbrainz.Release, error)
}
