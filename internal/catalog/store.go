package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps all per-playlist state in Redis under three key families:
// the catalog snapshot, the progress record and the viewer counter. The
// counter is the only key mutated concurrently, so it relies on Redis
// INCR/DECR; everything else has a single writer at a time.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
	}
}

func catalogKey(playlistID string) string     { return "catalog:" + playlistID }
func progressKey(playlistID string) string    { return "progress:" + playlistID }
func connectionsKey(playlistID string) string { return "connections:" + playlistID }

// SaveCatalog writes the whole snapshot, replacing any previous one and
// refreshing its TTL.
func (s *Store) SaveCatalog(ctx context.Context, playlistID string, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, catalogKey(playlistID), data, s.ttl).Err()
}

// GetCatalog returns the snapshot, or (nil, nil) when none is stored.
func (s *Store) GetCatalog(ctx context.Context, playlistID string) ([]Entry, error) {
	data, err := s.rdb.Get(ctx, catalogKey(playlistID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) ClearCatalog(ctx context.Context, playlistID string) error {
	return s.rdb.Del(ctx, catalogKey(playlistID)).Err()
}

// SaveProgress writes the progress record with the current viewer count
// embedded (absent counter reads as 0) and a refreshed TTL.
func (s *Store) SaveProgress(ctx context.Context, playlistID string, current, total int, status string) error {
	conns, err := s.rdb.Get(ctx, connectionsKey(playlistID)).Int()
	if errors.Is(err, redis.Nil) {
		conns = 0
	} else if err != nil {
		return err
	}

	data, err := json.Marshal(Progress{
		Status:            status,
		CurrentItem:       current,
		TotalItems:        total,
		Timestamp:         time.Now().UTC(),
		ActiveConnections: conns,
	})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, progressKey(playlistID), data, s.ttl).Err()
}

// GetProgress returns the progress record, or (nil, nil) when none is stored.
func (s *Store) GetProgress(ctx context.Context, playlistID string) (*Progress, error) {
	data, err := s.rdb.Get(ctx, progressKey(playlistID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ClearProgress tears down every key for the playlist. Clearing progress
// always means "this run no longer exists", so it cascades to the viewer
// counter and the catalog snapshot.
func (s *Store) ClearProgress(ctx context.Context, playlistID string) error {
	if err := s.rdb.Del(ctx, progressKey(playlistID)).Err(); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, connectionsKey(playlistID)).Err(); err != nil {
		return err
	}
	return s.ClearCatalog(ctx, playlistID)
}

// Attach registers one more viewer and returns the new count.
func (s *Store) Attach(ctx context.Context, playlistID string) (int64, error) {
	return s.rdb.Incr(ctx, connectionsKey(playlistID)).Result()
}

// Detach unregisters a viewer. When the count drops to zero the counter is
// deleted, and an unfinished run is torn down entirely: nobody watching an
// unfinished run is the abandonment signal. A completed run is left in
// place so later callers can still be served from cache.
func (s *Store) Detach(ctx context.Context, playlistID string) (int64, error) {
	current, err := s.rdb.Decr(ctx, connectionsKey(playlistID)).Result()
	if err != nil {
		return 0, err
	}
	if current <= 0 {
		if err := s.rdb.Del(ctx, connectionsKey(playlistID)).Err(); err != nil {
			return current, err
		}
		progress, err := s.GetProgress(ctx, playlistID)
		if err != nil {
			return current, err
		}
		if progress != nil && progress.Status != StatusCompleted {
			if err := s.ClearProgress(ctx, playlistID); err != nil {
				return current, err
			}
		}
	}
	return current, nil
}
