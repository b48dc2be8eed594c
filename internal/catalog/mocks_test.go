package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jm2375/Kirk-Cataloger/internal/musicbrainz"
	"github.com/jm2375/Kirk-Cataloger/internal/youtube"
)

type fakeSource struct {
	mu    sync.Mutex
	items []youtube.PlaylistItem
	err   error
	calls int
}

func (f *fakeSource) PlaylistItems(ctx context.Context, playlistID string) ([]youtube.PlaylistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSearcher struct {
	mu      sync.Mutex
	matches map[string]*musicbrainz.Release
	errs    map[string]error
	queries []string

	// onSearch, when set, runs before each lookup answer.
	onSearch func(query string)
}

func (f *fakeSearcher) SearchRelease(ctx context.Context, query string) (*musicbrainz.Release, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	hook := f.onSearch
	f.mu.Unlock()

	if hook != nil {
		hook(query)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return f.matches[query], nil
}

func (f *fakeSearcher) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, time.Hour), mr
}

func newTestServer(t *testing.T, source PlaylistSource, searcher ReleaseSearcher) (*Server, *Store, *miniredis.Miniredis) {
	t.Helper()

	store, mr := newTestStore(t)
	srv := NewServer(store, source, searcher, time.Millisecond, 5*time.Millisecond)
	return srv, store, mr
}

func threeItems() []youtube.PlaylistItem {
	return []youtube.PlaylistItem{
		{Position: 0, Title: "First Album 1999", Channel: "chan-a", VideoID: "vid0"},
		{Position: 1, Title: "Second EP", Channel: "chan-b", VideoID: "vid1"},
		{Position: 2, Title: "Third Single", Channel: "chan-c", VideoID: "vid2"},
	}
}
