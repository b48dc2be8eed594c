package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CatalogRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("absent catalog", func(t *testing.T) {
		got, err := store.GetCatalog(ctx, "PLnone")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("save and get", func(t *testing.T) {
		entries := []Entry{
			{Position: 0, YTName: "a", Type: "Unknown"},
			{Position: 1, YTName: "b", Type: "EP"},
		}
		require.NoError(t, store.SaveCatalog(ctx, "PL1", entries))

		got, err := store.GetCatalog(ctx, "PL1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, entries, got)
	})

	t.Run("save replaces the whole snapshot", func(t *testing.T) {
		require.NoError(t, store.SaveCatalog(ctx, "PL1", []Entry{{Position: 0, YTName: "only"}}))

		got, err := store.GetCatalog(ctx, "PL1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "only", got[0].YTName)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, store.ClearCatalog(ctx, "PL1"))
		got, err := store.GetCatalog(ctx, "PL1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_SaveProgress_EmbedsViewerCount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("absent counter reads as zero", func(t *testing.T) {
		require.NoError(t, store.SaveProgress(ctx, "PL1", 0, 10, StatusProcessing))

		p, err := store.GetProgress(ctx, "PL1")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 0, p.ActiveConnections)
		assert.Equal(t, StatusProcessing, p.Status)
		assert.Equal(t, 0, p.CurrentItem)
		assert.Equal(t, 10, p.TotalItems)
		assert.False(t, p.Timestamp.IsZero())
	})

	t.Run("attached viewers are embedded", func(t *testing.T) {
		_, err := store.Attach(ctx, "PL1")
		require.NoError(t, err)
		n, err := store.Attach(ctx, "PL1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		require.NoError(t, store.SaveProgress(ctx, "PL1", 3, 10, StatusProcessing))

		p, err := store.GetProgress(ctx, "PL1")
		require.NoError(t, err)
		assert.Equal(t, 2, p.ActiveConnections)
		assert.Equal(t, 3, p.CurrentItem)
	})
}

func TestStore_GetProgress_Absent(t *testing.T) {
	store, _ := newTestStore(t)

	p, err := store.GetProgress(context.Background(), "PLnone")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestStore_ClearProgress_Cascades(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Attach(ctx, "PL1")
	require.NoError(t, err)
	require.NoError(t, store.SaveCatalog(ctx, "PL1", []Entry{{Position: 0}}))
	require.NoError(t, store.SaveProgress(ctx, "PL1", 1, 3, StatusProcessing))

	require.NoError(t, store.ClearProgress(ctx, "PL1"))

	p, err := store.GetProgress(ctx, "PL1")
	require.NoError(t, err)
	assert.Nil(t, p)

	c, err := store.GetCatalog(ctx, "PL1")
	require.NoError(t, err)
	assert.Nil(t, c)

	// Counter deleted too: a fresh attach starts from 1.
	n, err := store.Attach(ctx, "PL1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_Detach_AbandonsUnfinishedRun(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Attach(ctx, "PL1")
	require.NoError(t, err)
	require.NoError(t, store.SaveCatalog(ctx, "PL1", []Entry{{Position: 0}}))
	require.NoError(t, store.SaveProgress(ctx, "PL1", 1, 3, StatusProcessing))

	n, err := store.Detach(ctx, "PL1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	p, err := store.GetProgress(ctx, "PL1")
	require.NoError(t, err)
	assert.Nil(t, p)

	c, err := store.GetCatalog(ctx, "PL1")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestStore_Detach_KeepsCompletedRun(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Attach(ctx, "PL1")
	require.NoError(t, err)
	require.NoError(t, store.SaveCatalog(ctx, "PL1", []Entry{{Position: 0}}))
	require.NoError(t, store.SaveProgress(ctx, "PL1", 3, 3, StatusCompleted))

	n, err := store.Detach(ctx, "PL1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	p, err := store.GetProgress(ctx, "PL1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, StatusCompleted, p.Status)

	c, err := store.GetCatalog(ctx, "PL1")
	require.NoError(t, err)
	require.Len(t, c, 1)

	// The counter itself is gone; the next viewer starts fresh.
	n, err = store.Attach(ctx, "PL1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_Detach_RemainingViewerKeepsRun(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Attach(ctx, "PL1")
	require.NoError(t, err)
	_, err = store.Attach(ctx, "PL1")
	require.NoError(t, err)
	require.NoError(t, store.SaveProgress(ctx, "PL1", 1, 3, StatusProcessing))

	n, err := store.Detach(ctx, "PL1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	p, err := store.GetProgress(ctx, "PL1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, StatusProcessing, p.Status)
}

func TestStore_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCatalog(ctx, "PL1", []Entry{{Position: 0}}))
	require.NoError(t, store.SaveProgress(ctx, "PL1", 0, 1, StatusProcessing))

	mr.FastForward(time.Hour + time.Second)

	p, err := store.GetProgress(ctx, "PL1")
	require.NoError(t, err)
	assert.Nil(t, p)

	c, err := store.GetCatalog(ctx, "PL1")
	require.NoError(t, err)
	assert.Nil(t, c)
}
