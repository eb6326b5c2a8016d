package watchlist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/finance/store"
)

func newTestWatchlist(t *testing.T) *Watchlist {
	t.Helper()
	return New(store.NewOpener(filepath.Join(t.TempDir(), "app")))
}

func TestAddNormalizesAndDedups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newTestWatchlist(t)

	require.NoError(t, w.Add(ctx, "aapl"))
	require.NoError(t, w.Add(ctx, "AAPL"))

	entries, err := w.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "AAPL", entries[0].Symbol)
}

func TestListSortedBySymbol(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newTestWatchlist(t)

	for _, s := range []string{"MSFT", "AAPL", "GOOG"} {
		require.NoError(t, w.Add(ctx, s))
	}

	syms, err := w.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, syms)
}

func TestDuplicateKeepsOriginalID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newTestWatchlist(t)

	require.NoError(t, w.Add(ctx, "tsla"))
	before, err := w.List(ctx)
	require.NoError(t, err)

	require.NoError(t, w.Add(ctx, "Tsla"))
	after, err := w.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newTestWatchlist(t)

	require.NoError(t, w.Add(ctx, "AAPL"))
	require.NoError(t, w.Add(ctx, "MSFT"))

	entries, err := w.List(ctx)
	require.NoError(t, err)
	require.NoError(t, w.Delete(ctx, entries[0].ID))

	syms, err := w.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT"}, syms)

	// already gone
	assert.NoError(t, w.Delete(ctx, entries[0].ID))
}

func TestReAddAfterDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newTestWatchlist(t)

	require.NoError(t, w.Add(ctx, "AAPL"))
	entries, err := w.List(ctx)
	require.NoError(t, err)
	require.NoError(t, w.Delete(ctx, entries[0].ID))

	require.NoError(t, w.Add(ctx, "aapl"))
	again, err := w.List(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Greater(t, again[0].ID, entries[0].ID)
}

func TestListEmpty(t *testing.T) {
	t.Parallel()
	w := newTestWatchlist(t)

	entries, err := w.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
