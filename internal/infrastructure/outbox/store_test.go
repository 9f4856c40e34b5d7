package outbox

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "outbox.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreFIFO(t *testing.T) {
	store := openStore(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i, key := range []string{"reservation.created", "reservation.renamed", "reservation.cancelled"} {
		require.NoError(t, store.Append(Entry{
			RoutingKey: key,
			Payload:    json.RawMessage(`{}`),
			EnqueuedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := store.Peek(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "reservation.created", entries[0].RoutingKey)
	assert.Equal(t, "reservation.renamed", entries[1].RoutingKey)
	assert.NotEmpty(t, entries[0].ID)

	require.NoError(t, store.Ack(entries[0]))
	entries, err = store.Peek(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "reservation.renamed", entries[0].RoutingKey)
}

func TestStoreRetryKeepsPosition(t *testing.T) {
	store := openStore(t)
	base := time.Now().UTC()
	require.NoError(t, store.Append(Entry{RoutingKey: "a", EnqueuedAt: base}))
	require.NoError(t, store.Append(Entry{RoutingKey: "b", EnqueuedAt: base.Add(time.Millisecond)}))

	entries, err := store.Peek(1)
	require.NoError(t, err)
	updated, err := store.Retry(entries[0], errors.New("broker down"))
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Attempts)

	entries, err = store.Peek(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].RoutingKey)
	assert.Equal(t, 1, entries[0].Attempts)
	assert.Equal(t, "broker down", entries[0].LastError)
}

func TestStorePrune(t *testing.T) {
	store := openStore(t)
	now := time.Now().UTC()
	require.NoError(t, store.Append(Entry{RoutingKey: "old", EnqueuedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, store.Append(Entry{RoutingKey: "older", EnqueuedAt: now.Add(-72 * time.Hour)}))
	require.NoError(t, store.Append(Entry{RoutingKey: "fresh", EnqueuedAt: now}))

	removed, err := store.Prune(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, err := store.Peek(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].RoutingKey)
}

func TestStoreRejectsMissingRoutingKey(t *testing.T) {
	store := openStore(t)
	assert.ErrorIs(t, store.Append(Entry{}), ErrEmptyRoutingKey)
}

func TestNilStore(t *testing.T) {
	var store *Store
	_, err := store.Len()
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}
