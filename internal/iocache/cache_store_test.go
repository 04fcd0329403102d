package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore_InvalidTableName(t *testing.T) {
	_, err := NewCacheStore("bad-name;", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)
}

func TestCacheStore_NoneBackend(t *testing.T) {
	store, err := NewCacheStore(activityTable, schema.NoneBackend, "")
	require.NoError(t, err)

	require.NoError(t, store.Set("k", []byte("v"), 1, 10))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStore_SQLite(t *testing.T) {
	store, err := NewCacheStore(activityTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Unix()
	require.NoError(t, store.Set("key1", []byte(`{"commits":[]}`), 1, now))
	require.NoError(t, store.Set("key2", []byte("second"), 1, now-3600))

	value, version, ts, err := store.Get("key1")
	require.NoError(t, err)
	assert.Equal(t, `{"commits":[]}`, string(value))
	assert.Equal(t, 1, version)
	assert.Equal(t, now, ts)

	// Replace overwrites in place
	require.NoError(t, store.Set("key1", []byte("updated"), 2, now+60))
	value, version, ts, err = store.Get("key1")
	require.NoError(t, err)
	assert.Equal(t, "updated", string(value))
	assert.Equal(t, 2, version)
	assert.Equal(t, now+60, ts)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, now+60, status.LastEntryTime.Unix())
	assert.Equal(t, now-3600, status.OldestEntryTime.Unix())
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStore_MemoryBackend(t *testing.T) {
	store, err := NewCacheStore(activityTable, schema.MemoryBackend, "")
	require.NoError(t, err)
	_, ok := store.(*MemoryCacheStore)
	require.True(t, ok)

	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	payload := []byte("abc")
	require.NoError(t, store.Set("k", payload, 1, 100))
	require.NoError(t, store.Set("j", []byte("de"), 1, 50))
	payload[0] = 'z'

	value, version, ts, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(value), "stored values are copied")
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(100), ts)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "memory", status.Backend)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, int64(5), status.TableSizeBytes)
	assert.Equal(t, int64(100), status.LastEntryTime.Unix())
	assert.Equal(t, int64(50), status.OldestEntryTime.Unix())

	require.NoError(t, store.Close())
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCacheStore_UnsupportedBackend(t *testing.T) {
	_, err := NewCacheStore(activityTable, schema.DatabaseBackend("redis"), "")
	assert.Error(t, err)
}
