package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()

	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_GetMissingKey(t *testing.T) {
	s := openTestDB(t)

	value, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSQLite_SetAndGet(t *testing.T) {
	s := openTestDB(t)

	require.NoError(t, s.Set("https://example.com/ep1.mp3", "42.500"))

	value, ok, err := s.Get("https://example.com/ep1.mp3")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42.500", value)
}

func TestSQLite_SetReplacesExisting(t *testing.T) {
	s := openTestDB(t)

	require.NoError(t, s.Set("key", "first"))
	require.NoError(t, s.Set("key", "second"))

	value, ok, err := s.Get("key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestSQLite_Remove(t *testing.T) {
	s := openTestDB(t)

	require.NoError(t, s.Set("key", "value"))
	require.NoError(t, s.Remove("key"))

	_, ok, err := s.Get("key")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing a missing key is not an error.
	require.NoError(t, s.Remove("key"))
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()

	_, ok, err := m.Get("key")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set("key", "value"))
	value, ok, err := m.Get("key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	require.NoError(t, m.Remove("key"))
	_, ok, err = m.Get("key")
	require.NoError(t, err)
	assert.False(t, ok)
}
