package storage

import (
	"testing"

	"github.com/mentionwatch/dashboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Store("mentions-2025-11-12-10-00-00.json", []byte(`[]`)))
	require.NoError(t, s.Store("mentions-2025-11-12-09-00-00.json", []byte(`[{"id":"1"}]`)))
	require.NoError(t, s.Store("other.txt", []byte("x")))

	names, err := s.List("mentions-")
	require.NoError(t, err)
	assert.Equal(t, []string{"mentions-2025-11-12-09-00-00.json", "mentions-2025-11-12-10-00-00.json"}, names)

	data, err := s.Retrieve("mentions-2025-11-12-09-00-00.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(data))

	require.NoError(t, s.Delete("other.txt"))
	_, err = s.Retrieve("other.txt")
	assert.Error(t, err)
}

func TestFileStorage_StaysInsideDirectory(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.Store("../escape.json", []byte("{}")))

	names, err := s.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"escape.json"}, names)
}

func TestNew_SelectsBackend(t *testing.T) {
	s, err := New(&config.Config{StorageBackend: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = New(&config.Config{StorageBackend: "file", StorageDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, s)

	_, err = New(&config.Config{StorageBackend: "tape"})
	assert.Error(t, err)
}
