package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("token", "abc"))
	require.NoError(t, store.Set("user", `{"id":"7"}`))

	value, ok, err := store.Get("token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", value)

	// survives a reopen
	reopened, err := NewFileStore(dir)
	require.NoError(t, err)

	value, ok, err = reopened.Get("user")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"id":"7"}`, value)
}

func TestFileStoreDelete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("token", "abc"))
	require.NoError(t, store.Delete("token"))
	require.NoError(t, store.Delete("token"))

	_, ok, err := store.Get("token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("token", "abc"))

	info, err := os.Stat(filepath.Join(dir, "state.json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreRejectsCorruptState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte("not json"), 0o600))

	_, err := NewFileStore(dir)
	require.Error(t, err)
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set("k", "v"))
	value, ok, err := store.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", value)

	require.NoError(t, store.Delete("k"))
	_, ok, err = store.Get("k")
	require.NoError(t, err)
	require.False(t, ok)
}
