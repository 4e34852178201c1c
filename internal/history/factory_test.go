package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreDefaultsToFile(t *testing.T) {
	store, err := NewStore(StoreConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = NewStore(StoreConfig{Backend: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)
}

func TestNewStoreSQLite(t *testing.T) {
	store, err := NewStore(StoreConfig{
		Backend: "sqlite",
		Path:    filepath.Join(t.TempDir(), "h.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	store.(*SQLiteStore).Close()
}

func TestNewStorePostgresRequiresDSN(t *testing.T) {
	_, err := NewStore(StoreConfig{Backend: "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection string")
}

func TestNewStoreUnknownBackend(t *testing.T) {
	_, err := NewStore(StoreConfig{Backend: "redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported history backend")
}
