package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "pacer-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	// Test with invalid path (should fail to create directory)
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pacer-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "pacer.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pacer-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	nestedDir := filepath.Join(tempDir, "nested", "path", "to", "db")
	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tables := []string{"owners", "fingerprints", "fingerprint_trigrams"}
	for _, table := range tables {
		var tableExists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&tableExists)
		require.NoError(t, err)
		assert.Equal(t, 1, tableExists, "table %s should exist", table)
	}
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pacer-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	first, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(tempDir)
	require.NoError(t, err)
	defer second.Close()

	var count int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var fkEnabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1, fkEnabled, "foreign keys should be enabled")
}

func TestStore_Close(t *testing.T) {
	store, _ := setupTestStore(t)

	require.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

func TestStore_InterfaceGetters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NotNil(t, store.FingerprintStore())
	assert.NotNil(t, store.OwnerDirectory())
}
