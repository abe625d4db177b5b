package sqlite

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/iconkit/internal/icon"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "icons.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countIcons(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.conn.QueryRow("SELECT COUNT(*) FROM icons").Scan(&n))
	return n
}

func TestNewDB_NestedPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "iconkit", "icons.db")
	db, err := NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.Equal(t, path, db.Path())

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	}
}

func TestNewDB_Schema(t *testing.T) {
	db := newTestDB(t)

	var table string
	require.NoError(t, db.conn.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'icons'",
	).Scan(&table))

	var (
		version int
		dirty   bool
	)
	require.NoError(t, db.conn.QueryRow("SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty))
	require.Equal(t, 1, version)
	require.False(t, dirty)
	require.Zero(t, countIcons(t, db))
}

func TestNewDB_Pragmas(t *testing.T) {
	db := newTestDB(t)

	for pragma, want := range map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
	} {
		var got string
		require.NoError(t, db.conn.QueryRow("PRAGMA "+pragma).Scan(&got), pragma)
		require.Equal(t, want, got, pragma)
	}
}

func TestNewDB_ReopenKeepsRowsAndBacksUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icons.db")

	first, err := NewDB(path)
	require.NoError(t, err)
	first.IconStore().Set(t.Context(), "ion:home", icon.New("ion", "home", "<svg/>"), 0)
	require.NoError(t, first.Close())

	second, err := NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	require.Equal(t, 1, countIcons(t, second))

	info, err := os.Stat(path + ".bak")
	require.NoError(t, err)
	require.Positive(t, info.Size())

	// A second handle on the same file sees the same rows.
	third, err := NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = third.Close() })
	require.Equal(t, 1, countIcons(t, third))
}

func TestNewDB_PathIsDirectory(t *testing.T) {
	_, err := NewDB(t.TempDir())
	require.Error(t, err)
}

func TestDB_ConnectionAndClose(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "icons.db"))
	require.NoError(t, err)
	require.NoError(t, db.Connection().Ping())

	require.NoError(t, db.Close())
	require.Error(t, db.Connection().Ping())
}

func TestMigrateDriver_LockAndVersion(t *testing.T) {
	db := newTestDB(t)
	d, err := newMigrateDriver(db.conn)
	require.NoError(t, err)

	require.NoError(t, d.Lock())
	require.Error(t, d.Lock(), "second lock should fail")
	require.NoError(t, d.Unlock())
	require.Error(t, d.Unlock(), "unlock without lock should fail")

	require.NoError(t, d.SetVersion(7, true))
	version, dirty, err := d.Version()
	require.NoError(t, err)
	require.Equal(t, 7, version)
	require.True(t, dirty)

	require.NoError(t, d.SetVersion(-1, false))
	version, dirty, err = d.Version()
	require.NoError(t, err)
	require.Equal(t, -1, version)
	require.False(t, dirty)
}
