package common

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseExecAndQuery(t *testing.T) {
	db := NewDatabase(filepath.Join(t.TempDir(), "test.db"))

	require.NoError(t, db.Exec("create", "CREATE TABLE IF NOT EXISTS items (name TEXT)"))
	require.NoError(t, db.Exec("insert", "INSERT INTO items (name) VALUES (?)", "first"))
	require.NoError(t, db.Exec("insert", "INSERT INTO items (name) VALUES (?)", "second"))

	var names []string
	err := db.Query("list", func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	}, "SELECT name FROM items ORDER BY rowid")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, names)
}

func TestDatabaseDataSurvivesReopen(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.db")

	first := NewDatabase(filename)
	require.NoError(t, first.Exec("create", "CREATE TABLE items (name TEXT)"))
	require.NoError(t, first.Exec("insert", "INSERT INTO items (name) VALUES ('kept')"))

	second := NewDatabase(filename)
	count := 0
	err := second.Query("count", func(rows *sql.Rows) error {
		return rows.Scan(&count)
	}, "SELECT COUNT(*) FROM items")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDatabaseErrorsAreStorageErrors(t *testing.T) {
	db := NewDatabase(filepath.Join(t.TempDir(), "test.db"))

	err := db.Exec("insert", "INSERT INTO missing (name) VALUES ('x')")
	require.Error(t, err)

	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "insert", storageErr.Op)
	assert.Contains(t, err.Error(), "storage: insert")
}

func TestDatabaseScanErrorStopsQuery(t *testing.T) {
	db := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, db.Exec("create", "CREATE TABLE items (name TEXT)"))
	require.NoError(t, db.Exec("insert", "INSERT INTO items (name) VALUES ('a'), ('b')"))

	calls := 0
	boom := errors.New("boom")
	err := db.Query("list", func(rows *sql.Rows) error {
		calls++
		return boom
	}, "SELECT name FROM items")

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestDatabaseUnreachableFile(t *testing.T) {
	db := NewDatabase(filepath.Join(t.TempDir(), "no", "such", "dir", "test.db"))

	err := db.Exec("create", "CREATE TABLE items (name TEXT)")
	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)
}
