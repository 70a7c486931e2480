// Package testutil provides helpers for testing with the storage package.
package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ErikKalkoken/itembuddy/internal/app/storage"
)

// NewDBInMemory creates and returns a database in memory for tests.
// Important: This variant is not suitable for DB code that runs in goroutines.
func NewDBInMemory() (*sql.DB, *storage.Storage, *Factory) {
	db, err := sql.Open("sqlite3", "file::memory:?_fk=on")
	if err != nil {
		panic(err)
	}
	db.SetMaxOpenConns(1)
	if err := storage.ApplyMigrations(db); err != nil {
		panic(err)
	}
	st := storage.New(db, db)
	return db, st, NewFactory(st)
}

// NewDBOnDisk creates and returns a new temporary database on disk for tests.
func NewDBOnDisk(t testing.TB) (*sql.DB, *storage.Storage, *Factory) {
	p := filepath.Join(t.TempDir(), "itembuddy_test.sqlite")
	dbRW, dbRO, err := storage.InitDB("file:" + p)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		dbRO.Close()
	})
	st := storage.New(dbRW, dbRO)
	return dbRW, st, NewFactory(st)
}

// TruncateTables will purge data from all tables. This is meant for tests.
func TruncateTables(db *sql.DB) {
	if _, err := db.Exec("PRAGMA foreign_keys = 0"); err != nil {
		panic(err)
	}
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT IN ('migrations', 'sqlite_sequence')`)
	if err != nil {
		panic(err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			panic(err)
		}
		tables = append(tables, name)
	}
	rows.Close()
	for _, n := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s;", n)); err != nil {
			panic(err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys = 1"); err != nil {
		panic(err)
	}
}
