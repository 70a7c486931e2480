// Package storage contains the logic for storing application data into a local SQLite database.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ErikKalkoken/itembuddy/internal/app"
)

// Storage provides access to the database.
//
// Writes go through dbRW, which is limited to one connection.
// Reads go through dbRO.
type Storage struct {
	dbRO *sql.DB
	dbRW *sql.DB
}

// New returns a new storage object.
func New(dbRW *sql.DB, dbRO *sql.DB) *Storage {
	return &Storage{dbRW: dbRW, dbRO: dbRO}
}

// InitDB initializes the database and returns it.
// It returns a RW and a RO connection pool.
func InitDB(dsn string) (dbRW *sql.DB, dbRO *sql.DB, err error) {
	v := url.Values{}
	v.Add("_fk", "on")
	v.Add("_journal_mode", "WAL")
	v.Add("_synchronous", "normal")
	v.Add("_busy_timeout", "5000")
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	dsnRW := fmt.Sprintf("%s?%s&_txlock=immediate", dsn, v.Encode())
	dbRW, err = sql.Open("sqlite3", dsnRW)
	if err != nil {
		return nil, nil, fmt.Errorf("open DB RW: %w", err)
	}
	dbRW.SetMaxOpenConns(1)
	slog.Debug("Connected to database RW", "DSN", dsnRW)
	if err := ApplyMigrations(dbRW); err != nil {
		dbRW.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	dsnRO := fmt.Sprintf("%s?%s&mode=ro", dsn, v.Encode())
	dbRO, err = sql.Open("sqlite3", dsnRO)
	if err != nil {
		dbRW.Close()
		return nil, nil, fmt.Errorf("open DB RO: %w", err)
	}
	slog.Debug("Connected to database RO", "DSN", dsnRO)
	return dbRW, dbRO, nil
}

// convertGetError converts a no rows error into the app's not found error.
func convertGetError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return app.ErrNotFound
	}
	return err
}
