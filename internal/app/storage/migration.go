package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/ErikKalkoken/go-set"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationTrackingSchema = `
CREATE TABLE IF NOT EXISTS migrations(
	id INTEGER PRIMARY KEY NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	name TEXT NOT NULL,
	UNIQUE (name)
);
`

// ApplyMigrations applies all migrations which have not yet been applied to the database.
func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(migrationTrackingSchema); err != nil {
		return err
	}
	applied, err := listMigrations(db)
	if err != nil {
		return err
	}
	entries, err := fs.ReadDir(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	var count int
	for _, n := range names {
		if applied.Contains(n) {
			continue
		}
		data, err := embedMigrations.ReadFile("migrations/" + n)
		if err != nil {
			return err
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(data)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: %w", n, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations(name) VALUES(?);", n); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", n, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		count++
	}
	if count > 0 {
		slog.Info("Migrations applied", "count", count)
	}
	return nil
}

func listMigrations(db *sql.DB) (set.Set[string], error) {
	var names set.Set[string]
	rows, err := db.Query("SELECT name FROM migrations;")
	if err != nil {
		return names, err
	}
	defer rows.Close()
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return names, err
		}
		names.Add(n)
	}
	return names, rows.Err()
}
