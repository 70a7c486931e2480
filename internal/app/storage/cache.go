package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ErikKalkoken/itembuddy/internal/app"
)

func (st *Storage) CacheClear(ctx context.Context) error {
	if _, err := st.dbRW.ExecContext(ctx, "DELETE FROM cache_entries;"); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// CacheCleanUp removes all expired entries.
func (st *Storage) CacheCleanUp(ctx context.Context) error {
	_, err := st.dbRW.ExecContext(
		ctx,
		"DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at < ?;",
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache cleanup: %w", err)
	}
	return nil
}

func (st *Storage) CacheExists(ctx context.Context, key string) (bool, error) {
	_, err := st.CacheGet(ctx, key)
	if errors.Is(err, app.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache exists: %w", err)
	}
	return true, nil
}

// CacheGet returns the value of a non-expired entry or [app.ErrNotFound].
func (st *Storage) CacheGet(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := st.dbRO.QueryRowContext(
		ctx, `
		SELECT value FROM cache_entries
		WHERE key = ? AND (expires_at IS NULL OR expires_at > ?);`,
		key, time.Now().UTC(),
	).Scan(&v)
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, convertGetError(err))
	}
	return v, nil
}

func (st *Storage) CacheDelete(ctx context.Context, key string) error {
	if _, err := st.dbRW.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?;", key); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

type CacheSetParams struct {
	Key   string
	Value []byte
	// Entries with a zero value never expire.
	ExpiresAt time.Time
}

func (st *Storage) CacheSet(ctx context.Context, arg CacheSetParams) error {
	if arg.Key == "" {
		return fmt.Errorf("cache set: %w", app.ErrInvalid)
	}
	var expiresAt sql.NullTime
	if !arg.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: arg.ExpiresAt.UTC(), Valid: true}
	}
	_, err := st.dbRW.ExecContext(
		ctx, `
		INSERT INTO cache_entries (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at;`,
		arg.Key, arg.Value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("cache set %s: %w", arg.Key, err)
	}
	return nil
}
