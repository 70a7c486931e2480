package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ErikKalkoken/itembuddy/internal/app"
)

type CreateTrackedValueParams struct {
	CharacterID int64
	ItemID      uint32
	RecordedAt  time.Time
	Value       int64
}

func (st *Storage) CreateTrackedValue(ctx context.Context, arg CreateTrackedValueParams) error {
	if arg.CharacterID == 0 || arg.ItemID == 0 {
		return fmt.Errorf("create tracked value %+v: %w", arg, app.ErrInvalid)
	}
	if arg.RecordedAt.IsZero() {
		arg.RecordedAt = time.Now()
	}
	_, err := st.dbRW.ExecContext(
		ctx,
		"INSERT INTO tracked_values (character_id, item_id, recorded_at, value) VALUES (?, ?, ?, ?);",
		arg.CharacterID, arg.ItemID, arg.RecordedAt.UTC(), arg.Value,
	)
	if err != nil {
		return fmt.Errorf("create tracked value %+v: %w", arg, err)
	}
	return nil
}

// GetLatestTrackedValue returns the most recently recorded value.
func (st *Storage) GetLatestTrackedValue(ctx context.Context, characterID int64, itemID uint32) (*app.TrackedValue, error) {
	var v app.TrackedValue
	err := st.dbRO.QueryRowContext(
		ctx, `
		SELECT character_id, item_id, recorded_at, value
		FROM tracked_values
		WHERE character_id = ? AND item_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1;`,
		characterID, itemID,
	).Scan(&v.CharacterID, &v.ItemID, &v.RecordedAt, &v.Value)
	if err != nil {
		return nil, fmt.Errorf("get latest tracked value for character %d and item %d: %w", characterID, itemID, convertGetError(err))
	}
	return &v, nil
}

// ListTrackedValues returns the values recorded since a time in chronological order.
func (st *Storage) ListTrackedValues(ctx context.Context, characterID int64, itemID uint32, since time.Time) ([]*app.TrackedValue, error) {
	rows, err := st.dbRO.QueryContext(
		ctx, `
		SELECT character_id, item_id, recorded_at, value
		FROM tracked_values
		WHERE character_id = ? AND item_id = ? AND recorded_at >= ?
		ORDER BY recorded_at, id;`,
		characterID, itemID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list tracked values for character %d and item %d: %w", characterID, itemID, err)
	}
	defer rows.Close()
	var values []*app.TrackedValue
	for rows.Next() {
		var v app.TrackedValue
		if err := rows.Scan(&v.CharacterID, &v.ItemID, &v.RecordedAt, &v.Value); err != nil {
			return nil, fmt.Errorf("list tracked values: %w", err)
		}
		values = append(values, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tracked values: %w", err)
	}
	return values, nil
}
