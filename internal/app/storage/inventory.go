package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ErikKalkoken/itembuddy/internal/app"
)

type UpdateOrCreateInventoryItemParams struct {
	CharacterID int64
	ItemID      uint32
	Quantity    int
}

func (st *Storage) UpdateOrCreateInventoryItem(ctx context.Context, arg UpdateOrCreateInventoryItemParams) error {
	if arg.CharacterID == 0 || arg.ItemID == 0 || arg.Quantity < 0 {
		return fmt.Errorf("update or create inventory item %+v: %w", arg, app.ErrInvalid)
	}
	_, err := st.dbRW.ExecContext(
		ctx, `
		INSERT INTO inventory_items (character_id, item_id, quantity, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(character_id, item_id) DO UPDATE SET
			quantity = excluded.quantity,
			updated_at = excluded.updated_at;`,
		arg.CharacterID, arg.ItemID, arg.Quantity, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update or create inventory item %+v: %w", arg, err)
	}
	return nil
}

// GetInventoryQuantity returns the quantity of an item owned by a character.
func (st *Storage) GetInventoryQuantity(ctx context.Context, characterID int64, itemID uint32) (int, error) {
	var q int
	err := st.dbRO.QueryRowContext(
		ctx,
		"SELECT quantity FROM inventory_items WHERE character_id = ? AND item_id = ?;",
		characterID, itemID,
	).Scan(&q)
	if err != nil {
		return 0, fmt.Errorf("get inventory quantity for character %d and item %d: %w", characterID, itemID, convertGetError(err))
	}
	return q, nil
}

// ListInventoryItems returns all inventory items of a character ordered by item ID.
func (st *Storage) ListInventoryItems(ctx context.Context, characterID int64) ([]*app.InventoryItem, error) {
	rows, err := st.dbRO.QueryContext(
		ctx, `
		SELECT character_id, item_id, quantity, updated_at
		FROM inventory_items
		WHERE character_id = ?
		ORDER BY item_id;`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list inventory items for character %d: %w", characterID, err)
	}
	defer rows.Close()
	var items []*app.InventoryItem
	for rows.Next() {
		var it app.InventoryItem
		if err := rows.Scan(&it.CharacterID, &it.ItemID, &it.Quantity, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list inventory items for character %d: %w", characterID, err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list inventory items for character %d: %w", characterID, err)
	}
	return items, nil
}
