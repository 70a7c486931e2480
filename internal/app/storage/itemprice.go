package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ErikKalkoken/itembuddy/internal/app"
)

type UpdateOrCreateItemPriceParams struct {
	ItemID uint32
	Price  float64
	World  string
}

func (st *Storage) UpdateOrCreateItemPrice(ctx context.Context, arg UpdateOrCreateItemPriceParams) error {
	if arg.ItemID == 0 || arg.World == "" {
		return fmt.Errorf("update or create item price %+v: %w", arg, app.ErrInvalid)
	}
	_, err := st.dbRW.ExecContext(
		ctx, `
		INSERT INTO item_prices (world, item_id, price, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(world, item_id) DO UPDATE SET
			price = excluded.price,
			updated_at = excluded.updated_at;`,
		arg.World, arg.ItemID, arg.Price, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update or create item price %+v: %w", arg, err)
	}
	return nil
}

// GetItemPrice returns the stored price of an item on a market world.
func (st *Storage) GetItemPrice(ctx context.Context, world string, itemID uint32) (*app.ItemPrice, error) {
	var p app.ItemPrice
	err := st.dbRO.QueryRowContext(
		ctx,
		"SELECT world, item_id, price, updated_at FROM item_prices WHERE world = ? AND item_id = ?;",
		world, itemID,
	).Scan(&p.World, &p.ItemID, &p.Price, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get item price %s/%d: %w", world, itemID, convertGetError(err))
	}
	return &p, nil
}
