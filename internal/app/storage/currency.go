package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ErikKalkoken/itembuddy/internal/app"
)

type UpdateOrCreateCurrencyParams struct {
	CharacterID int64
	ItemID      uint32
	Amount      int64
}

func (st *Storage) UpdateOrCreateCurrency(ctx context.Context, arg UpdateOrCreateCurrencyParams) error {
	if arg.CharacterID == 0 || arg.ItemID == 0 {
		return fmt.Errorf("update or create currency %+v: %w", arg, app.ErrInvalid)
	}
	_, err := st.dbRW.ExecContext(
		ctx, `
		INSERT INTO character_currencies (character_id, item_id, amount, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(character_id, item_id) DO UPDATE SET
			amount = excluded.amount,
			updated_at = excluded.updated_at;`,
		arg.CharacterID, arg.ItemID, arg.Amount, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update or create currency %+v: %w", arg, err)
	}
	return nil
}

func (st *Storage) GetCurrencyAmount(ctx context.Context, characterID int64, itemID uint32) (int64, error) {
	var amount int64
	err := st.dbRO.QueryRowContext(
		ctx,
		"SELECT amount FROM character_currencies WHERE character_id = ? AND item_id = ?;",
		characterID, itemID,
	).Scan(&amount)
	if err != nil {
		return 0, fmt.Errorf("get currency amount for character %d and item %d: %w", characterID, itemID, convertGetError(err))
	}
	return amount, nil
}
