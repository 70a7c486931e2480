package storage

import (
	"context"
	"fmt"

	"github.com/ErikKalkoken/itembuddy/internal/app"
)

type CreateCharacterParams struct {
	ID    int64
	Name  string
	World string
}

func (st *Storage) CreateCharacter(ctx context.Context, arg CreateCharacterParams) error {
	if arg.ID == 0 || arg.Name == "" {
		return fmt.Errorf("create character %+v: %w", arg, app.ErrInvalid)
	}
	_, err := st.dbRW.ExecContext(
		ctx,
		"INSERT INTO characters (id, name, world) VALUES (?, ?, ?);",
		arg.ID, arg.Name, arg.World,
	)
	if err != nil {
		return fmt.Errorf("create character %+v: %w", arg, err)
	}
	return nil
}

// UpdateOrCreateCharacter creates a character or updates name and world of an existing one.
func (st *Storage) UpdateOrCreateCharacter(ctx context.Context, arg CreateCharacterParams) error {
	if arg.ID == 0 || arg.Name == "" {
		return fmt.Errorf("update or create character %+v: %w", arg, app.ErrInvalid)
	}
	_, err := st.dbRW.ExecContext(
		ctx, `
		INSERT INTO characters (id, name, world)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			world = excluded.world;`,
		arg.ID, arg.Name, arg.World,
	)
	if err != nil {
		return fmt.Errorf("update or create character %+v: %w", arg, err)
	}
	return nil
}

func (st *Storage) DeleteCharacter(ctx context.Context, id int64) error {
	_, err := st.dbRW.ExecContext(ctx, "DELETE FROM characters WHERE id = ?;", id)
	if err != nil {
		return fmt.Errorf("delete character %d: %w", id, err)
	}
	return nil
}

func (st *Storage) GetCharacter(ctx context.Context, id int64) (*app.Character, error) {
	var c app.Character
	err := st.dbRO.QueryRowContext(
		ctx,
		"SELECT id, name, world FROM characters WHERE id = ?;",
		id,
	).Scan(&c.ID, &c.Name, &c.World)
	if err != nil {
		return nil, fmt.Errorf("get character %d: %w", id, convertGetError(err))
	}
	return &c, nil
}

// ListCharacters returns all characters ordered by name.
func (st *Storage) ListCharacters(ctx context.Context) ([]*app.Character, error) {
	rows, err := st.dbRO.QueryContext(ctx, "SELECT id, name, world FROM characters ORDER BY name;")
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()
	var cc []*app.Character
	for rows.Next() {
		var c app.Character
		if err := rows.Scan(&c.ID, &c.Name, &c.World); err != nil {
			return nil, fmt.Errorf("list characters: %w", err)
		}
		cc = append(cc, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	return cc, nil
}
