package testutil

import (
	"context"
	"math/rand/v2"
	"sync/atomic"

	"github.com/icrowley/fake"

	"github.com/ErikKalkoken/itembuddy/internal/app"
	"github.com/ErikKalkoken/itembuddy/internal/app/storage"
)

const (
	startIDCharacter = 1_000_001
	startIDItem      = 10_001
)

// Factory creates objects in the database for tests.
type Factory struct {
	st *storage.Storage

	lastCharacterID atomic.Int64
	lastItemID      atomic.Uint32
}

func NewFactory(st *storage.Storage) *Factory {
	return &Factory{st: st}
}

// CreateCharacter creates and returns a new character. Empty values are filled with fake data.
func (f *Factory) CreateCharacter(args ...storage.CreateCharacterParams) *app.Character {
	var arg storage.CreateCharacterParams
	if len(args) > 0 {
		arg = args[0]
	}
	if arg.ID == 0 {
		arg.ID = f.lastCharacterID.Add(1) + startIDCharacter
	}
	if arg.Name == "" {
		arg.Name = fake.FullName()
	}
	if arg.World == "" {
		arg.World = fake.City()
	}
	ctx := context.Background()
	if err := f.st.CreateCharacter(ctx, arg); err != nil {
		panic(err)
	}
	c, err := f.st.GetCharacter(ctx, arg.ID)
	if err != nil {
		panic(err)
	}
	return c
}

// NewItemID returns a new unique item ID.
func (f *Factory) NewItemID() uint32 {
	return f.lastItemID.Add(1) + startIDItem
}

// CreateInventoryItem creates a new inventory item.
// Missing characters and items are created.
func (f *Factory) CreateInventoryItem(args ...storage.UpdateOrCreateInventoryItemParams) *app.InventoryItem {
	var arg storage.UpdateOrCreateInventoryItemParams
	if len(args) > 0 {
		arg = args[0]
	}
	if arg.CharacterID == 0 {
		arg.CharacterID = f.CreateCharacter().ID
	}
	if arg.ItemID == 0 {
		arg.ItemID = f.NewItemID()
	}
	if arg.Quantity == 0 {
		arg.Quantity = rand.IntN(10_000) + 1
	}
	ctx := context.Background()
	if err := f.st.UpdateOrCreateInventoryItem(ctx, arg); err != nil {
		panic(err)
	}
	items, err := f.st.ListInventoryItems(ctx, arg.CharacterID)
	if err != nil {
		panic(err)
	}
	for _, it := range items {
		if it.ItemID == arg.ItemID {
			return it
		}
	}
	panic("inventory item not created")
}

// CreateCurrency creates a new currency amount and returns the params used.
func (f *Factory) CreateCurrency(args ...storage.UpdateOrCreateCurrencyParams) storage.UpdateOrCreateCurrencyParams {
	var arg storage.UpdateOrCreateCurrencyParams
	if len(args) > 0 {
		arg = args[0]
	}
	if arg.CharacterID == 0 {
		arg.CharacterID = f.CreateCharacter().ID
	}
	if arg.ItemID == 0 {
		arg.ItemID = f.NewItemID()
	}
	if arg.Amount == 0 {
		arg.Amount = rand.Int64N(1_000_000) + 1
	}
	if err := f.st.UpdateOrCreateCurrency(context.Background(), arg); err != nil {
		panic(err)
	}
	return arg
}

// CreateItemPrice creates a new item price.
func (f *Factory) CreateItemPrice(args ...storage.UpdateOrCreateItemPriceParams) *app.ItemPrice {
	var arg storage.UpdateOrCreateItemPriceParams
	if len(args) > 0 {
		arg = args[0]
	}
	if arg.ItemID == 0 {
		arg.ItemID = f.NewItemID()
	}
	if arg.Price == 0 {
		arg.Price = rand.Float64() * 10_000
	}
	if arg.World == "" {
		arg.World = "Chaos"
	}
	ctx := context.Background()
	if err := f.st.UpdateOrCreateItemPrice(ctx, arg); err != nil {
		panic(err)
	}
	p, err := f.st.GetItemPrice(ctx, arg.World, arg.ItemID)
	if err != nil {
		panic(err)
	}
	return p
}
