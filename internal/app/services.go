package app

import (
	"context"
	"time"

	"fyne.io/fyne/v2"
	"github.com/ErikKalkoken/go-set"

	"github.com/ErikKalkoken/itembuddy/internal/optional"
)

// CacheService defines a cache service.
type CacheService interface {
	Delete(string)
	Get(string) (any, bool)
	Set(string, any, time.Duration)
}

// CurrencyService provides the currency amounts of characters.
type CurrencyService interface {
	CurrencyAmount(ctx context.Context, characterID int64, itemID uint32) (int64, error)
}

// ConfigService provides the user's configuration relevant for tools.
type ConfigService interface {
	DeveloperMode() bool
	ShowTotalsRow() bool
}

// InventoryService provides cached inventory quantities of characters.
type InventoryService interface {
	ItemQuantity(ctx context.Context, characterID int64, itemID uint32) (int, error)
}

// TrackedDataService records the history of tracked values.
type TrackedDataService interface {
	RecordValue(ctx context.Context, characterID int64, itemID uint32, value int64) error
	History(ctx context.Context, characterID int64, itemID uint32, since time.Time) ([]*TrackedValue, error)
}

// ItemService provides metadata about items.
type ItemService interface {
	Item(id uint32) (*Item, error)
}

// CharacterDataService provides the characters of the current session.
type CharacterDataService interface {
	ListCharacters(ctx context.Context) ([]*Character, error)
	CurrentCharacterID() int64
}

// TextureService provides icons.
type TextureService interface {
	Icon(iconID uint32, size int) (fyne.Resource, error)
	// IconDisabled returns a greyed out variant of an icon.
	IconDisabled(iconID uint32, size int) (fyne.Resource, error)
}

// FavoritesService provides the user's favorite items.
type FavoritesService interface {
	All() set.Set[uint32]
	IsFavorite(itemID uint32) bool
}

// BridgeService provides quantities reported by an external companion process.
type BridgeService interface {
	ExternalQuantity(ctx context.Context, characterID int64, itemID uint32) (int, bool, error)
}

// PriceService provides market prices of items.
type PriceService interface {
	ItemPrice(ctx context.Context, itemID uint32) (optional.Optional[float64], error)
}
