package app

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Item is an item type from the game's item catalog.
type Item struct {
	ID         uint32
	Name       string
	Category   string
	IconID     uint32
	IsCurrency bool
	// Name of the theme color this item is preferably shown in.
	Color fyne.ThemeColorName
}

// PreferredColor returns the preferred color name of an item with a fallback.
func (it Item) PreferredColor() fyne.ThemeColorName {
	if it.Color == "" {
		return theme.ColorNameForeground
	}
	return it.Color
}

// ItemLabel returns a label for an item ID when no item is known.
func ItemLabel(id uint32) string {
	return fmt.Sprintf("#%d", id)
}

// InventoryItem is the quantity of an item a character owns.
type InventoryItem struct {
	CharacterID int64
	ItemID      uint32
	Quantity    int
	UpdatedAt   time.Time
}

// TrackedValue is a recorded value of an item for a character at a point in time.
type TrackedValue struct {
	CharacterID int64
	ItemID      uint32
	RecordedAt  time.Time
	Value       int64
}

// ItemPrice is the market price of an item.
type ItemPrice struct {
	ItemID    uint32
	Price     float64
	UpdatedAt time.Time
	World     string
}
