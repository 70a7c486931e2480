package app

// ColumnConfig describes one displayable column of a data tool.
//
// ItemID is not validated against the item catalog.
// Column configs are values and must not be changed after they are handed to a tool.
type ColumnConfig struct {
	ItemID       uint32
	IsCurrency   bool
	Width        float32 // in pixels
	StoreHistory bool
}
