// Package toolpresets provides the predefined tools of the app.
package toolpresets

import (
	"fmt"
	"log/slog"
	"slices"

	"fyne.io/fyne/v2"

	"github.com/ErikKalkoken/itembuddy/internal/app"
	"github.com/ErikKalkoken/itembuddy/internal/app/datatool"
	"github.com/ErikKalkoken/itembuddy/internal/app/toolregistry"
)

// Tool type IDs of all presets
const (
	CrystalTableID   = "crystal-table"
	CurrencyTableID  = "currency-table"
	FavoritesTableID = "favorites-table"
)

// Labels of all presets
const (
	CrystalTableLabel   = "Crystal Table"
	CurrencyTableLabel  = "Currency Table"
	FavoritesTableLabel = "Favorites Table"
)

const (
	categoryCurrencies = "Tables/Currencies"
	categoryItems      = "Tables/Items"
)

const (
	crystalColumnWidth   = 60
	currencyColumnWidth  = 90
	favoritesColumnWidth = 80
)

// Items shown by the presets
const (
	crystalFirstID  = 2
	crystalLastID   = 19
	itemGil         = 1
	itemStormSeal   = 20
	itemSerpentSeal = 21
	itemFlameSeal   = 22
)

// Factory creates preset tools.
type Factory struct {
	svc datatool.Services
}

// New returns a new factory for presets, which creates tools with the given services.
func New(svc datatool.Services) *Factory {
	f := &Factory{svc: svc}
	return f
}

// Register registers all presets with a registry.
func (f *Factory) Register(r *toolregistry.Registry) {
	r.DefineToolType(
		CrystalTableID,
		CrystalTableLabel,
		func(pos fyne.Position) toolregistry.Tool {
			return asTool(f.CrystalTable(pos))
		},
		"Shards, crystals and clusters of all elements",
		categoryItems,
	)
	r.DefineToolType(
		CurrencyTableID,
		CurrencyTableLabel,
		func(pos fyne.Position) toolregistry.Tool {
			return asTool(f.CurrencyTable(pos))
		},
		"Gil and grand company seals with history",
		categoryCurrencies,
	)
	r.DefineToolType(
		FavoritesTableID,
		FavoritesTableLabel,
		func(pos fyne.Position) toolregistry.Tool {
			return asTool(f.FavoritesTable(pos))
		},
		"All favorite items",
		categoryItems,
	)
}

// asTool converts a tool into the registry's interface. A nil tool stays nil.
func asTool(d *datatool.DataTool) toolregistry.Tool {
	if d == nil {
		return nil
	}
	return d
}

// CrystalTable returns a new crystal table. It returns nil when the table can not be created.
func (f *Factory) CrystalTable(pos fyne.Position) *datatool.DataTool {
	return f.build(CrystalTableLabel, pos, func(d *datatool.DataTool) error {
		var columns []app.ColumnConfig
		for id := uint32(crystalFirstID); id <= crystalLastID; id++ {
			columns = append(columns, app.ColumnConfig{
				ItemID:       id,
				IsCurrency:   false,
				Width:        crystalColumnWidth,
				StoreHistory: false,
			})
		}
		d.SetColumns(columns)
		d.ConfigureSettings(func(s *app.ToolSettings) {
			s.ViewMode = app.ViewTable
			s.TextColorMode = app.TextColorPreferredItem
			s.AutoSizeEqualColumns = true
		})
		return nil
	})
}

// CurrencyTable returns a new currency table. It returns nil when the table can not be created.
func (f *Factory) CurrencyTable(pos fyne.Position) *datatool.DataTool {
	return f.build(CurrencyTableLabel, pos, func(d *datatool.DataTool) error {
		var columns []app.ColumnConfig
		for _, id := range []uint32{itemGil, itemStormSeal, itemSerpentSeal, itemFlameSeal} {
			columns = append(columns, app.ColumnConfig{
				ItemID:       id,
				IsCurrency:   true,
				Width:        currencyColumnWidth,
				StoreHistory: true,
			})
		}
		d.SetColumns(columns)
		d.ConfigureSettings(func(s *app.ToolSettings) {
			s.ViewMode = app.ViewTable
			s.TextColorMode = app.TextColorDefault
			s.AutoSizeEqualColumns = false
		})
		return nil
	})
}

// FavoritesTable returns a new table with the current favorite items.
// It returns nil when the table can not be created, e.g. when there is no favorites service.
func (f *Factory) FavoritesTable(pos fyne.Position) *datatool.DataTool {
	return f.build(FavoritesTableLabel, pos, func(d *datatool.DataTool) error {
		if f.svc.Favorites == nil {
			return fmt.Errorf("favorites: %w", datatool.ErrMissingService)
		}
		ids := slices.Sorted(f.svc.Favorites.All().All())
		var columns []app.ColumnConfig
		for _, id := range ids {
			var isCurrency bool
			if f.svc.Items != nil {
				if it, err := f.svc.Items.Item(id); err == nil {
					isCurrency = it.IsCurrency
				}
			}
			columns = append(columns, app.ColumnConfig{
				ItemID:     id,
				IsCurrency: isCurrency,
				Width:      favoritesColumnWidth,
			})
		}
		d.SetColumns(columns)
		d.ConfigureSettings(func(s *app.ToolSettings) {
			s.ViewMode = app.ViewList
			s.TextColorMode = app.TextColorImportance
		})
		return nil
	})
}

// build creates and configures a new tool.
// All errors and panics are logged once and result in nil being returned.
func (f *Factory) build(name string, pos fyne.Position, configure func(*datatool.DataTool) error) (tool *datatool.DataTool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("failed to create "+name, "error", fmt.Errorf("panic: %v", r))
			tool = nil
		}
	}()
	d, err := datatool.New(f.svc)
	if err == nil {
		err = configure(d)
	}
	if err != nil {
		slog.Error("failed to create "+name, "error", err)
		return nil
	}
	d.SetPresetName(name)
	d.SetPosition(pos)
	return d
}
