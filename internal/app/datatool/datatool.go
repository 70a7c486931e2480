// Package datatool provides a configurable data table,
// which shows item quantities for the user's characters.
//
// A tool is configured with a list of item columns and a set of view settings.
// It collects its data from injected services and publishes it to its widget,
// which only ever renders the last published data.
package datatool

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"github.com/ErikKalkoken/itembuddy/internal/app"
)

const updateTimeout = 30 * time.Second

var ErrMissingService = errors.New("missing service")

// Services are the services a tool collects its data from.
// Currency and Config are required. All others are optional and can be nil.
type Services struct {
	Currency app.CurrencyService
	Config   app.ConfigService

	Bridge    app.BridgeService
	Data      app.CharacterDataService
	Favorites app.FavoritesService
	Inventory app.InventoryService
	Items     app.ItemService
	Prices    app.PriceService
	Textures  app.TextureService
	Tracked   app.TrackedDataService
}

func (s Services) validate() error {
	if s.Currency == nil {
		return fmt.Errorf("currency: %w", ErrMissingService)
	}
	if s.Config == nil {
		return fmt.Errorf("config: %w", ErrMissingService)
	}
	return nil
}

// DataTool is a configurable data table.
//
// The configuration methods are safe to call from any goroutine,
// but changes only become visible with the next update.
type DataTool struct {
	svc  Services
	view *toolView

	mu         sync.RWMutex
	columns    []app.ColumnConfig
	position   fyne.Position
	presetName string
	settings   app.ToolSettings

	updateMu   sync.Mutex
	lastValues map[valueKey]int64
}

// New returns a new data tool.
// It returns an error wrapping [ErrMissingService] when a required service is missing.
func New(svc Services) (*DataTool, error) {
	if err := svc.validate(); err != nil {
		return nil, fmt.Errorf("datatool: %w", err)
	}
	d := &DataTool{
		svc:        svc,
		lastValues: make(map[valueKey]int64),
	}
	d.view = newToolView()
	return d, nil
}

// SetColumns replaces all columns. Order and duplicates are kept.
func (d *DataTool) SetColumns(columns []app.ColumnConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.columns = slices.Clone(columns)
}

// Columns returns a copy of the current columns.
func (d *DataTool) Columns() []app.ColumnConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.columns)
}

// ConfigureSettings applies a mutator to the tool's settings.
func (d *DataTool) ConfigureSettings(mutate func(*app.ToolSettings)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.settings
	mutate(&s)
	d.settings = s
}

// Settings returns the current settings.
func (d *DataTool) Settings() app.ToolSettings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings
}

// PresetName returns the name of the preset the tool was created from.
func (d *DataTool) PresetName() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.presetName
}

func (d *DataTool) SetPresetName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presetName = name
}

// Position returns where the tool wants to be placed by its container.
func (d *DataTool) Position() fyne.Position {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.position
}

func (d *DataTool) SetPosition(pos fyne.Position) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.position = pos
}

// Title returns the title of the tool.
func (d *DataTool) Title() string {
	if s := d.PresetName(); s != "" {
		return s
	}
	return "Data Tool"
}

// Content returns the widget showing the tool's data.
func (d *DataTool) Content() fyne.CanvasObject {
	return d.view
}

// Update collects fresh data from the services and publishes it to the widget.
// It can block and should not be called on the UI goroutine.
func (d *DataTool) Update() {
	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()
	d.updateMu.Lock()
	defer d.updateMu.Unlock()
	s := d.collect(ctx)
	fyne.Do(func() {
		d.view.publish(s)
	})
}
