// Package itemcatalog provides metadata about the items known to the app.
package itemcatalog

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"fyne.io/fyne/v2"
	"github.com/ErikKalkoken/go-set"
	"github.com/goccy/go-yaml"

	"github.com/ErikKalkoken/itembuddy/internal/app"
)

//go:embed items.yaml
var itemsYAML []byte

type itemRecord struct {
	ID         uint32 `yaml:"id"`
	Name       string `yaml:"name"`
	Category   string `yaml:"category"`
	IconID     uint32 `yaml:"icon_id"`
	IsCurrency bool   `yaml:"is_currency"`
	Color      string `yaml:"color"`
}

// Catalog is a read-only catalog of items. It is safe for concurrent use.
type Catalog struct {
	items map[uint32]app.Item
}

// New returns a catalog with the embedded items.
func New() (*Catalog, error) {
	return NewFromYAML(itemsYAML)
}

// NewFromYAML returns a catalog with items loaded from YAML data.
func NewFromYAML(data []byte) (*Catalog, error) {
	var records []itemRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("itemcatalog: parse: %w", err)
	}
	c := &Catalog{items: make(map[uint32]app.Item)}
	for _, r := range records {
		if r.ID == 0 || r.Name == "" {
			return nil, fmt.Errorf("itemcatalog: item %+v: %w", r, app.ErrInvalid)
		}
		if _, found := c.items[r.ID]; found {
			return nil, fmt.Errorf("itemcatalog: duplicate item ID %d: %w", r.ID, app.ErrInvalid)
		}
		c.items[r.ID] = app.Item{
			ID:         r.ID,
			Name:       r.Name,
			Category:   r.Category,
			IconID:     r.IconID,
			IsCurrency: r.IsCurrency,
			Color:      fyne.ThemeColorName(r.Color),
		}
	}
	return c, nil
}

// Item returns an item.
// It returns [app.ErrNotFound] when the item is not known.
func (c *Catalog) Item(id uint32) (*app.Item, error) {
	it, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, app.ErrNotFound)
	}
	return &it, nil
}

// ItemsByCategory returns all items of a category ordered by ID.
// Categories are matched case insensitive.
func (c *Catalog) ItemsByCategory(category string) []*app.Item {
	var items []*app.Item
	for _, it := range c.items {
		if strings.EqualFold(it.Category, category) {
			items = append(items, &it)
		}
	}
	slices.SortFunc(items, func(a, b *app.Item) int {
		return int(a.ID) - int(b.ID)
	})
	return items
}

// Categories returns the names of all categories in alphabetical order.
func (c *Catalog) Categories() []string {
	var s set.Set[string]
	for _, it := range c.items {
		s.Add(it.Category)
	}
	return slices.Sorted(s.All())
}

// Size returns the number of items in the catalog.
func (c *Catalog) Size() int {
	return len(c.items)
}
