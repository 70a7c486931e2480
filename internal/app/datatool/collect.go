package datatool

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/dustin/go-humanize"

	"github.com/ErikKalkoken/itembuddy/internal/app"
	"github.com/ErikKalkoken/itembuddy/internal/optional"
)

const (
	characterColumnWidth = 150
	valueColumnWidth     = 110
	historyWindow        = 24 * time.Hour
)

type valueKey struct {
	characterID int64
	itemID      uint32
}

// columnHeader describes an item column of a snapshot.
type columnHeader struct {
	column     app.ColumnConfig
	color      fyne.ThemeColorName
	icon       fyne.Resource
	iconID     uint32
	isFavorite bool
	label      string
	tooltip    string
}

// row is a character row or the totals row of a snapshot.
type row struct {
	characterID int64
	isCurrent   bool
	isTotal     bool
	name        string
	value       optional.Optional[float64]
	values      []optional.Optional[int64]
}

// snapshot is the data shown by a tool. It is never modified after publishing.
type snapshot struct {
	headers   []columnHeader
	rows      []row
	settings  app.ToolSettings
	showValue bool
}

// collect returns a new snapshot with data from the services.
// Failing queries are logged and the previous value is kept.
func (d *DataTool) collect(ctx context.Context) *snapshot {
	columns := d.Columns()
	s := &snapshot{
		headers:   d.collectHeaders(columns),
		settings:  d.Settings(),
		showValue: d.svc.Prices != nil && hasItemColumns(columns),
	}
	prices := d.collectPrices(ctx, columns)
	var characters []*app.Character
	var currentID int64
	if d.svc.Data != nil {
		cc, err := d.svc.Data.ListCharacters(ctx)
		if err != nil {
			slog.Warn("datatool: Failed to list characters", "tool", d.Title(), "error", err)
		}
		characters = cc
		currentID = d.svc.Data.CurrentCharacterID()
	}
	for _, c := range characters {
		r := row{
			characterID: c.ID,
			isCurrent:   c.ID == currentID,
			name:        c.Name,
			values:      make([]optional.Optional[int64], len(columns)),
		}
		for i, col := range columns {
			r.values[i] = d.collectValue(ctx, c.ID, col)
		}
		if s.showValue {
			r.value = rowValue(r.values, columns, prices)
		}
		s.rows = append(s.rows, r)
	}
	if len(s.rows) > 0 {
		totals := totalsRow(s.rows, len(columns))
		d.updateHeaders(ctx, s.headers, characters, totals)
		if d.svc.Config.ShowTotalsRow() {
			s.rows = append(s.rows, totals)
		}
	}
	return s
}

// updateHeaders completes the headers with data from the collected rows.
// Icons of items nobody owns are greyed out
// and tracked columns report their change within the history window.
func (d *DataTool) updateHeaders(ctx context.Context, headers []columnHeader, characters []*app.Character, totals row) {
	for i := range headers {
		h := &headers[i]
		total, ok := totals.values[i].Value()
		if ok && total == 0 && h.iconID != 0 && d.svc.Textures != nil {
			r, err := d.svc.Textures.IconDisabled(h.iconID, app.IconPixelSize)
			if err != nil {
				slog.Warn("datatool: Failed to load icon", "iconID", h.iconID, "error", err)
			} else {
				h.icon = r
			}
		}
		if h.column.StoreHistory && d.svc.Tracked != nil {
			if change, ok := d.historyChange(ctx, characters, h.column.ItemID); ok {
				h.tooltip += "\nChange 24h: " + formatChange(change)
			}
		}
	}
}

// historyChange returns the sum of the changes of an item's recorded values
// within the history window for all characters.
// It reports false when nothing was recorded.
func (d *DataTool) historyChange(ctx context.Context, characters []*app.Character, itemID uint32) (int64, bool) {
	since := time.Now().Add(-historyWindow)
	var change int64
	var found bool
	for _, c := range characters {
		vv, err := d.svc.Tracked.History(ctx, c.ID, itemID, since)
		if err != nil {
			slog.Warn("datatool: Failed to load history", "characterID", c.ID, "itemID", itemID, "error", err)
			continue
		}
		if len(vv) == 0 {
			continue
		}
		change += vv[len(vv)-1].Value - vv[0].Value
		found = true
	}
	return change, found
}

func formatChange(x int64) string {
	s := humanize.Comma(x)
	if x > 0 {
		s = "+" + s
	}
	return s
}

func (d *DataTool) collectHeaders(columns []app.ColumnConfig) []columnHeader {
	headers := make([]columnHeader, len(columns))
	for i, col := range columns {
		h := columnHeader{
			column: col,
			color:  theme.ColorNameForeground,
			label:  app.ItemLabel(col.ItemID),
		}
		var iconID uint32
		if d.svc.Items != nil {
			it, err := d.svc.Items.Item(col.ItemID)
			if err != nil {
				slog.Warn("datatool: Failed to load item", "itemID", col.ItemID, "error", err)
			} else {
				h.label = it.Name
				h.color = it.PreferredColor()
				iconID = it.IconID
				h.iconID = iconID
			}
		}
		h.tooltip = h.label
		if d.svc.Textures != nil && iconID != 0 {
			r, err := d.svc.Textures.Icon(iconID, app.IconPixelSize)
			if err != nil {
				slog.Warn("datatool: Failed to load icon", "iconID", iconID, "error", err)
			} else {
				h.icon = r
			}
		}
		if d.svc.Favorites != nil && d.svc.Favorites.IsFavorite(col.ItemID) {
			h.isFavorite = true
			h.tooltip += "\nFavorite"
		}
		if col.IsCurrency {
			h.tooltip += "\nCurrency"
		}
		if col.StoreHistory {
			h.tooltip += "\nHistory is recorded"
		}
		headers[i] = h
	}
	return headers
}

func (d *DataTool) collectPrices(ctx context.Context, columns []app.ColumnConfig) map[uint32]float64 {
	prices := make(map[uint32]float64)
	if d.svc.Prices == nil {
		return prices
	}
	for _, col := range columns {
		if col.IsCurrency {
			continue
		}
		if _, found := prices[col.ItemID]; found {
			continue
		}
		p, err := d.svc.Prices.ItemPrice(ctx, col.ItemID)
		if err != nil {
			slog.Warn("datatool: Failed to fetch price", "itemID", col.ItemID, "error", err)
			continue
		}
		if v, ok := p.Value(); ok {
			prices[col.ItemID] = v
		}
	}
	return prices
}

// hasItemColumns reports whether at least one column is not a currency.
func hasItemColumns(columns []app.ColumnConfig) bool {
	return slices.ContainsFunc(columns, func(c app.ColumnConfig) bool {
		return !c.IsCurrency
	})
}

// collectValue returns the value for a cell.
func (d *DataTool) collectValue(ctx context.Context, characterID int64, col app.ColumnConfig) optional.Optional[int64] {
	key := valueKey{characterID, col.ItemID}
	var v optional.Optional[int64]
	if col.IsCurrency {
		x, err := d.svc.Currency.CurrencyAmount(ctx, characterID, col.ItemID)
		if err != nil {
			slog.Warn("datatool: Failed to fetch currency", "characterID", characterID, "itemID", col.ItemID, "error", err)
			v = d.lastValue(key)
		} else {
			v = optional.New(x)
		}
	} else if d.svc.Inventory != nil {
		x, err := d.svc.Inventory.ItemQuantity(ctx, characterID, col.ItemID)
		if err != nil {
			slog.Warn("datatool: Failed to fetch quantity", "characterID", characterID, "itemID", col.ItemID, "error", err)
			v = d.lastValue(key)
		} else {
			v = optional.New(int64(x))
		}
	}
	if d.svc.Bridge != nil {
		x, found, err := d.svc.Bridge.ExternalQuantity(ctx, characterID, col.ItemID)
		if err != nil {
			slog.Warn("datatool: Failed to fetch external quantity", "characterID", characterID, "itemID", col.ItemID, "error", err)
		} else if found {
			v = optional.New(v.ValueOrZero() + int64(x))
		}
	}
	value, ok := v.Value()
	if !ok {
		return v
	}
	d.lastValues[key] = value
	if col.StoreHistory && d.svc.Tracked != nil {
		if err := d.svc.Tracked.RecordValue(ctx, characterID, col.ItemID, value); err != nil {
			slog.Warn("datatool: Failed to record value", "characterID", characterID, "itemID", col.ItemID, "error", err)
		}
	}
	return v
}

func (d *DataTool) lastValue(key valueKey) optional.Optional[int64] {
	v, ok := d.lastValues[key]
	if !ok {
		return optional.Optional[int64]{}
	}
	return optional.New(v)
}

// rowValue returns the market value of all items in a row.
// Currencies and items without a price are ignored.
func rowValue(values []optional.Optional[int64], columns []app.ColumnConfig, prices map[uint32]float64) optional.Optional[float64] {
	var total optional.Optional[float64]
	for i, col := range columns {
		if col.IsCurrency {
			continue
		}
		price, ok := prices[col.ItemID]
		if !ok {
			continue
		}
		q, ok := values[i].Value()
		if !ok {
			continue
		}
		total = optional.New(total.ValueOrZero() + float64(q)*price)
	}
	return total
}

func totalsRow(rows []row, columnCount int) row {
	t := row{
		isTotal: true,
		name:    "Total",
		values:  make([]optional.Optional[int64], columnCount),
	}
	for i := range columnCount {
		values := make([]optional.Optional[int64], 0, len(rows))
		for _, r := range rows {
			values = append(values, r.values[i])
		}
		t.values[i] = optional.Sum(values...)
	}
	var values []optional.Optional[float64]
	for _, r := range rows {
		values = append(values, r.value)
	}
	t.value = optional.Sum(values...)
	return t
}
