package datatool

import (
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	kxlayout "github.com/ErikKalkoken/fyne-kx/layout"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"github.com/dustin/go-humanize"

	"github.com/ErikKalkoken/itembuddy/internal/app"
	"github.com/ErikKalkoken/itembuddy/internal/optional"
)

const favoriteMarker = "★ "

// toolView is the widget of a tool. All methods must be called on the UI goroutine.
type toolView struct {
	widget.BaseWidget

	list  *widget.List
	s     *snapshot
	table *widget.Table
	top   *widget.Label
}

func newToolView() *toolView {
	w := &toolView{
		s:   new(snapshot),
		top: widget.NewLabel(""),
	}
	w.ExtendBaseWidget(w)
	w.top.Importance = widget.LowImportance
	w.top.Hide()
	w.table = w.makeTable()
	w.list = w.makeList()
	w.list.Hide()
	return w
}

func (w *toolView) CreateRenderer() fyne.WidgetRenderer {
	c := container.NewBorder(w.top, nil, nil, nil, container.NewStack(w.table, w.list))
	return widget.NewSimpleRenderer(c)
}

// publish replaces the shown data with s.
func (w *toolView) publish(s *snapshot) {
	w.s = s
	if len(s.rows) == 0 {
		w.top.SetText("No characters")
		w.top.Show()
	} else {
		w.top.Hide()
	}
	switch s.settings.ViewMode {
	case app.ViewList:
		w.table.Hide()
		w.list.Show()
		w.list.Refresh()
	default:
		w.list.Hide()
		w.table.Show()
		for i, width := range s.columnWidths() {
			w.table.SetColumnWidth(i, width)
		}
		w.table.Refresh()
	}
}

func (w *toolView) makeTable() *widget.Table {
	t := widget.NewTable(
		func() (rows int, cols int) {
			return len(w.s.rows), w.s.columnCount()
		},
		func() fyne.CanvasObject {
			return widget.NewRichText()
		},
		func(tci widget.TableCellID, co fyne.CanvasObject) {
			cell := co.(*widget.RichText)
			cell.Segments = w.s.cellSegments(tci.Row, tci.Col)
			cell.Truncation = fyne.TextTruncateClip
			cell.Refresh()
		},
	)
	t.ShowHeaderRow = true
	t.StickyColumnCount = 1
	t.CreateHeader = func() fyne.CanvasObject {
		icon := widget.NewIcon(nil)
		icon.Hide()
		label := ttwidget.NewLabel("Template")
		label.TextStyle.Bold = true
		return container.NewBorder(nil, nil, icon, nil, label)
	}
	t.UpdateHeader = func(tci widget.TableCellID, co fyne.CanvasObject) {
		c := co.(*fyne.Container).Objects
		label := c[0].(*ttwidget.Label)
		icon := c[1].(*widget.Icon)
		h, ok := w.s.header(tci.Col)
		if !ok {
			label.SetText(w.s.extraHeaderText(tci.Col))
			label.SetToolTip("")
			icon.Hide()
			return
		}
		text := h.label
		if h.isFavorite {
			text = favoriteMarker + text
		}
		label.SetText(text)
		label.SetToolTip(h.tooltip)
		if h.icon != nil {
			icon.SetResource(h.icon)
			icon.Show()
		} else {
			icon.Hide()
		}
	}
	t.OnSelected = func(_ widget.TableCellID) {
		t.UnselectAll()
	}
	return t
}

func (w *toolView) makeList() *widget.List {
	var l *widget.List
	l = widget.NewList(
		func() int {
			return len(w.s.rows)
		},
		func() fyne.CanvasObject {
			return container.New(layout.NewCustomPaddedVBoxLayout(0))
		},
		func(id widget.ListItemID, co fyne.CanvasObject) {
			c := co.(*fyne.Container)
			if id < 0 || id >= len(w.s.rows) {
				return
			}
			c.RemoveAll()
			rowLayout := kxlayout.NewColumns(w.s.maxLabelWidth() + theme.Padding())
			for col := range w.s.columnCount() {
				var label string
				if col == 0 {
					label = "Character"
				} else if h, ok := w.s.header(col); ok {
					label = h.label
				} else {
					label = w.s.extraHeaderText(col)
				}
				name := widget.NewLabel(label)
				name.Truncation = fyne.TextTruncateEllipsis
				value := widget.NewRichText(alignSegments(w.s.cellSegments(id, col), fyne.TextAlignTrailing)...)
				line := container.New(rowLayout, name, value)
				if col == 0 {
					name.TextStyle.Bold = true
					bg := canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground))
					c.Add(container.NewStack(bg, line))
				} else {
					c.Add(line)
				}
			}
			c.Add(widget.NewSeparator())
			l.SetItemHeight(id, c.MinSize().Height)
		},
	)
	l.OnSelected = func(_ widget.ListItemID) {
		l.UnselectAll()
	}
	return l
}

// columnCount returns the number of table columns including the character column.
func (s *snapshot) columnCount() int {
	n := 1 + len(s.headers)
	if s.showValue {
		n++
	}
	return n
}

// header returns the header of an item column.
func (s *snapshot) header(col int) (columnHeader, bool) {
	i := col - 1
	if i < 0 || i >= len(s.headers) {
		return columnHeader{}, false
	}
	return s.headers[i], true
}

func (s *snapshot) extraHeaderText(col int) string {
	if col == 0 {
		return "Character"
	}
	if s.showValue && col == len(s.headers)+1 {
		return "Value"
	}
	return ""
}

// columnWidths returns the widths of all table columns.
func (s *snapshot) columnWidths() []float32 {
	widths := []float32{characterColumnWidth}
	var maxWidth float32
	for _, h := range s.headers {
		maxWidth = max(maxWidth, h.column.Width)
	}
	for _, h := range s.headers {
		width := h.column.Width
		if s.settings.AutoSizeEqualColumns {
			width = maxWidth
		}
		if width <= 0 {
			width = widget.NewLabel(h.label).MinSize().Width
		}
		widths = append(widths, width)
	}
	if s.showValue {
		widths = append(widths, valueColumnWidth)
	}
	return widths
}

func (s *snapshot) maxLabelWidth() float32 {
	var m float32
	for col := range s.columnCount() {
		text := s.extraHeaderText(col)
		if h, ok := s.header(col); ok {
			text = h.label
		}
		m = max(m, widget.NewLabel(text).MinSize().Width)
	}
	return m
}

// cellSegments returns the content of a cell as rich text segments.
func (s *snapshot) cellSegments(rowID, col int) []widget.RichTextSegment {
	if rowID < 0 || rowID >= len(s.rows) || col < 0 || col >= s.columnCount() {
		return nil
	}
	r := s.rows[rowID]
	if col == 0 {
		color := theme.ColorNameForeground
		if r.isCurrent && s.settings.TextColorMode == app.TextColorImportance {
			color = theme.ColorNamePrimary
		}
		return []widget.RichTextSegment{newSegment(r.name, color, fyne.TextAlignLeading, r.isTotal || r.isCurrent)}
	}
	if h, ok := s.header(col); ok {
		v := r.values[col-1]
		return []widget.RichTextSegment{newSegment(formatQuantity(v), s.cellColor(h, v), fyne.TextAlignTrailing, r.isTotal)}
	}
	if s.showValue {
		return []widget.RichTextSegment{newSegment(formatValue(r.value), theme.ColorNameForeground, fyne.TextAlignTrailing, r.isTotal)}
	}
	return nil
}

// cellColor returns the text color of a quantity. Unknown color modes use the default color.
func (s *snapshot) cellColor(h columnHeader, v optional.Optional[int64]) fyne.ThemeColorName {
	switch s.settings.TextColorMode {
	case app.TextColorPreferredItem:
		return h.color
	case app.TextColorImportance:
		if v.ValueOrZero() == 0 {
			return theme.ColorNameDisabled
		}
		if h.isFavorite {
			return theme.ColorNamePrimary
		}
	}
	return theme.ColorNameForeground
}

func newSegment(text string, color fyne.ThemeColorName, align fyne.TextAlign, bold bool) *widget.TextSegment {
	return &widget.TextSegment{
		Text: text,
		Style: widget.RichTextStyle{
			Alignment: align,
			ColorName: color,
			Inline:    true,
			TextStyle: fyne.TextStyle{Bold: bold},
		},
	}
}

func alignSegments(segs []widget.RichTextSegment, align fyne.TextAlign) []widget.RichTextSegment {
	segs = slices.Clone(segs)
	for i, s := range segs {
		x, ok := s.(*widget.TextSegment)
		if !ok {
			continue
		}
		y := *x
		y.Style.Alignment = align
		segs[i] = &y
	}
	return segs
}

func formatQuantity(v optional.Optional[int64]) string {
	x, ok := v.Value()
	if !ok {
		return ""
	}
	return humanize.Comma(x)
}

func formatValue(v optional.Optional[float64]) string {
	x, ok := v.Value()
	if !ok {
		return ""
	}
	return humanize.FormatFloat(app.FloatFormat, x)
}
