package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	kxdialog "github.com/ErikKalkoken/fyne-kx/dialog"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"github.com/goccy/go-yaml"

	"github.com/ErikKalkoken/itembuddy/internal/app"
	"github.com/ErikKalkoken/itembuddy/internal/app/toolregistry"
)

// configurable is a tool which exposes its configuration.
type configurable interface {
	Columns() []app.ColumnConfig
	PresetName() string
	Settings() app.ToolSettings
}

type columnDump struct {
	ItemID       uint32  `yaml:"item_id"`
	IsCurrency   bool    `yaml:"is_currency"`
	Width        float32 `yaml:"width"`
	StoreHistory bool    `yaml:"store_history"`
}

type settingsDump struct {
	ViewMode             string `yaml:"view_mode"`
	TextColorMode        string `yaml:"text_color_mode"`
	AutoSizeEqualColumns bool   `yaml:"auto_size_equal_columns"`
}

type toolDump struct {
	Title    string       `yaml:"title"`
	Preset   string       `yaml:"preset,omitempty"`
	Position [2]float32   `yaml:"position,flow"`
	Settings settingsDump `yaml:"settings,omitempty"`
	Columns  []columnDump `yaml:"columns,omitempty"`
}

// toolConfigYAML returns the configuration of a tool as YAML.
// Only title and position are reported for tools which do not expose a configuration.
func toolConfigYAML(t toolregistry.Tool) (string, error) {
	p := t.Position()
	d := toolDump{
		Title:    t.Title(),
		Position: [2]float32{p.X, p.Y},
	}
	if c, ok := t.(configurable); ok {
		d.Preset = c.PresetName()
		s := c.Settings()
		d.Settings = settingsDump{
			ViewMode:             s.ViewMode.String(),
			TextColorMode:        s.TextColorMode.String(),
			AutoSizeEqualColumns: s.AutoSizeEqualColumns,
		}
		for _, x := range c.Columns() {
			d.Columns = append(d.Columns, columnDump(x))
		}
	}
	b, err := yaml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("tool config of %s: %w", t.Title(), err)
	}
	return string(b), nil
}

func (u *UI) showInspector(t toolregistry.Tool) {
	s, err := toolConfigYAML(t)
	if err != nil {
		slog.Error("Failed to inspect tool", "error", err)
		s = err.Error()
	}
	text := widget.NewMultiLineEntry()
	text.SetText(s)
	text.TextStyle.Monospace = true
	text.Disable()
	copyButton := widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), func() {
		u.App.Clipboard().SetContent(s)
	})
	c := container.NewBorder(nil, container.NewHBox(copyButton), nil, nil, text)
	d := dialog.NewCustom("Inspect: "+t.Title(), "Close", c, u.Window)
	kxdialog.AddDialogKeyHandler(d, u.Window)
	d.Resize(fyne.NewSize(500, 400))
	d.Show()
}

// toolFrame wraps the content of a tool with a bar for developer actions.
type toolFrame struct {
	widget.BaseWidget

	content fyne.CanvasObject
	inspect *ttwidget.Button
}

func newToolFrame(content fyne.CanvasObject, onInspect func()) *toolFrame {
	w := &toolFrame{content: content}
	w.ExtendBaseWidget(w)
	w.inspect = ttwidget.NewButtonWithIcon("", theme.SearchIcon(), onInspect)
	w.inspect.SetToolTip("Inspect")
	return w
}

func (w *toolFrame) CreateRenderer() fyne.WidgetRenderer {
	top := container.NewHBox(w.inspect)
	return widget.NewSimpleRenderer(container.NewBorder(top, nil, nil, nil, w.content))
}
