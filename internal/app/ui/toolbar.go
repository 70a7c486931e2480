package ui

import (
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	kxwidget "github.com/ErikKalkoken/fyne-kx/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"github.com/ErikKalkoken/itembuddy/internal/app/toolregistry"
)

// toolbar is the bar at the top of the main window.
type toolbar struct {
	widget.BaseWidget

	about     *ttwidget.Button
	character *widget.Select
	settings  *ttwidget.Button
	tools     *kxwidget.IconButton
	u         *UI
}

func newToolbar(u *UI) *toolbar {
	a := &toolbar{
		character: u.characterSelect,
		u:         u,
	}
	a.ExtendBaseWidget(a)
	menu := makeToolsMenu(u.registry.ToolTypes(), func(id string) {
		if _, err := u.OpenTool(id, u.nextToolPosition()); err != nil {
			slog.Error("Failed to open tool", "type", id, "error", err)
		}
	})
	a.tools = kxwidget.NewIconButtonWithMenu(theme.ContentAddIcon(), menu)
	a.settings = ttwidget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		u.showSettingsDialog()
	})
	a.settings.SetToolTip("Settings")
	a.about = ttwidget.NewButtonWithIcon("", theme.InfoIcon(), func() {
		u.showAboutDialog()
	})
	a.about.SetToolTip("About")
	return a
}

func (a *toolbar) CreateRenderer() fyne.WidgetRenderer {
	c := container.NewVBox(
		container.NewHBox(
			widget.NewLabel("Character:"),
			a.character,
			layout.NewSpacer(),
			a.tools,
			a.settings,
			a.about,
		),
		widget.NewSeparator(),
	)
	return widget.NewSimpleRenderer(c)
}

// makeToolsMenu returns a menu with an entry for each tool type.
// Entries are nested into sub menus by the category path of their tool type.
func makeToolsMenu(types []toolregistry.ToolType, open func(id string)) *fyne.Menu {
	var items []*fyne.MenuItem
	subMenus := make(map[string]*fyne.MenuItem)
	for _, tt := range types {
		parentItems := &items
		var path []string
		for _, p := range tt.CategoryPath() {
			path = append(path, p)
			key := strings.Join(path, "/")
			sm, found := subMenus[key]
			if !found {
				sm = fyne.NewMenuItem(p, nil)
				sm.ChildMenu = fyne.NewMenu("")
				subMenus[key] = sm
				*parentItems = append(*parentItems, sm)
			}
			parentItems = &sm.ChildMenu.Items
		}
		id := tt.ID
		*parentItems = append(*parentItems, fyne.NewMenuItem(tt.Label, func() {
			open(id)
		}))
	}
	if len(items) == 0 {
		it := fyne.NewMenuItem("No tools available", nil)
		it.Disabled = true
		items = append(items, it)
	}
	return fyne.NewMenu("Tools", items...)
}
