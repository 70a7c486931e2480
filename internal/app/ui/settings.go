package ui

import (
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	kxdialog "github.com/ErikKalkoken/fyne-kx/dialog"
	kxwidget "github.com/ErikKalkoken/fyne-kx/widget"

	"github.com/ErikKalkoken/itembuddy/internal/app"
)

const (
	toolUpdateSecondsMin = 5
	toolUpdateSecondsMax = 300
)

func (u *UI) showSettingsDialog() {
	d := dialog.NewCustom("Settings", "Close", u.makeSettingsForm(), u.Window)
	kxdialog.AddDialogKeyHandler(d, u.Window)
	d.Show()
}

func (u *UI) makeSettingsForm() *widget.Form {
	// log level
	var levels []string
	for _, n := range u.settings.LogLevelNames() {
		levels = append(levels, app.Titler.String(n))
	}
	logLevel := widget.NewSelect(levels, func(s string) {
		u.settings.SetLogLevel(strings.ToLower(s))
		slog.SetLogLoggerLevel(u.settings.LogLevelSlog())
	})
	logLevel.SetSelected(app.Titler.String(u.settings.LogLevel()))

	developerMode := kxwidget.NewSwitch(func(on bool) {
		u.settings.SetDeveloperMode(on)
		u.refreshToolWindows()
	})
	developerMode.SetState(u.settings.DeveloperMode())

	totalsRow := kxwidget.NewSwitch(func(on bool) {
		u.settings.SetShowTotalsRow(on)
		go u.UpdateTools()
	})
	totalsRow.SetState(u.settings.ShowTotalsRow())

	marketWorld := widget.NewEntry()
	marketWorld.SetText(u.settings.MarketWorld())
	marketWorld.OnChanged = func(s string) {
		u.settings.SetMarketWorld(strings.TrimSpace(s))
	}

	bridgeURL := widget.NewEntry()
	bridgeURL.SetPlaceHolder("http://localhost:8080")
	bridgeURL.SetText(u.settings.BridgeURL())
	bridgeURL.OnChanged = func(s string) {
		u.settings.SetBridgeURL(strings.TrimSpace(s))
	}

	updateSeconds := kxwidget.NewSlider(toolUpdateSecondsMin, toolUpdateSecondsMax)
	updateSeconds.SetValue(float64(u.settings.ToolUpdateSeconds()))
	updateSeconds.OnChangeEnded = func(v float64) {
		u.settings.SetToolUpdateSeconds(int(v))
	}

	f := &widget.Form{
		Items: []*widget.FormItem{
			{
				Text:     "Log level",
				Widget:   logLevel,
				HintText: "Current log level",
			},
			{
				Text:     "Developer mode",
				Widget:   developerMode,
				HintText: "Allows inspecting the configuration of tools",
			},
			{
				Text:     "Totals row",
				Widget:   totalsRow,
				HintText: "Shows a row with the sum over all characters",
			},
			{
				Text:     "Market world",
				Widget:   marketWorld,
				HintText: "World for fetching market prices",
			},
			{
				Text:     "Bridge URL",
				Widget:   bridgeURL,
				HintText: "URL of a companion process for external quantities (requires restart)",
			},
			{
				Text:     "Update interval",
				Widget:   updateSeconds,
				HintText: "Seconds between updates of open tools (requires restart)",
			},
		},
	}
	return f
}

// refreshToolWindows rebuilds the content of all tool windows,
// e.g. after developer mode was toggled.
func (u *UI) refreshToolWindows() {
	u.mu.Lock()
	tools := make([]*openTool, len(u.tools))
	copy(tools, u.tools)
	u.mu.Unlock()
	for _, ot := range tools {
		ot.content = u.makeToolContent(ot)
		ot.window.SetContent(ot.content)
	}
}

// makeToolContent returns the content for the window of a tool.
func (u *UI) makeToolContent(ot *openTool) fyne.CanvasObject {
	if !u.IsDeveloperMode() {
		return ot.tool.Content()
	}
	return newToolFrame(ot.tool.Content(), func() {
		u.showInspector(ot.tool)
	})
}
