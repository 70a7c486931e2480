package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	kxdialog "github.com/ErikKalkoken/fyne-kx/dialog"

	"github.com/ErikKalkoken/itembuddy/internal/github"
)

const (
	githubOwner = "ErikKalkoken"
	githubRepo  = "itembuddy"
	websiteURL  = "https://github.com/ErikKalkoken/itembuddy"
)

func (u *UI) showAboutDialog() {
	d := dialog.NewCustom("About", "Close", u.makeAboutPage(), u.Window)
	kxdialog.AddDialogKeyHandler(d, u.Window)
	d.Show()
}

func (u *UI) makeAboutPage() fyne.CanvasObject {
	title := widget.NewLabel(appName)
	title.SizeName = theme.SizeNameSubHeadingText
	title.TextStyle.Bold = true

	v, err := github.NormalizeVersion(u.App.Metadata().Version)
	if err != nil {
		slog.Error("normalize local version", "error", err)
		v = "?"
	}
	uri, _ := url.Parse(websiteURL)
	latest := widget.NewLabel("")
	latest.Importance = widget.HighImportance
	latest.Hide()
	if !u.isOffline && v != "?" {
		go func() {
			info, err := github.AvailableUpdate(githubOwner, githubRepo, v)
			if errors.Is(err, github.ErrNoRelease) {
				slog.Info("No release published yet")
				return
			}
			if err != nil {
				slog.Warn("Failed to check for update", "error", err)
				return
			}
			if !info.IsRemoteNewer {
				return
			}
			fyne.Do(func() {
				latest.SetText("Update available: " + info.Latest)
				latest.Show()
			})
		}()
	}

	size := u.Window.Canvas().Size()
	techInfos := container.New(layout.NewCustomPaddedVBoxLayout(0),
		container.NewHBox(
			widget.NewLabel("Main window size:"),
			layout.NewSpacer(),
			widget.NewLabel(fmt.Sprintf("%d x %d", int(size.Width), int(size.Height))),
		),
		container.NewHBox(
			widget.NewLabel("Tool types:"),
			layout.NewSpacer(),
			widget.NewLabel(fmt.Sprint(u.registry.Size())),
		),
		container.NewHBox(
			widget.NewLabel("Open tools:"),
			layout.NewSpacer(),
			widget.NewLabel(fmt.Sprint(len(u.OpenTools()))),
		),
	)
	if !u.IsDeveloperMode() {
		techInfos.Hide()
	}
	c := container.New(
		layout.NewCustomPaddedVBoxLayout(0),
		title,
		container.NewHBox(widget.NewLabel(v), latest),
		techInfos,
		widget.NewHyperlink("Website", uri),
		widget.NewLabel("(c) 2025 Erik Kalkoken"),
	)
	return c
}
