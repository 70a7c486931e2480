// Package ui provides the overlay UI of the app.
//
// The main window shows a toolbar and a desk on which tools float as inner windows.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"

	"github.com/ErikKalkoken/itembuddy/internal/app/characterservice"
	"github.com/ErikKalkoken/itembuddy/internal/app/settings"
	"github.com/ErikKalkoken/itembuddy/internal/app/toolregistry"
	"github.com/ErikKalkoken/itembuddy/internal/singleinstance"
)

const (
	appName         = "Item Buddy"
	toolWindowSize  = 600
	toolWindowRatio = 0.5
	toolCascade     = 30
	keyUpdateTools  = "update-tools"
	listenerKey     = "ui"
)

// openTool is a tool shown on the desk.
type openTool struct {
	content fyne.CanvasObject
	typeID  string
	tool    toolregistry.Tool
	window  *container.InnerWindow
}

// UI represents the user interface of the app.
type UI struct {
	App    fyne.App
	Window fyne.Window

	cs        *characterservice.CharacterService
	isDebug   bool
	isOffline bool
	registry  *toolregistry.Registry
	settings  *settings.Settings
	sig       *singleinstance.Group

	characterSelect *widget.Select
	characterIDs    map[string]int64
	desk            *container.MultipleWindows
	toolbar         *toolbar

	mu       sync.Mutex
	tools    []*openTool
	stopOnce sync.Once
	stop     chan struct{}
}

type Params struct {
	App              fyne.App
	CharacterService *characterservice.CharacterService
	IsDebug          bool
	IsOffline        bool
	Registry         *toolregistry.Registry
	Settings         *settings.Settings
}

// New returns a new UI.
func New(arg Params) *UI {
	if arg.App == nil || arg.CharacterService == nil || arg.Registry == nil || arg.Settings == nil {
		panic("ui: missing params")
	}
	u := &UI{
		App:          arg.App,
		cs:           arg.CharacterService,
		characterIDs: make(map[string]int64),
		desk:         container.NewMultipleWindows(),
		isDebug:      arg.IsDebug,
		isOffline:    arg.IsOffline,
		registry:     arg.Registry,
		settings:     arg.Settings,
		sig:          singleinstance.NewGroup(),
		stop:         make(chan struct{}),
	}
	u.Window = u.App.NewWindow(u.windowTitle())
	u.characterSelect = widget.NewSelect(nil, func(s string) {
		id, ok := u.characterIDs[s]
		if !ok {
			return
		}
		go func() {
			if err := u.cs.SetCurrentCharacterID(context.Background(), id); err != nil {
				slog.Error("Failed to set current character", "characterID", id, "error", err)
			}
		}()
	})
	u.characterSelect.PlaceHolder = "No character"
	u.toolbar = newToolbar(u)
	u.cs.CurrentCharacterChanged.AddListener(func(_ context.Context, _ int64) {
		go u.UpdateTools()
	}, listenerKey)
	content := container.NewBorder(u.toolbar, nil, nil, nil, u.desk)
	u.Window.SetContent(fynetooltip.AddWindowToolTipLayer(content, u.Window.Canvas()))
	u.Window.Resize(u.settings.WindowSize())
	u.Window.SetMaster()
	u.App.Lifecycle().SetOnStopped(func() {
		u.Stop()
	})
	return u
}

// ShowAndRun shows the main window and runs the app. It blocks until the app is closed.
func (u *UI) ShowAndRun() {
	u.Start()
	u.Window.ShowAndRun()
}

// Start loads the characters, restores the last open tools and starts the update ticker.
func (u *UI) Start() {
	u.refreshCharacters()
	u.restoreTools()
	go u.UpdateTools()
	u.startUpdateTicker()
}

// Stop persists the UI state and stops all background work. It can be called more than once.
func (u *UI) Stop() {
	u.stopOnce.Do(func() {
		u.saveTools()
		u.settings.SetWindowSize(u.Window.Canvas().Size())
		u.cs.CurrentCharacterChanged.RemoveListener(listenerKey)
		close(u.stop)
		slog.Info("UI stopped")
	})
}

// IsDeveloperMode reports whether developer features are enabled.
func (u *UI) IsDeveloperMode() bool {
	return u.isDebug || u.settings.DeveloperMode()
}

func (u *UI) windowTitle() string {
	s := appName
	if u.isOffline {
		s += " [OFFLINE]"
	}
	if u.isDebug {
		s += " [DEBUG]"
	}
	return s
}

// OpenTool opens a new tool of a type at a position.
func (u *UI) OpenTool(typeID string, pos fyne.Position) (toolregistry.Tool, error) {
	t, err := u.registry.Instantiate(typeID, pos)
	if err != nil {
		return nil, err
	}
	ot := &openTool{typeID: typeID, tool: t}
	ot.content = u.makeToolContent(ot)
	ot.window = container.NewInnerWindow(t.Title(), ot.content)
	ot.window.CloseIntercept = func() {
		u.CloseTool(t)
	}
	u.mu.Lock()
	u.tools = append(u.tools, ot)
	u.mu.Unlock()
	u.desk.Add(ot.window)
	ot.window.Resize(fyne.NewSize(toolWindowSize, toolWindowSize*toolWindowRatio))
	ot.window.Move(t.Position())
	slog.Info("Tool opened", "type", typeID, "title", t.Title())
	go t.Update()
	return t, nil
}

// CloseTool closes an open tool. Unknown tools are ignored.
func (u *UI) CloseTool(t toolregistry.Tool) {
	u.mu.Lock()
	i := slices.IndexFunc(u.tools, func(x *openTool) bool {
		return x.tool == t
	})
	if i == -1 {
		u.mu.Unlock()
		return
	}
	ot := u.tools[i]
	u.tools = slices.Delete(u.tools, i, i+1)
	u.mu.Unlock()
	u.desk.Windows = slices.DeleteFunc(u.desk.Windows, func(w *container.InnerWindow) bool {
		return w == ot.window
	})
	u.desk.Refresh()
	u.saveTools()
	slog.Info("Tool closed", "type", ot.typeID, "title", t.Title())
}

// OpenTools returns all open tools in the order they were opened.
func (u *UI) OpenTools() []toolregistry.Tool {
	u.mu.Lock()
	defer u.mu.Unlock()
	tools := make([]toolregistry.Tool, 0, len(u.tools))
	for _, ot := range u.tools {
		tools = append(tools, ot.tool)
	}
	return tools
}

// nextToolPosition returns a position for a new tool, which does not cover the last tool completely.
func (u *UI) nextToolPosition() fyne.Position {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := float32(len(u.tools) % 10)
	return fyne.NewPos(n*toolCascade, n*toolCascade)
}

// saveTools persists which tools are open and where they are.
func (u *UI) saveTools() {
	u.mu.Lock()
	defer u.mu.Unlock()
	var tools []settings.OpenTool
	for _, ot := range u.tools {
		p := ot.window.Position()
		tools = append(tools, settings.OpenTool{ID: ot.typeID, X: p.X, Y: p.Y})
	}
	u.settings.SetOpenTools(tools)
}

// restoreTools opens the tools which were open last time.
// Tools which can no longer be opened are skipped.
func (u *UI) restoreTools() {
	for _, x := range u.settings.OpenTools() {
		_, err := u.OpenTool(x.ID, fyne.NewPos(x.X, x.Y))
		if errors.Is(err, toolregistry.ErrUnknownToolType) || errors.Is(err, toolregistry.ErrToolUnavailable) {
			slog.Warn("Skipping tool on restore", "type", x.ID, "error", err)
			continue
		}
		if err != nil {
			slog.Error("Failed to restore tool", "type", x.ID, "error", err)
		}
	}
}

// UpdateTools updates all open tools. Calls are skipped while an update is running.
func (u *UI) UpdateTools() {
	u.sig.TryDo(keyUpdateTools, func() {
		start := time.Now()
		if !u.isOffline && u.cs.HasBridge() {
			ctx := context.Background()
			n, err := u.cs.UpdateFromBridge(ctx)
			if err != nil {
				slog.Warn("Failed to update characters from bridge", "error", err)
			} else if n > 0 {
				u.updateCharacters(ctx)
			}
		}
		tools := u.OpenTools()
		for _, t := range tools {
			t.Update()
		}
		slog.Debug("Tools updated", "count", len(tools), "duration", time.Since(start))
	})
}

func (u *UI) startUpdateTicker() {
	d := time.Duration(u.settings.ToolUpdateSeconds()) * time.Second
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-u.stop:
				return
			case <-ticker.C:
				u.UpdateTools()
			}
		}
	}()
}

// refreshCharacters updates the character picker in the background.
func (u *UI) refreshCharacters() {
	go u.updateCharacters(context.Background())
}

// updateCharacters updates the character picker and returns after the picker was updated.
func (u *UI) updateCharacters(ctx context.Context) {
	cc, err := u.cs.ListCharacters(ctx)
	if err != nil {
		slog.Error("Failed to list characters", "error", err)
		return
	}
	currentID := u.cs.CurrentCharacterID()
	options := make([]string, 0, len(cc))
	ids := make(map[string]int64)
	var selected string
	for _, c := range cc {
		s := c.Name
		if c.World != "" {
			s = fmt.Sprintf("%s (%s)", c.Name, c.World)
		}
		if _, found := ids[s]; found {
			s = fmt.Sprintf("%s #%d", s, c.ID)
		}
		options = append(options, s)
		ids[s] = c.ID
		if c.ID == currentID {
			selected = s
		}
	}
	fyne.DoAndWait(func() {
		u.characterIDs = ids
		u.characterSelect.SetOptions(options)
		if selected != "" {
			u.characterSelect.SetSelected(selected)
		} else {
			u.characterSelect.ClearSelected()
		}
	})
}
