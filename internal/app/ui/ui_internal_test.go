package ui

import (
	"bytes"
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErikKalkoken/itembuddy/internal/app"
	"github.com/ErikKalkoken/itembuddy/internal/app/characterservice"
	"github.com/ErikKalkoken/itembuddy/internal/app/ipcbridge"
	"github.com/ErikKalkoken/itembuddy/internal/app/settings"
	"github.com/ErikKalkoken/itembuddy/internal/app/storage"
	"github.com/ErikKalkoken/itembuddy/internal/app/storage/testutil"
	"github.com/ErikKalkoken/itembuddy/internal/app/toolregistry"
	"github.com/ErikKalkoken/itembuddy/internal/memcache"
)

type fakeTool struct {
	content  *widget.Label
	pos      fyne.Position
	title    string
	updCount atomic.Int32
}

func newFakeTool(title string, pos fyne.Position) *fakeTool {
	return &fakeTool{content: widget.NewLabel(title), pos: pos, title: title}
}

func (t *fakeTool) Content() fyne.CanvasObject { return t.content }
func (t *fakeTool) Position() fyne.Position    { return t.pos }
func (t *fakeTool) Title() string              { return t.title }
func (t *fakeTool) Update()                    { t.updCount.Add(1) }

type fakeConfigurableTool struct {
	*fakeTool
	columns  []app.ColumnConfig
	preset   string
	settings app.ToolSettings
}

func (t *fakeConfigurableTool) Columns() []app.ColumnConfig { return t.columns }
func (t *fakeConfigurableTool) PresetName() string          { return t.preset }
func (t *fakeConfigurableTool) Settings() app.ToolSettings  { return t.settings }

type bridgeFake struct {
	chars []ipcbridge.Character
}

func (b bridgeFake) Characters(_ context.Context) ([]ipcbridge.Character, error) {
	return b.chars, nil
}

func (b bridgeFake) Currencies(_ context.Context, _ int64) ([]ipcbridge.Currency, error) {
	return nil, nil
}

func (b bridgeFake) Inventory(_ context.Context, _ int64) ([]ipcbridge.InventoryItem, error) {
	return []ipcbridge.InventoryItem{{ItemID: 2, Quantity: 42}}, nil
}

func newTestUI(t *testing.T, st *storage.Storage, r *toolregistry.Registry, bridge ...characterservice.BridgeSource) *UI {
	t.Helper()
	a := test.NewTempApp(t)
	cache := memcache.New()
	t.Cleanup(cache.Close)
	s := settings.New(a.Preferences())
	arg := characterservice.Params{
		Cache:    cache,
		Settings: s,
		Storage:  st,
	}
	if len(bridge) > 0 {
		arg.Bridge = bridge[0]
	}
	cs := characterservice.New(arg)
	u := New(Params{
		App:              a,
		CharacterService: cs,
		Registry:         r,
		Settings:         s,
	})
	t.Cleanup(u.Stop)
	return u
}

func TestUI_Tools(t *testing.T) {
	db, st, _ := testutil.NewDBInMemory()
	defer db.Close()
	t.Run("can open a tool at its position", func(t *testing.T) {
		// given
		r := toolregistry.New()
		r.DefineToolType("alpha", "Alpha", func(pos fyne.Position) toolregistry.Tool {
			return newFakeTool("Alpha", pos)
		}, "", "Tables")
		u := newTestUI(t, st, r)
		// when
		tool, err := u.OpenTool("alpha", fyne.NewPos(20, 30))
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, []toolregistry.Tool{tool}, u.OpenTools())
			assert.Len(t, u.desk.Windows, 1)
			assert.Equal(t, fyne.NewPos(20, 30), u.desk.Windows[0].Position())
			ft := tool.(*fakeTool)
			assert.Eventually(t, func() bool {
				return ft.updCount.Load() > 0
			}, time.Second, 10*time.Millisecond)
		}
	})
	t.Run("should return error for unknown tool type", func(t *testing.T) {
		u := newTestUI(t, st, toolregistry.New())
		_, err := u.OpenTool("unknown", fyne.NewPos(0, 0))
		assert.ErrorIs(t, err, toolregistry.ErrUnknownToolType)
		assert.Len(t, u.OpenTools(), 0)
	})
	t.Run("can close a tool", func(t *testing.T) {
		// given
		r := toolregistry.New()
		r.DefineToolType("alpha", "Alpha", func(pos fyne.Position) toolregistry.Tool {
			return newFakeTool("Alpha", pos)
		}, "", "")
		u := newTestUI(t, st, r)
		t1, err := u.OpenTool("alpha", fyne.NewPos(0, 0))
		require.NoError(t, err)
		t2, err := u.OpenTool("alpha", fyne.NewPos(10, 10))
		require.NoError(t, err)
		// when
		u.CloseTool(t1)
		// then
		assert.Equal(t, []toolregistry.Tool{t2}, u.OpenTools())
		assert.Len(t, u.desk.Windows, 1)
		assert.Equal(t, []settings.OpenTool{{ID: "alpha", X: 10, Y: 10}}, u.settings.OpenTools())
	})
	t.Run("should ignore closing an unknown tool", func(t *testing.T) {
		u := newTestUI(t, st, toolregistry.New())
		u.CloseTool(newFakeTool("Other", fyne.NewPos(0, 0)))
		assert.Len(t, u.OpenTools(), 0)
	})
	t.Run("can restore open tools and skip those which are no longer available", func(t *testing.T) {
		// given
		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
		t.Cleanup(func() {
			slog.SetDefault(prev)
		})
		r := toolregistry.New()
		r.DefineToolType("alpha", "Alpha", func(pos fyne.Position) toolregistry.Tool {
			return newFakeTool("Alpha", pos)
		}, "", "")
		r.DefineToolType("broken", "Broken", func(pos fyne.Position) toolregistry.Tool {
			return nil
		}, "", "")
		u := newTestUI(t, st, r)
		u.settings.SetOpenTools([]settings.OpenTool{
			{ID: "alpha", X: 5, Y: 6},
			{ID: "gone", X: 1, Y: 1},
			{ID: "broken", X: 2, Y: 2},
		})
		// when
		u.restoreTools()
		// then
		tools := u.OpenTools()
		if assert.Len(t, tools, 1) {
			assert.Equal(t, "Alpha", tools[0].Title())
			assert.Equal(t, fyne.NewPos(5, 6), tools[0].Position())
		}
		assert.Contains(t, buf.String(), "type=gone")
		assert.Contains(t, buf.String(), "type=broken")
	})
	t.Run("can save open tools with their current window positions", func(t *testing.T) {
		// given
		r := toolregistry.New()
		r.DefineToolType("alpha", "Alpha", func(pos fyne.Position) toolregistry.Tool {
			return newFakeTool("Alpha", pos)
		}, "", "")
		u := newTestUI(t, st, r)
		_, err := u.OpenTool("alpha", fyne.NewPos(0, 0))
		require.NoError(t, err)
		u.desk.Windows[0].Move(fyne.NewPos(40, 50))
		// when
		u.saveTools()
		// then
		assert.Equal(t, []settings.OpenTool{{ID: "alpha", X: 40, Y: 50}}, u.settings.OpenTools())
	})
	t.Run("can update all open tools", func(t *testing.T) {
		// given
		r := toolregistry.New()
		r.DefineToolType("alpha", "Alpha", func(pos fyne.Position) toolregistry.Tool {
			return newFakeTool("Alpha", pos)
		}, "", "")
		u := newTestUI(t, st, r)
		tool, err := u.OpenTool("alpha", fyne.NewPos(0, 0))
		require.NoError(t, err)
		ft := tool.(*fakeTool)
		assert.Eventually(t, func() bool {
			return ft.updCount.Load() == 1
		}, time.Second, 10*time.Millisecond)
		// when
		u.UpdateTools()
		// then
		assert.EqualValues(t, 2, ft.updCount.Load())
	})
}

func TestUI_Characters(t *testing.T) {
	db, st, factory := testutil.NewDBInMemory()
	defer db.Close()
	t.Run("should show characters in picker", func(t *testing.T) {
		// given
		testutil.TruncateTables(db)
		c1 := factory.CreateCharacter(storage.CreateCharacterParams{Name: "Alpha", World: "Gilgamesh"})
		factory.CreateCharacter(storage.CreateCharacterParams{Name: "Bravo", World: "Zalera"})
		u := newTestUI(t, st, toolregistry.New())
		require.NoError(t, u.cs.SetCurrentCharacterID(context.Background(), c1.ID))
		// when
		u.updateCharacters(context.Background())
		// then
		assert.Equal(t, "Alpha (Gilgamesh)", u.characterSelect.Selected)
		assert.ElementsMatch(t, []string{"Alpha (Gilgamesh)", "Bravo (Zalera)"}, u.characterSelect.Options)
	})
	t.Run("should change current character when selected", func(t *testing.T) {
		// given
		testutil.TruncateTables(db)
		c := factory.CreateCharacter(storage.CreateCharacterParams{Name: "Charlie", World: "Ultros"})
		u := newTestUI(t, st, toolregistry.New())
		u.updateCharacters(context.Background())
		require.Len(t, u.characterSelect.Options, 1)
		// when
		u.characterSelect.SetSelected("Charlie (Ultros)")
		// then
		assert.Eventually(t, func() bool {
			return u.cs.CurrentCharacterID() == c.ID
		}, time.Second, 10*time.Millisecond)
	})
	t.Run("should add characters from bridge when updating tools", func(t *testing.T) {
		// given
		testutil.TruncateTables(db)
		b := bridgeFake{chars: []ipcbridge.Character{{ID: 77, Name: "Delta", World: "Sargatanas"}}}
		u := newTestUI(t, st, toolregistry.New(), b)
		// when
		u.UpdateTools()
		// then
		assert.Equal(t, []string{"Delta (Sargatanas)"}, u.characterSelect.Options)
		q, err := u.cs.ItemQuantity(context.Background(), 77, 2)
		if assert.NoError(t, err) {
			assert.Equal(t, 42, q)
		}
	})
}

func TestMakeToolsMenu(t *testing.T) {
	t.Run("should nest entries by category", func(t *testing.T) {
		// given
		types := []toolregistry.ToolType{
			{ID: "a", Label: "Alpha", Category: "Tables/Items"},
			{ID: "b", Label: "Bravo", Category: "Tables/Items"},
			{ID: "c", Label: "Charlie", Category: "Tables"},
			{ID: "d", Label: "Delta"},
		}
		var opened string
		// when
		m := makeToolsMenu(types, func(id string) {
			opened = id
		})
		// then
		if assert.Len(t, m.Items, 2) {
			tables := m.Items[0]
			assert.Equal(t, "Tables", tables.Label)
			if assert.Len(t, tables.ChildMenu.Items, 2) {
				items := tables.ChildMenu.Items[0]
				assert.Equal(t, "Items", items.Label)
				if assert.Len(t, items.ChildMenu.Items, 2) {
					assert.Equal(t, "Alpha", items.ChildMenu.Items[0].Label)
					items.ChildMenu.Items[1].Action()
					assert.Equal(t, "b", opened)
				}
				assert.Equal(t, "Charlie", tables.ChildMenu.Items[1].Label)
			}
			assert.Equal(t, "Delta", m.Items[1].Label)
		}
	})
	t.Run("should show disabled entry when there are no tools", func(t *testing.T) {
		m := makeToolsMenu(nil, func(string) {})
		if assert.Len(t, m.Items, 1) {
			assert.True(t, m.Items[0].Disabled)
		}
	})
}

func TestToolConfigYAML(t *testing.T) {
	t.Run("should report configuration of configurable tools", func(t *testing.T) {
		// given
		tool := &fakeConfigurableTool{
			fakeTool: newFakeTool("Crystals", fyne.NewPos(10, 20)),
			columns: []app.ColumnConfig{
				{ItemID: 2, Width: 60},
				{ItemID: 1, IsCurrency: true, Width: 90, StoreHistory: true},
			},
			preset: "Crystal Table",
			settings: app.ToolSettings{
				ViewMode:             app.ViewList,
				TextColorMode:        app.TextColorPreferredItem,
				AutoSizeEqualColumns: true,
			},
		}
		// when
		got, err := toolConfigYAML(tool)
		// then
		if assert.NoError(t, err) {
			assert.Contains(t, got, "title: Crystals")
			assert.Contains(t, got, "preset: Crystal Table")
			assert.Contains(t, got, "view_mode: list")
			assert.Contains(t, got, "text_color_mode: preferred-item")
			assert.Contains(t, got, "auto_size_equal_columns: true")
			assert.Contains(t, got, "item_id: 2")
			assert.Contains(t, got, "is_currency: true")
			assert.Contains(t, got, "store_history: true")
		}
	})
	t.Run("should report title and position of other tools", func(t *testing.T) {
		got, err := toolConfigYAML(newFakeTool("Other", fyne.NewPos(1, 2)))
		if assert.NoError(t, err) {
			assert.Contains(t, got, "title: Other")
			assert.NotContains(t, got, "columns")
		}
	})
}

func TestUI_DeveloperMode(t *testing.T) {
	db, st, _ := testutil.NewDBInMemory()
	defer db.Close()
	r := toolregistry.New()
	r.DefineToolType("alpha", "Alpha", func(pos fyne.Position) toolregistry.Tool {
		return newFakeTool("Alpha", pos)
	}, "", "")
	t.Run("should show tool content without frame by default", func(t *testing.T) {
		u := newTestUI(t, st, r)
		tool, err := u.OpenTool("alpha", fyne.NewPos(0, 0))
		require.NoError(t, err)
		assert.Equal(t, tool.Content(), u.tools[0].content)
	})
	t.Run("should wrap tool content with inspect frame in developer mode", func(t *testing.T) {
		u := newTestUI(t, st, r)
		u.settings.SetDeveloperMode(true)
		_, err := u.OpenTool("alpha", fyne.NewPos(0, 0))
		require.NoError(t, err)
		assert.IsType(t, &toolFrame{}, u.tools[0].content)
	})
	t.Run("should add inspect frame when developer mode is switched on", func(t *testing.T) {
		u := newTestUI(t, st, r)
		_, err := u.OpenTool("alpha", fyne.NewPos(0, 0))
		require.NoError(t, err)
		u.settings.SetDeveloperMode(true)
		u.refreshToolWindows()
		assert.IsType(t, &toolFrame{}, u.tools[0].content)
	})
}

func TestUI_Settings(t *testing.T) {
	db, st, _ := testutil.NewDBInMemory()
	defer db.Close()
	u := newTestUI(t, st, toolregistry.New())
	f := u.makeSettingsForm()
	assert.Len(t, f.Items, 6)
	logLevel := f.Items[0].Widget.(*widget.Select)
	logLevel.SetSelected("Debug")
	assert.Equal(t, "debug", u.settings.LogLevel())
}
