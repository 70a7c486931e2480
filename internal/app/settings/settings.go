// Package settings provides access to the user's settings.
package settings

import (
	"log/slog"
	"maps"
	"slices"

	"fyne.io/fyne/v2"
	"github.com/goccy/go-yaml"
)

const (
	settingBridgeURL                = "bridge-url"
	settingDeveloperMode            = "developer-mode"
	settingDeveloperModeDefault     = false
	settingFavoriteItems            = "favorite-items"
	settingLastCharacterID          = "last-character-id"
	settingLogLevel                 = "log-level"
	settingLogLevelDefault          = "info"
	settingMarketWorld              = "market-world"
	settingMarketWorldDefault       = "Chaos"
	settingOpenTools                = "open-tools"
	settingShowTotalsRow            = "show-totals-row"
	settingShowTotalsRowDefault     = true
	settingToolUpdateSeconds        = "tool-update-seconds"
	settingToolUpdateSecondsDefault = 30
	settingToolUpdateSecondsMin     = 5
	settingWindowHeightDefault      = 600
	settingWindowSize               = "window-size"
	settingWindowWidthDefault       = 1000
)

// OpenTool is a tool which was open when the app was last closed.
type OpenTool struct {
	ID string  `yaml:"id"`
	X  float32 `yaml:"x"`
	Y  float32 `yaml:"y"`
}

// Settings represents the user's settings, which are stored in the preferences.
type Settings struct {
	p fyne.Preferences
}

// New returns a new Settings object.
func New(p fyne.Preferences) *Settings {
	return &Settings{p: p}
}

func (s Settings) BridgeURL() string {
	return s.p.String(settingBridgeURL)
}

func (s Settings) SetBridgeURL(v string) {
	s.p.SetString(settingBridgeURL, v)
}

func (s Settings) DeveloperMode() bool {
	return s.p.BoolWithFallback(settingDeveloperMode, settingDeveloperModeDefault)
}

func (s Settings) SetDeveloperMode(v bool) {
	s.p.SetBool(settingDeveloperMode, v)
}

// FavoriteItemIDs returns the IDs of the user's favorite items.
func (s Settings) FavoriteItemIDs() []uint32 {
	var ids []uint32
	for _, v := range s.p.IntList(settingFavoriteItems) {
		if v <= 0 {
			continue
		}
		ids = append(ids, uint32(v))
	}
	return ids
}

func (s Settings) SetFavoriteItemIDs(ids []uint32) {
	x := make([]int, 0, len(ids))
	for _, id := range ids {
		x = append(x, int(id))
	}
	s.p.SetIntList(settingFavoriteItems, x)
}

// LastCharacterID returns the ID of the last selected character or 0 if none.
func (s Settings) LastCharacterID() int64 {
	return int64(s.p.Int(settingLastCharacterID))
}

func (s Settings) SetLastCharacterID(id int64) {
	s.p.SetInt(settingLastCharacterID, int(id))
}

var logLevelName2Level = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"error":   slog.LevelError,
	"info":    slog.LevelInfo,
	"warning": slog.LevelWarn,
}

func (s Settings) LogLevel() string {
	return s.p.StringWithFallback(settingLogLevel, settingLogLevelDefault)
}

func (s Settings) LogLevelDefault() string {
	return settingLogLevelDefault
}

func (s Settings) LogLevelNames() []string {
	return slices.Sorted(maps.Keys(logLevelName2Level))
}

// LogLevelSlog returns the current log level as slog level.
// Unknown names are reported as the default level.
func (s Settings) LogLevelSlog() slog.Level {
	l, ok := logLevelName2Level[s.LogLevel()]
	if !ok {
		return logLevelName2Level[settingLogLevelDefault]
	}
	return l
}

func (s Settings) SetLogLevel(v string) {
	s.p.SetString(settingLogLevel, v)
}

// MarketWorld returns the world or data center used for price lookups.
func (s Settings) MarketWorld() string {
	return s.p.StringWithFallback(settingMarketWorld, settingMarketWorldDefault)
}

func (s Settings) SetMarketWorld(v string) {
	s.p.SetString(settingMarketWorld, v)
}

// OpenTools returns the tools which were open when the app was last closed.
// Broken data is reported as no tools.
func (s Settings) OpenTools() []OpenTool {
	data := s.p.String(settingOpenTools)
	if data == "" {
		return nil
	}
	var tools []OpenTool
	if err := yaml.Unmarshal([]byte(data), &tools); err != nil {
		slog.Warn("Failed to load open tools from settings", "error", err)
		return nil
	}
	return tools
}

func (s Settings) SetOpenTools(tools []OpenTool) {
	if len(tools) == 0 {
		s.p.SetString(settingOpenTools, "")
		return
	}
	data, err := yaml.Marshal(tools)
	if err != nil {
		slog.Error("Failed to store open tools in settings", "error", err)
		return
	}
	s.p.SetString(settingOpenTools, string(data))
}

func (s Settings) ShowTotalsRow() bool {
	return s.p.BoolWithFallback(settingShowTotalsRow, settingShowTotalsRowDefault)
}

func (s Settings) SetShowTotalsRow(v bool) {
	s.p.SetBool(settingShowTotalsRow, v)
}

// ToolUpdateSeconds returns the interval for updating open tools in seconds.
func (s Settings) ToolUpdateSeconds() int {
	return max(settingToolUpdateSecondsMin, s.p.IntWithFallback(settingToolUpdateSeconds, settingToolUpdateSecondsDefault))
}

func (s Settings) SetToolUpdateSeconds(v int) {
	s.p.SetInt(settingToolUpdateSeconds, v)
}

func (s Settings) WindowSize() fyne.Size {
	x := s.p.FloatList(settingWindowSize)
	if len(x) < 2 {
		return fyne.NewSize(settingWindowWidthDefault, settingWindowHeightDefault)
	}
	return fyne.NewSize(float32(x[0]), float32(x[1]))
}

func (s Settings) SetWindowSize(v fyne.Size) {
	s.p.SetFloatList(settingWindowSize, []float64{float64(v.Width), float64(v.Height)})
}
