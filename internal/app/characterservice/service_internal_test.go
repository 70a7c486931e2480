package characterservice

import (
	"context"
	"sync/atomic"

	"github.com/ErikKalkoken/itembuddy/internal/app/ipcbridge"
	"github.com/ErikKalkoken/itembuddy/internal/app/storage"
	"github.com/ErikKalkoken/itembuddy/internal/memcache"
)

// SettingsFake is a fake settings service for tests.
type SettingsFake struct {
	id atomic.Int64
}

func (s *SettingsFake) LastCharacterID() int64 {
	return s.id.Load()
}

func (s *SettingsFake) SetLastCharacterID(id int64) {
	s.id.Store(id)
}

// NewFake returns a new character service for tests.
func NewFake(st *storage.Storage, settings ...SettingsService) *CharacterService {
	arg := Params{
		Cache:    memcache.New(),
		Settings: new(SettingsFake),
		Storage:  st,
	}
	if len(settings) > 0 {
		arg.Settings = settings[0]
	}
	return New(arg)
}

// BridgeFake is a fake bridge source for tests.
type BridgeFake struct {
	Chars   []ipcbridge.Character
	Items   map[int64][]ipcbridge.InventoryItem
	Amounts map[int64][]ipcbridge.Currency
	Err     error
}

func (b *BridgeFake) Characters(_ context.Context) ([]ipcbridge.Character, error) {
	return b.Chars, b.Err
}

func (b *BridgeFake) Inventory(_ context.Context, characterID int64) ([]ipcbridge.InventoryItem, error) {
	return b.Items[characterID], nil
}

func (b *BridgeFake) Currencies(_ context.Context, characterID int64) ([]ipcbridge.Currency, error) {
	return b.Amounts[characterID], nil
}

// NewFakeWithBridge returns a new character service for tests, which updates from a bridge.
func NewFakeWithBridge(st *storage.Storage, b BridgeSource) *CharacterService {
	return New(Params{
		Bridge:   b,
		Cache:    memcache.New(),
		Settings: new(SettingsFake),
		Storage:  st,
	})
}
