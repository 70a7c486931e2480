// Package characterservice provides access to the characters of the user's game account
// and to the quantities and currencies they own.
package characterservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/maniartech/signals"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ErikKalkoken/itembuddy/internal/app"
	"github.com/ErikKalkoken/itembuddy/internal/app/ipcbridge"
	"github.com/ErikKalkoken/itembuddy/internal/app/storage"
)

const cacheTimeout = 15 * time.Second

// SettingsService persists the last selected character.
type SettingsService interface {
	LastCharacterID() int64
	SetLastCharacterID(int64)
}

// BridgeSource reports characters and their items from outside the app.
type BridgeSource interface {
	Characters(ctx context.Context) ([]ipcbridge.Character, error)
	Currencies(ctx context.Context, characterID int64) ([]ipcbridge.Currency, error)
	Inventory(ctx context.Context, characterID int64) ([]ipcbridge.InventoryItem, error)
}

// CharacterService provides access to characters and their items.
type CharacterService struct {
	// CurrentCharacterChanged is emitted with the new ID after the current character was changed.
	CurrentCharacterChanged signals.Signal[int64]

	bridge   BridgeSource
	cache    app.CacheService
	settings SettingsService
	sfg      *singleflight.Group
	st       *storage.Storage

	mu        sync.RWMutex
	currentID int64
}

type Params struct {
	// Bridge is the source for updating characters. Optional.
	Bridge   BridgeSource
	Cache    app.CacheService
	Settings SettingsService
	Storage  *storage.Storage
}

// New creates a new character service and returns it.
// The current character is restored from the settings.
func New(arg Params) *CharacterService {
	if arg.Cache == nil || arg.Settings == nil || arg.Storage == nil {
		panic("characterservice: missing params")
	}
	s := &CharacterService{
		CurrentCharacterChanged: signals.NewSync[int64](),
		bridge:                  arg.Bridge,
		cache:                   arg.Cache,
		settings:                arg.Settings,
		sfg:                     new(singleflight.Group),
		st:                      arg.Storage,
		currentID:               arg.Settings.LastCharacterID(),
	}
	return s
}

// AddCharacter adds a character. An existing character with the same ID is updated.
func (s *CharacterService) AddCharacter(ctx context.Context, c app.Character) error {
	return s.st.UpdateOrCreateCharacter(ctx, storage.CreateCharacterParams{
		ID:    c.ID,
		Name:  c.Name,
		World: c.World,
	})
}

// DeleteCharacter deletes a character and all its data.
// When it was the current character the current character is cleared.
func (s *CharacterService) DeleteCharacter(ctx context.Context, characterID int64) error {
	if err := s.st.DeleteCharacter(ctx, characterID); err != nil {
		return err
	}
	if s.CurrentCharacterID() == characterID {
		s.setCurrent(ctx, 0)
	}
	return nil
}

// GetCharacter returns a character.
func (s *CharacterService) GetCharacter(ctx context.Context, characterID int64) (*app.Character, error) {
	return s.st.GetCharacter(ctx, characterID)
}

// ListCharacters returns all characters ordered by name.
func (s *CharacterService) ListCharacters(ctx context.Context) ([]*app.Character, error) {
	return s.st.ListCharacters(ctx)
}

// CurrentCharacterID returns the ID of the current character or 0 if there is none.
func (s *CharacterService) CurrentCharacterID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// SetCurrentCharacterID changes the current character.
// Setting 0 clears the current character.
func (s *CharacterService) SetCurrentCharacterID(ctx context.Context, characterID int64) error {
	if characterID != 0 {
		if _, err := s.st.GetCharacter(ctx, characterID); err != nil {
			return fmt.Errorf("set current character: %w", err)
		}
	}
	s.setCurrent(ctx, characterID)
	return nil
}

func (s *CharacterService) setCurrent(ctx context.Context, characterID int64) {
	s.mu.Lock()
	changed := s.currentID != characterID
	s.currentID = characterID
	s.mu.Unlock()
	if !changed {
		return
	}
	s.settings.SetLastCharacterID(characterID)
	slog.Info("Current character changed", "characterID", characterID)
	s.CurrentCharacterChanged.Emit(ctx, characterID)
}

// CurrencyAmount returns the amount a character owns of a currency.
// Unknown amounts are reported as 0.
func (s *CharacterService) CurrencyAmount(ctx context.Context, characterID int64, itemID uint32) (int64, error) {
	key := fmt.Sprintf("currency-%d-%d", characterID, itemID)
	if v, ok := s.cache.Get(key); ok {
		return v.(int64), nil
	}
	x, err, _ := s.sfg.Do(key, func() (any, error) {
		v, err := s.st.GetCurrencyAmount(ctx, characterID, itemID)
		if errors.Is(err, app.ErrNotFound) {
			v = 0
		} else if err != nil {
			return int64(0), err
		}
		s.cache.Set(key, v, cacheTimeout)
		return v, nil
	})
	if err != nil {
		return 0, fmt.Errorf("currency amount: %w", err)
	}
	return x.(int64), nil
}

// ItemQuantity returns the quantity of an item in a character's inventory.
// Unknown quantities are reported as 0.
func (s *CharacterService) ItemQuantity(ctx context.Context, characterID int64, itemID uint32) (int, error) {
	key := fmt.Sprintf("inventory-%d-%d", characterID, itemID)
	if v, ok := s.cache.Get(key); ok {
		return v.(int), nil
	}
	x, err, _ := s.sfg.Do(key, func() (any, error) {
		v, err := s.st.GetInventoryQuantity(ctx, characterID, itemID)
		if errors.Is(err, app.ErrNotFound) {
			v = 0
		} else if err != nil {
			return 0, err
		}
		s.cache.Set(key, v, cacheTimeout)
		return v, nil
	})
	if err != nil {
		return 0, fmt.Errorf("item quantity: %w", err)
	}
	return x.(int), nil
}

// UpdateCurrency stores the amount a character owns of a currency.
func (s *CharacterService) UpdateCurrency(ctx context.Context, characterID int64, itemID uint32, amount int64) error {
	err := s.st.UpdateOrCreateCurrency(ctx, storage.UpdateOrCreateCurrencyParams{
		CharacterID: characterID,
		ItemID:      itemID,
		Amount:      amount,
	})
	if err != nil {
		return err
	}
	s.cache.Set(fmt.Sprintf("currency-%d-%d", characterID, itemID), amount, cacheTimeout)
	return nil
}

// UpdateInventory stores the quantity of an item in a character's inventory.
func (s *CharacterService) UpdateInventory(ctx context.Context, characterID int64, itemID uint32, quantity int) error {
	err := s.st.UpdateOrCreateInventoryItem(ctx, storage.UpdateOrCreateInventoryItemParams{
		CharacterID: characterID,
		ItemID:      itemID,
		Quantity:    quantity,
	})
	if err != nil {
		return err
	}
	s.cache.Set(fmt.Sprintf("inventory-%d-%d", characterID, itemID), quantity, cacheTimeout)
	return nil
}

// RecordValue records a value in the history of an item.
// Nothing is recorded when the value did not change since the last record.
func (s *CharacterService) RecordValue(ctx context.Context, characterID int64, itemID uint32, value int64) error {
	last, err := s.st.GetLatestTrackedValue(ctx, characterID, itemID)
	if err == nil && last.Value == value {
		return nil
	}
	if err != nil && !errors.Is(err, app.ErrNotFound) {
		return err
	}
	return s.st.CreateTrackedValue(ctx, storage.CreateTrackedValueParams{
		CharacterID: characterID,
		ItemID:      itemID,
		RecordedAt:  time.Now(),
		Value:       value,
	})
}

// History returns the values recorded for an item since a time in chronological order.
func (s *CharacterService) History(ctx context.Context, characterID int64, itemID uint32, since time.Time) ([]*app.TrackedValue, error) {
	return s.st.ListTrackedValues(ctx, characterID, itemID, since)
}

// HasBridge reports whether characters can be updated from a bridge.
func (s *CharacterService) HasBridge() bool {
	return s.bridge != nil
}

// UpdateFromBridge fetches all characters with their inventories and currencies from the bridge
// and stores them. Characters unknown to the bridge are kept.
// It returns the number of updated characters.
func (s *CharacterService) UpdateFromBridge(ctx context.Context) (int, error) {
	if s.bridge == nil {
		return 0, nil
	}
	x, err, _ := s.sfg.Do("update-from-bridge", func() (any, error) {
		return s.updateFromBridge(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("update from bridge: %w", err)
	}
	return x.(int), nil
}

func (s *CharacterService) updateFromBridge(ctx context.Context) (int, error) {
	cc, err := s.bridge.Characters(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	for _, c := range cc {
		if c.ID == 0 || c.Name == "" {
			slog.Warn("Ignoring invalid character from bridge", "character", c)
			continue
		}
		var inventory []ipcbridge.InventoryItem
		var currencies []ipcbridge.Currency
		g := new(errgroup.Group)
		g.Go(func() error {
			var err error
			inventory, err = s.bridge.Inventory(ctx, c.ID)
			return err
		})
		g.Go(func() error {
			var err error
			currencies, err = s.bridge.Currencies(ctx, c.ID)
			return err
		})
		if err := g.Wait(); err != nil {
			return n, err
		}
		if err := s.AddCharacter(ctx, app.Character{ID: c.ID, Name: c.Name, World: c.World}); err != nil {
			return n, err
		}
		for _, it := range inventory {
			if err := s.UpdateInventory(ctx, c.ID, it.ItemID, it.Quantity); err != nil {
				return n, err
			}
		}
		for _, x := range currencies {
			if err := s.UpdateCurrency(ctx, c.ID, x.ItemID, x.Amount); err != nil {
				return n, err
			}
		}
		n++
	}
	slog.Debug("Updated characters from bridge", "count", n)
	return n, nil
}
