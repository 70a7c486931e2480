package datatool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/ErikKalkoken/go-set"

	"github.com/ErikKalkoken/itembuddy/internal/app"
	"github.com/ErikKalkoken/itembuddy/internal/optional"
)

var errFake = errors.New("fake error")

type quantityKey struct {
	characterID int64
	itemID      uint32
}

// CurrencyFake is a fake currency service. Unknown amounts are reported as 0.
type CurrencyFake struct {
	mu      sync.Mutex
	Amounts map[quantityKey]int64
	Err     error
}

func NewCurrencyFake() *CurrencyFake {
	return &CurrencyFake{Amounts: make(map[quantityKey]int64)}
}

func (s *CurrencyFake) Set(characterID int64, itemID uint32, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Amounts[quantityKey{characterID, itemID}] = amount
}

func (s *CurrencyFake) CurrencyAmount(_ context.Context, characterID int64, itemID uint32) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Amounts[quantityKey{characterID, itemID}], nil
}

// ConfigFake is a fake config service.
type ConfigFake struct {
	Developer bool
	Totals    bool
}

func (c ConfigFake) DeveloperMode() bool {
	return c.Developer
}

func (c ConfigFake) ShowTotalsRow() bool {
	return c.Totals
}

// InventoryFake is a fake inventory service. Unknown quantities are reported as 0.
type InventoryFake struct {
	mu         sync.Mutex
	Quantities map[quantityKey]int
	Err        error
}

func NewInventoryFake() *InventoryFake {
	return &InventoryFake{Quantities: make(map[quantityKey]int)}
}

func (s *InventoryFake) Set(characterID int64, itemID uint32, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Quantities[quantityKey{characterID, itemID}] = quantity
}

func (s *InventoryFake) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

func (s *InventoryFake) ItemQuantity(_ context.Context, characterID int64, itemID uint32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Quantities[quantityKey{characterID, itemID}], nil
}

// TrackedFake records all values it receives.
type TrackedFake struct {
	mu      sync.Mutex
	Records []app.TrackedValue
}

func (s *TrackedFake) RecordValue(_ context.Context, characterID int64, itemID uint32, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, app.TrackedValue{CharacterID: characterID, ItemID: itemID, Value: value})
	return nil
}

// History returns all records of a character and item. Times are ignored.
func (s *TrackedFake) History(_ context.Context, characterID int64, itemID uint32, _ time.Time) ([]*app.TrackedValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var vv []*app.TrackedValue
	for _, r := range s.Records {
		if r.CharacterID == characterID && r.ItemID == itemID {
			vv = append(vv, &r)
		}
	}
	return vv, nil
}

// ItemsFake is a fake item service.
type ItemsFake map[uint32]app.Item

func (s ItemsFake) Item(id uint32) (*app.Item, error) {
	it, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, app.ErrNotFound)
	}
	return &it, nil
}

// DataFake is a fake character data service.
type DataFake struct {
	Characters []*app.Character
	CurrentID  int64
	Err        error
}

func (s *DataFake) ListCharacters(_ context.Context) ([]*app.Character, error) {
	return s.Characters, s.Err
}

func (s *DataFake) CurrentCharacterID() int64 {
	return s.CurrentID
}

// TexturesFake returns the same icon for every icon ID.
type TexturesFake struct{}

func (TexturesFake) Icon(_ uint32, _ int) (fyne.Resource, error) {
	return theme.InfoIcon(), nil
}

func (TexturesFake) IconDisabled(_ uint32, _ int) (fyne.Resource, error) {
	return theme.CancelIcon(), nil
}

// FavoritesFake is a fake favorites service.
type FavoritesFake struct {
	IDs set.Set[uint32]
}

func (s FavoritesFake) All() set.Set[uint32] {
	return s.IDs.Clone()
}

func (s FavoritesFake) IsFavorite(id uint32) bool {
	return s.IDs.Contains(id)
}

// BridgeFake is a fake bridge service.
type BridgeFake struct {
	Quantities map[quantityKey]int
}

func (s BridgeFake) ExternalQuantity(_ context.Context, characterID int64, itemID uint32) (int, bool, error) {
	q, ok := s.Quantities[quantityKey{characterID, itemID}]
	return q, ok, nil
}

// PricesFake is a fake price service.
type PricesFake map[uint32]float64

func (s PricesFake) ItemPrice(_ context.Context, itemID uint32) (optional.Optional[float64], error) {
	p, ok := s[itemID]
	if !ok {
		return optional.Optional[float64]{}, nil
	}
	return optional.New(p), nil
}

// NewFakeServices returns services with all required services set.
func NewFakeServices() Services {
	return Services{
		Currency: NewCurrencyFake(),
		Config:   ConfigFake{},
	}
}

// RecordingPricesFake is a fake price service which records all requested item IDs.
type RecordingPricesFake struct {
	mu        sync.Mutex
	Prices    map[uint32]float64
	Requested []uint32
}

func (s *RecordingPricesFake) ItemPrice(_ context.Context, itemID uint32) (optional.Optional[float64], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requested = append(s.Requested, itemID)
	p, ok := s.Prices[itemID]
	if !ok {
		return optional.Optional[float64]{}, nil
	}
	return optional.New(p), nil
}
