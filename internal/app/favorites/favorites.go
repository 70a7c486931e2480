// Package favorites manages the user's favorite items.
package favorites

import (
	"slices"
	"sync"

	"github.com/ErikKalkoken/go-set"
)

// Storage persists the IDs of favorite items.
type Storage interface {
	FavoriteItemIDs() []uint32
	SetFavoriteItemIDs([]uint32)
}

// Favorites is a set of favorite items. It is safe for concurrent use.
type Favorites struct {
	storage Storage

	mu  sync.RWMutex
	ids set.Set[uint32]
}

// New returns a new Favorites object with the favorites loaded from storage.
func New(storage Storage) *Favorites {
	f := &Favorites{
		storage: storage,
		ids:     set.Of(storage.FavoriteItemIDs()...),
	}
	return f
}

// All returns a copy of all favorite items.
func (f *Favorites) All() set.Set[uint32] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ids.Clone()
}

// IsFavorite reports whether an item is a favorite.
func (f *Favorites) IsFavorite(itemID uint32) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ids.Contains(itemID)
}

// Add adds an item to the favorites.
func (f *Favorites) Add(itemID uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids.Add(itemID)
	f.save()
}

// Remove removes an item from the favorites.
func (f *Favorites) Remove(itemID uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids.Delete(itemID)
	f.save()
}

// Toggle adds an item when it is not a favorite and removes it otherwise.
// It reports whether the item is now a favorite.
func (f *Favorites) Toggle(itemID uint32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	var isFavorite bool
	if f.ids.Contains(itemID) {
		f.ids.Delete(itemID)
	} else {
		f.ids.Add(itemID)
		isFavorite = true
	}
	f.save()
	return isFavorite
}

// Sorted returns all favorite items in ascending order.
func (f *Favorites) Sorted() []uint32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Sorted(f.ids.All())
}

func (f *Favorites) save() {
	f.storage.SetFavoriteItemIDs(slices.Sorted(f.ids.All()))
}
