// Package priceservice provides market prices of items.
//
// Prices are fetched from a Universalis compatible API
// and stored locally so they are available when offline.
package priceservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ErikKalkoken/itembuddy/internal/app"
	"github.com/ErikKalkoken/itembuddy/internal/app/storage"
	"github.com/ErikKalkoken/itembuddy/internal/optional"
)

const (
	BaseURLDefault = "https://universalis.app"
	cacheTimeout   = 5 * time.Minute
	maxAgeDefault  = time.Hour
	worldDefault   = "Chaos"
)

var ErrHTTPError = errors.New("http error")

// PriceService is a service for fetching and storing market prices.
type PriceService struct {
	baseURL    string
	cache      app.CacheService
	httpClient *http.Client
	isOffline  bool
	limiter    *rate.Limiter
	maxAge     time.Duration
	sfg        *singleflight.Group
	st         *storage.Storage
	world      func() string
}

type Params struct {
	BaseURL    string
	Cache      app.CacheService
	HTTPClient *http.Client
	IsOffline  bool
	// Prices older then this are fetched again.
	MaxAge  time.Duration
	Storage *storage.Storage
	// World returns the name of the market world. Optional.
	World func() string
}

// New returns a new PriceService.
func New(arg Params) *PriceService {
	if arg.Cache == nil || arg.Storage == nil {
		panic("priceservice: missing params")
	}
	s := &PriceService{
		baseURL:    arg.BaseURL,
		cache:      arg.Cache,
		httpClient: arg.HTTPClient,
		isOffline:  arg.IsOffline,
		limiter:    rate.NewLimiter(rate.Every(50*time.Millisecond), 5),
		maxAge:     arg.MaxAge,
		sfg:        new(singleflight.Group),
		st:         arg.Storage,
		world:      arg.World,
	}
	if s.baseURL == "" {
		s.baseURL = BaseURLDefault
	}
	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}
	if s.maxAge == 0 {
		s.maxAge = maxAgeDefault
	}
	if s.world == nil {
		s.world = func() string {
			return worldDefault
		}
	}
	return s
}

// ItemPrice returns the current market price of an item.
// It returns an empty optional when the item has no price.
//
// When offline only locally stored prices are returned.
// When fetching a price fails the last stored price is returned if there is one.
func (s *PriceService) ItemPrice(ctx context.Context, itemID uint32) (optional.Optional[float64], error) {
	var z optional.Optional[float64]
	world := s.world()
	if world == "" {
		world = worldDefault
	}
	key := fmt.Sprintf("price-%s-%d", world, itemID)
	if x, found := s.cache.Get(key); found {
		return x.(optional.Optional[float64]), nil
	}
	stored, err := s.st.GetItemPrice(ctx, world, itemID)
	if err != nil && !errors.Is(err, app.ErrNotFound) {
		return z, err
	}
	hasStored := stored != nil
	if hasStored && (s.isOffline || time.Since(stored.UpdatedAt) < s.maxAge) {
		v := optional.New(stored.Price)
		s.cache.Set(key, v, cacheTimeout)
		return v, nil
	}
	if s.isOffline {
		return z, nil
	}
	x, err, _ := s.sfg.Do(key, func() (any, error) {
		v, err := s.fetchPrice(ctx, world, itemID)
		if err != nil {
			return z, err
		}
		if price, ok := v.Value(); ok {
			err := s.st.UpdateOrCreateItemPrice(ctx, storage.UpdateOrCreateItemPriceParams{
				ItemID: itemID,
				Price:  price,
				World:  world,
			})
			if err != nil {
				return z, err
			}
		}
		s.cache.Set(key, v, cacheTimeout)
		return v, nil
	})
	if err != nil {
		if hasStored {
			slog.Warn("Failed to fetch price. Using stored price", "world", world, "itemID", itemID, "error", err)
			return optional.New(stored.Price), nil
		}
		return z, fmt.Errorf("item price %d: %w", itemID, err)
	}
	return x.(optional.Optional[float64]), nil
}

type marketData struct {
	ItemID       uint32  `json:"itemID"`
	MinPrice     float64 `json:"minPrice"`
	AveragePrice float64 `json:"averagePrice"`
}

func (s *PriceService) fetchPrice(ctx context.Context, world string, itemID uint32) (optional.Optional[float64], error) {
	var z optional.Optional[float64]
	if itemID == 0 {
		return z, fmt.Errorf("fetch price: %w", app.ErrInvalid)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return z, err
	}
	u := fmt.Sprintf("%s/api/v2/%s/%d?listings=0&entries=0", s.baseURL, url.PathEscape(world), itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return z, err
	}
	r, err := s.httpClient.Do(req)
	if err != nil {
		return z, err
	}
	defer r.Body.Close()
	if r.StatusCode == http.StatusNotFound {
		return z, nil // item is not traded on the market
	}
	if r.StatusCode >= 400 {
		return z, fmt.Errorf("GET %s: %s: %w", u, r.Status, ErrHTTPError)
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return z, err
	}
	var m marketData
	if err := json.Unmarshal(data, &m); err != nil {
		return z, fmt.Errorf("fetch price: %w", err)
	}
	slog.Debug("Fetched price", "world", world, "itemID", itemID, "data", m)
	switch {
	case m.MinPrice > 0:
		return optional.New(m.MinPrice), nil
	case m.AveragePrice > 0:
		return optional.New(m.AveragePrice), nil
	}
	return z, nil
}
