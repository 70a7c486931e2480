// Package iconservice provides item icons from an icon server.
package iconservice

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
	"github.com/gohugoio/httpcache"
	"golang.org/x/sync/singleflight"

	"github.com/ErikKalkoken/itembuddy/internal/app"
)

const (
	BaseURLDefault       = "https://xivapi.com"
	httpCacheTimeout     = 24 * time.Hour * 7
	resourceCacheTimeout = time.Hour
	sizeMax              = 512
)

var (
	ErrInvalidSize = errors.New("invalid size")
	ErrNoImage     = errors.New("no image from API")
)

// HTTPError represents a HTTP response with status code >= 400.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (r HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %s", r.Status)
}

// IconService is a service which provides item icons.
// Downloaded images are cached as HTTP responses and as resized resources.
type IconService struct {
	baseURL    string
	cache      app.CacheService
	httpClient *http.Client
	isOffline  bool
	sfg        *singleflight.Group
}

type Params struct {
	BaseURL   string
	Cache     app.CacheService
	// HTTPCache stores the responses of the icon server. Uses Cache when nil.
	HTTPCache httpcache.Cache
	// Transport is the base transport for the HTTP cache. Uses the default transport when nil.
	Transport http.RoundTripper
	// When set it returns a placeholder icon instead of fetching icons which are not cached.
	IsOffline bool
}

// New returns a new IconService.
func New(arg Params) *IconService {
	if arg.Cache == nil {
		panic("iconservice: missing cache")
	}
	hc := arg.HTTPCache
	if hc == nil {
		hc = newCacheAdapter(arg.Cache, "httpcache-", httpCacheTimeout)
	}
	t := httpcache.NewTransport(hc)
	t.Transport = arg.Transport
	s := &IconService{
		baseURL:    arg.BaseURL,
		cache:      arg.Cache,
		httpClient: &http.Client{Transport: t},
		isOffline:  arg.IsOffline,
		sfg:        new(singleflight.Group),
	}
	if s.baseURL == "" {
		s.baseURL = BaseURLDefault
	}
	return s
}

// Icon returns the icon for an icon ID in the requested size in pixels.
func (s *IconService) Icon(iconID uint32, size int) (fyne.Resource, error) {
	return s.icon(iconID, size, false)
}

// IconDisabled returns a grayscale variant of an icon.
func (s *IconService) IconDisabled(iconID uint32, size int) (fyne.Resource, error) {
	return s.icon(iconID, size, true)
}

// IconURL returns the URL of an icon on the icon server.
func (s *IconService) IconURL(iconID uint32) string {
	folder := iconID / 1000 * 1000
	return fmt.Sprintf("%s/i/%06d/%06d.png", s.baseURL, folder, iconID)
}

func (s *IconService) icon(iconID uint32, size int, isDisabled bool) (fyne.Resource, error) {
	if size < 1 || size > sizeMax {
		return nil, ErrInvalidSize
	}
	key := fmt.Sprintf("icon-%d-%d", iconID, size)
	if isDisabled {
		key += "-disabled"
	}
	if x, found := s.cache.Get(key); found {
		return x.(fyne.Resource), nil
	}
	if s.isOffline {
		return theme.QuestionIcon(), nil
	}
	x, err, _ := s.sfg.Do(key, func() (any, error) {
		dat, err := loadDataFromURL(s.IconURL(iconID), s.httpClient)
		if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(bytes.NewReader(dat))
		if err != nil {
			return nil, fmt.Errorf("icon %d: %w", iconID, err)
		}
		var out image.Image = transform.Resize(img, size, size, transform.Linear)
		if isDisabled {
			out = effect.Grayscale(out)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, out); err != nil {
			return nil, err
		}
		r := fyne.NewStaticResource(key+".png", buf.Bytes())
		s.cache.Set(key, r, resourceCacheTimeout)
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return x.(fyne.Resource), nil
}

func loadDataFromURL(url string, client *http.Client) ([]byte, error) {
	r, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer r.Body.Close()
	if r.StatusCode >= 400 {
		err := HTTPError{StatusCode: r.StatusCode, Status: r.Status}
		return nil, err
	}
	dat, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(dat) == 0 {
		return nil, fmt.Errorf("%s: %w", url, ErrNoImage)
	}
	return dat, nil
}
