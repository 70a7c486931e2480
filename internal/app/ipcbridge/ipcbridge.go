// Package ipcbridge is a client for a local companion process,
// which reports characters and item quantities from outside the game's own data, e.g. retainers.
//
// The bridge URL may carry an access token as query parameter, e.g. "http://127.0.0.1:4711/?token=abc".
// The token is sent with every request.
package ipcbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

var ErrHTTPError = errors.New("http error")

// TokenParam is the name of the query parameter for the access token.
const TokenParam = "token"

// Client is a client for the companion process.
// A nil client is valid and reports nothing.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	token      string
}

// New returns a new client. It returns nil when baseURL is empty or invalid.
// When httpClient is nil a new default client is used.
func New(baseURL string, httpClient *retryablehttp.Client) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil
	}
	token := u.Query().Get(TokenParam)
	u.RawQuery = ""
	u.Fragment = ""
	if httpClient == nil {
		httpClient = retryablehttp.NewClient()
		httpClient.RetryMax = 1
		httpClient.Logger = nil
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: httpClient,
		token:      token,
	}
	return c
}

// BaseURL returns the URL of the companion process without the token.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// Character is a character reported by the companion process.
type Character struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	World string `json:"world"`
}

// Characters returns all characters known to the companion process.
func (c *Client) Characters(ctx context.Context) ([]Character, error) {
	if c == nil {
		return nil, nil
	}
	var r []Character
	if err := c.get(ctx, "/characters", nil, &r); err != nil {
		return nil, fmt.Errorf("characters: %w", err)
	}
	return r, nil
}

// InventoryItem is the quantity of an item in a character's inventory.
type InventoryItem struct {
	ItemID   uint32 `json:"item"`
	Quantity int    `json:"quantity"`
}

// Inventory returns the inventory of a character.
func (c *Client) Inventory(ctx context.Context, characterID int64) ([]InventoryItem, error) {
	if c == nil {
		return nil, nil
	}
	var r []InventoryItem
	if err := c.get(ctx, "/inventory", characterQuery(characterID), &r); err != nil {
		return nil, fmt.Errorf("inventory %d: %w", characterID, err)
	}
	return r, nil
}

// Currency is the amount a character owns of a currency.
type Currency struct {
	ItemID uint32 `json:"item"`
	Amount int64  `json:"amount"`
}

// Currencies returns the currencies of a character.
func (c *Client) Currencies(ctx context.Context, characterID int64) ([]Currency, error) {
	if c == nil {
		return nil, nil
	}
	var r []Currency
	if err := c.get(ctx, "/currencies", characterQuery(characterID), &r); err != nil {
		return nil, fmt.Errorf("currencies %d: %w", characterID, err)
	}
	return r, nil
}

type quantityResponse struct {
	Quantity int  `json:"quantity"`
	Found    bool `json:"found"`
}

// ExternalQuantity returns the quantity of an item the companion process reports for a character
// and whether it knows about that item.
func (c *Client) ExternalQuantity(ctx context.Context, characterID int64, itemID uint32) (int, bool, error) {
	if c == nil {
		return 0, false, nil
	}
	v := characterQuery(characterID)
	v.Set("item", strconv.FormatUint(uint64(itemID), 10))
	var r quantityResponse
	if err := c.get(ctx, "/quantity", v, &r); err != nil {
		return 0, false, fmt.Errorf("external quantity: %w", err)
	}
	return r.Quantity, r.Found, nil
}

// Ping reports whether the companion process is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("ipcbridge: not configured")
	}
	return c.get(ctx, "/ping", nil, nil)
}

func characterQuery(characterID int64) url.Values {
	v := url.Values{}
	v.Set("character", strconv.FormatInt(characterID, 10))
	return v
}

func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	if c.token != "" {
		if query == nil {
			query = url.Values{}
		}
		query.Set(TokenParam, c.token)
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	r, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer r.Body.Close()
	if r.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %s: %w", req.Method, path, r.Status, ErrHTTPError)
	}
	if v == nil {
		return nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
