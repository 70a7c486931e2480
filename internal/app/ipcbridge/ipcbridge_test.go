package ipcbridge_test

import (
	"context"
	"testing"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/ErikKalkoken/itembuddy/internal/app/ipcbridge"
)

func TestClient(t *testing.T) {
	rhc := retryablehttp.NewClient()
	rhc.RetryMax = 0
	httpmock.ActivateNonDefault(rhc.HTTPClient)
	defer httpmock.DeactivateAndReset()
	ctx := context.Background()
	t.Run("should return nil client when not configured", func(t *testing.T) {
		c := ipcbridge.New(" ", rhc)
		assert.Nil(t, c)
		q, found, err := c.ExternalQuantity(ctx, 1, 2)
		if assert.NoError(t, err) {
			assert.False(t, found)
			assert.Equal(t, 0, q)
		}
		assert.Error(t, c.Ping(ctx))
	})
	t.Run("can fetch quantity", func(t *testing.T) {
		// given
		httpmock.Reset()
		httpmock.RegisterResponder(
			"GET",
			"http://localhost:4711/quantity?character=1&item=2",
			httpmock.NewJsonResponderOrPanic(200, map[string]any{"quantity": 42, "found": true}),
		)
		c := ipcbridge.New("http://localhost:4711/", rhc)
		// when
		q, found, err := c.ExternalQuantity(ctx, 1, 2)
		// then
		if assert.NoError(t, err) {
			assert.True(t, found)
			assert.Equal(t, 42, q)
		}
	})
	t.Run("should report HTTP errors", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder(
			"GET",
			"http://localhost:4711/quantity?character=1&item=2",
			httpmock.NewStringResponder(404, "not found"),
		)
		c := ipcbridge.New("http://localhost:4711", rhc)
		_, _, err := c.ExternalQuantity(ctx, 1, 2)
		assert.ErrorIs(t, err, ipcbridge.ErrHTTPError)
	})
	t.Run("can ping", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "http://localhost:4711/ping", httpmock.NewStringResponder(200, "pong"))
		c := ipcbridge.New("http://localhost:4711", rhc)
		assert.NoError(t, c.Ping(ctx))
	})
	t.Run("should return nil client when URL is invalid", func(t *testing.T) {
		assert.Nil(t, ipcbridge.New("localhost", rhc))
	})
	t.Run("should send token with every request", func(t *testing.T) {
		// given
		httpmock.Reset()
		httpmock.RegisterResponder(
			"GET",
			"http://localhost:4711/quantity?character=1&item=2&token=secret",
			httpmock.NewJsonResponderOrPanic(200, map[string]any{"quantity": 3, "found": true}),
		)
		httpmock.RegisterResponder("GET", "http://localhost:4711/ping?token=secret", httpmock.NewStringResponder(200, "pong"))
		c := ipcbridge.New("http://localhost:4711/?token=secret", rhc)
		// when
		q, _, err1 := c.ExternalQuantity(ctx, 1, 2)
		err2 := c.Ping(ctx)
		// then
		if assert.NoError(t, err1) && assert.NoError(t, err2) {
			assert.Equal(t, 3, q)
			assert.Equal(t, 2, httpmock.GetTotalCallCount())
			assert.Equal(t, "http://localhost:4711", c.BaseURL())
		}
	})
	t.Run("can fetch characters", func(t *testing.T) {
		// given
		httpmock.Reset()
		httpmock.RegisterResponder(
			"GET",
			"http://localhost:4711/characters",
			httpmock.NewJsonResponderOrPanic(200, []map[string]any{
				{"id": 7, "name": "Alpha", "world": "Cerberus"},
				{"id": 9, "name": "Bravo", "world": "Moogle"},
			}),
		)
		c := ipcbridge.New("http://localhost:4711", rhc)
		// when
		got, err := c.Characters(ctx)
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, []ipcbridge.Character{
				{ID: 7, Name: "Alpha", World: "Cerberus"},
				{ID: 9, Name: "Bravo", World: "Moogle"},
			}, got)
		}
	})
	t.Run("can fetch inventory and currencies", func(t *testing.T) {
		// given
		httpmock.Reset()
		httpmock.RegisterResponder(
			"GET",
			"http://localhost:4711/inventory?character=7",
			httpmock.NewJsonResponderOrPanic(200, []map[string]any{{"item": 2, "quantity": 99}}),
		)
		httpmock.RegisterResponder(
			"GET",
			"http://localhost:4711/currencies?character=7",
			httpmock.NewJsonResponderOrPanic(200, []map[string]any{{"item": 1, "amount": 123456}}),
		)
		c := ipcbridge.New("http://localhost:4711", rhc)
		// when
		inv, err1 := c.Inventory(ctx, 7)
		cur, err2 := c.Currencies(ctx, 7)
		// then
		if assert.NoError(t, err1) && assert.NoError(t, err2) {
			assert.Equal(t, []ipcbridge.InventoryItem{{ItemID: 2, Quantity: 99}}, inv)
			assert.Equal(t, []ipcbridge.Currency{{ItemID: 1, Amount: 123456}}, cur)
		}
	})
	t.Run("should report nothing when not configured", func(t *testing.T) {
		var c *ipcbridge.Client
		chars, err1 := c.Characters(ctx)
		inv, err2 := c.Inventory(ctx, 1)
		cur, err3 := c.Currencies(ctx, 1)
		if assert.NoError(t, err1) && assert.NoError(t, err2) && assert.NoError(t, err3) {
			assert.Empty(t, chars)
			assert.Empty(t, inv)
			assert.Empty(t, cur)
		}
	})
}
