package memcache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ErikKalkoken/itembuddy/internal/memcache"
)

func TestMemcache(t *testing.T) {
	c := memcache.NewWithInterval(0)
	defer c.Close()
	t.Run("can set and get an item", func(t *testing.T) {
		// when
		c.Set("k1", "xxx", time.Minute)
		// then
		v, ok := c.Get("k1")
		if assert.True(t, ok) {
			assert.Equal(t, "xxx", v)
		}
	})
	t.Run("should not find unknown item", func(t *testing.T) {
		_, ok := c.Get("unknown")
		assert.False(t, ok)
	})
	t.Run("item without timeout never expires", func(t *testing.T) {
		c.Set("k2", 42, 0)
		_, ok := c.Get("k2")
		assert.True(t, ok)
	})
	t.Run("should not return expired item", func(t *testing.T) {
		// given
		c.Set("k3", "xxx", time.Millisecond*10)
		// when
		time.Sleep(time.Millisecond * 50)
		v, ok := c.Get("k3")
		// then
		assert.False(t, ok)
		assert.Nil(t, v)
	})
	t.Run("can delete an item", func(t *testing.T) {
		c.Set("k4", "xxx", time.Minute)
		c.Delete("k4")
		_, ok := c.Get("k4")
		assert.False(t, ok)
	})
	t.Run("can clear all items", func(t *testing.T) {
		c.Set("k5", "xxx", time.Minute)
		c.Clear()
		_, ok := c.Get("k5")
		assert.False(t, ok)
	})
}

func TestMemcacheCleanUp(t *testing.T) {
	// given
	c := memcache.NewWithInterval(0)
	defer c.Close()
	c.Set("expired", 1, time.Millisecond)
	c.Set("valid", 2, time.Minute)
	time.Sleep(10 * time.Millisecond)
	// when
	n := c.CleanUp()
	// then
	assert.Equal(t, 1, n)
	_, ok := c.Get("valid")
	assert.True(t, ok)
}

func TestGetAs(t *testing.T) {
	c := memcache.NewWithInterval(0)
	defer c.Close()
	c.Set("int", 7, 0)
	t.Run("returns typed value", func(t *testing.T) {
		v, ok := memcache.GetAs[int](c, "int")
		assert.True(t, ok)
		assert.Equal(t, 7, v)
	})
	t.Run("reports wrong type as not found", func(t *testing.T) {
		_, ok := memcache.GetAs[string](c, "int")
		assert.False(t, ok)
	})
}

func TestMemcacheCloseTwice(t *testing.T) {
	c := memcache.New()
	c.Close()
	assert.NotPanics(t, c.Close)
}
