// Package singleinstance ensures that only one instance of a unit of work runs at a time.
package singleinstance

import "sync"

// Group represents a class of work and forms a namespace in which units of work
// run at most once at a time per key.
type Group struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewGroup() *Group {
	g := &Group{running: make(map[string]struct{})}
	return g
}

// TryDo runs fn unless another fn for the same key is still running.
// It reports whether fn was run.
func (g *Group) TryDo(key string, fn func()) bool {
	g.mu.Lock()
	if _, found := g.running[key]; found {
		g.mu.Unlock()
		return false
	}
	g.running[key] = struct{}{}
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		delete(g.running, key)
		g.mu.Unlock()
	}()
	fn()
	return true
}

// IsRunning reports whether work for a key is currently running.
func (g *Group) IsRunning(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, found := g.running[key]
	return found
}
