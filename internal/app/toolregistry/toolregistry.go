// Package toolregistry provides a registry of tool types,
// which maps tool IDs to the factories creating them.
package toolregistry

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"fyne.io/fyne/v2"
)

var (
	ErrUnknownToolType = errors.New("unknown tool type")
	ErrToolUnavailable = errors.New("tool unavailable")
)

// Tool is a tool which can be shown in a container.
type Tool interface {
	// Content returns the widget of a tool.
	Content() fyne.CanvasObject
	// Title returns the title of a tool.
	Title() string
	// Position returns where a tool wants to be placed by its container.
	Position() fyne.Position
	// Update refreshes the data of a tool. It can block.
	Update()
}

// Factory creates a new tool at a position. It returns nil when the tool can not be created.
type Factory func(pos fyne.Position) Tool

// ToolType describes a registered tool type.
type ToolType struct {
	ID          string
	Label       string
	Description string
	// Category is a menu path with "/" as separator.
	Category string
}

// CategoryPath returns the parts of the category path.
func (tt ToolType) CategoryPath() []string {
	var parts []string
	for p := range strings.SplitSeq(tt.Category, "/") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

type entry struct {
	ToolType
	factory Factory
}

// Registry is a registry of tool types.
// It is not safe for concurrent use and is meant to be used on the UI goroutine only.
type Registry struct {
	entries map[string]entry
}

// New returns a new and empty registry.
func New() *Registry {
	r := &Registry{entries: make(map[string]entry)}
	return r
}

// DefineToolType registers a tool type.
// An existing tool type with the same ID is replaced.
func (r *Registry) DefineToolType(id, label string, factory Factory, description, category string) {
	if _, found := r.entries[id]; found {
		slog.Warn("Tool type redefined", "id", id, "label", label)
	}
	r.entries[id] = entry{
		ToolType: ToolType{
			ID:          id,
			Label:       label,
			Description: description,
			Category:    category,
		},
		factory: factory,
	}
}

// Instantiate creates a new tool of a type at a position.
// It returns [ErrUnknownToolType] when the type is not registered
// and [ErrToolUnavailable] when the factory could not create the tool.
func (r *Registry) Instantiate(id string, pos fyne.Position) (Tool, error) {
	e, found := r.entries[id]
	if !found {
		return nil, fmt.Errorf("instantiate %s: %w", id, ErrUnknownToolType)
	}
	if e.factory == nil {
		return nil, fmt.Errorf("instantiate %s: %w", id, ErrToolUnavailable)
	}
	t := e.factory(pos)
	if t == nil {
		return nil, fmt.Errorf("instantiate %s: %w", id, ErrToolUnavailable)
	}
	return t, nil
}

// ToolType returns a registered tool type and reports whether it was found.
func (r *Registry) ToolType(id string) (ToolType, bool) {
	e, found := r.entries[id]
	return e.ToolType, found
}

// ToolTypes returns all registered tool types ordered by category and label.
func (r *Registry) ToolTypes() []ToolType {
	types := make([]ToolType, 0, len(r.entries))
	for _, e := range r.entries {
		types = append(types, e.ToolType)
	}
	slices.SortFunc(types, func(a, b ToolType) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.Label, b.Label),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return types
}

// Size returns the number of registered tool types.
func (r *Registry) Size() int {
	return len(r.entries)
}
