package settings

import (
	"fyne.io/fyne/v2"
)

// myPreferences is a stub for replacing fyne.Preferences in tests.
type myPreferences struct {
	fyne.Preferences

	data map[string]any
}

func NewMyPref() myPreferences {
	return myPreferences{data: map[string]any{}}
}

func (p myPreferences) Bool(key string) bool {
	return getAny[bool](p, key)
}

func (p myPreferences) BoolWithFallback(key string, fallback bool) bool {
	return getAnyWithFallback(p, key, fallback)
}

func (p myPreferences) SetBool(k string, v bool) {
	p.data[k] = v
}

func (p myPreferences) Int(key string) int {
	return getAny[int](p, key)
}

func (p myPreferences) IntWithFallback(key string, fallback int) int {
	return getAnyWithFallback(p, key, fallback)
}

func (p myPreferences) SetInt(k string, v int) {
	p.data[k] = v
}

func (p myPreferences) String(key string) string {
	return getAny[string](p, key)
}

func (p myPreferences) StringWithFallback(key string, fallback string) string {
	return getAnyWithFallback(p, key, fallback)
}

func (p myPreferences) SetString(k string, v string) {
	p.data[k] = v
}

func (p myPreferences) FloatList(key string) []float64 {
	return getAny[[]float64](p, key)
}

func (p myPreferences) SetFloatList(k string, v []float64) {
	p.data[k] = v
}

func (p myPreferences) IntList(key string) []int {
	return getAny[[]int](p, key)
}

func (p myPreferences) SetIntList(k string, v []int) {
	p.data[k] = v
}

func getAny[T any](p myPreferences, k string) T {
	var z T
	return getAnyWithFallback(p, k, z)
}

func getAnyWithFallback[T any](p myPreferences, key string, fallback T) T {
	x, ok := p.data[key]
	if !ok {
		return fallback
	}
	v, ok := x.(T)
	if !ok {
		return fallback
	}
	return v
}
