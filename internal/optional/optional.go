// Package optional provides type safe optional values.
package optional

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Numeric is a constraint for numbers.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// Optional is a value that may be present or not.
//
// The zero value is an empty Optional.
type Optional[T any] struct {
	value     T
	isPresent bool
}

// New returns an Optional with a value.
func New[T any](v T) Optional[T] {
	return Optional[T]{value: v, isPresent: true}
}

// IsEmpty reports whether o has no value.
func (o Optional[T]) IsEmpty() bool {
	return !o.isPresent
}

// Value returns the value of o and reports whether it was present.
func (o Optional[T]) Value() (T, bool) {
	return o.value, o.isPresent
}

// ValueOrZero returns the value or the zero value of T when empty.
func (o Optional[T]) ValueOrZero() T {
	if !o.isPresent {
		var z T
		return z
	}
	return o.value
}

// ValueOrFallback returns the value or fallback when empty.
func (o Optional[T]) ValueOrFallback(fallback T) T {
	if !o.isPresent {
		return fallback
	}
	return o.value
}

func (o Optional[T]) String() string {
	if !o.isPresent {
		return "<empty>"
	}
	return fmt.Sprint(o.value)
}

// Map returns an Optional with f applied to the value of o.
// An empty o results in an empty Optional.
func Map[X, Y any](o Optional[X], f func(X) Y) Optional[Y] {
	if o.IsEmpty() {
		return Optional[Y]{}
	}
	return New(f(o.value))
}

// Sum returns the sum of all present values and reports whether any value was present.
func Sum[T Numeric](values ...Optional[T]) Optional[T] {
	var r Optional[T]
	for _, v := range values {
		if v.IsEmpty() {
			continue
		}
		r = New(r.value + v.value)
	}
	return r
}
