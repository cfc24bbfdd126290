package containers

import "reflect"

// Optional wraps a value that may or may not be present on the wire, as
// defined by EIP-7495. It serializes as a single selector byte (0x00 for
// None, 0x01 for Some) followed by the inner value's encoding when present,
// and hash-tree-roots as the inner root (or a zero root when absent) mixed
// in with the selector byte.
//
// Value and Present are exported so the reflection-based codec can read and
// write them directly without resorting to unsafe field access.
type Optional[T any] struct {
	Value   T
	Present bool
}

// NewSome returns an Optional holding value.
func NewSome[T any](value T) Optional[T] {
	return Optional[T]{Value: value, Present: true}
}

// NewNone returns an absent Optional.
func NewNone[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the wrapped value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Present
}

// Set assigns value and marks the Optional as present.
func (o *Optional[T]) Set(value T) {
	o.Value = value
	o.Present = true
}

// Clear marks the Optional as absent, resetting the wrapped value to its zero value.
func (o *Optional[T]) Clear() {
	var zero T
	o.Value = zero
	o.Present = false
}

// GetDescriptorType returns the reflect.Type of T, used by the type cache to
// resolve the generic parameter without requiring a separate schema tag.
func (o *Optional[T]) GetDescriptorType() reflect.Type {
	var zero *T
	return reflect.TypeOf(zero).Elem()
}
