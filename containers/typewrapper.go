package containers

import (
	"reflect"
)

// TypeWrapper carries SSZ annotations for a value type T that cannot itself
// carry struct tags (slices, maps of byte arrays, type aliases, and so on).
// D is a descriptor struct with exactly one field whose tags (ssz-size,
// ssz-max, ssz-type) describe T; D is never instantiated, only inspected.
//
// Usage:
//
//	type rootsDescriptor struct {
//	    Data [][32]byte `ssz-max:"8192"`
//	}
//	type Roots = containers.TypeWrapper[rootsDescriptor, [][32]byte]
type TypeWrapper[D, T any] struct {
	Data T
}

// NewTypeWrapper creates a new TypeWrapper holding data.
func NewTypeWrapper[D, T any](data T) (*TypeWrapper[D, T], error) {
	return &TypeWrapper[D, T]{Data: data}, nil
}

// Get returns the wrapped value.
func (w *TypeWrapper[D, T]) Get() T {
	return w.Data
}

// Set assigns the wrapped value.
func (w *TypeWrapper[D, T]) Set(value T) {
	w.Data = value
}

// GetDescriptorType returns the reflect.Type of the descriptor struct D.
func (w *TypeWrapper[D, T]) GetDescriptorType() reflect.Type {
	var zero *D
	return reflect.TypeOf(zero).Elem()
}
