package containers

// List is a variable-length homogeneous sequence with a maximum capacity
// that is part of its type (an `ssz-max` tag on the enclosing field, or a
// spec-resolved value for dynamic specs). It is a thin generic alias over a
// Go slice; the type cache treats it exactly like any other slice field,
// so no bespoke reflection handling is required for it.
type List[T any] []T

// NewList wraps items as a List, without copying.
func NewList[T any](items ...T) List[T] {
	return List[T](items)
}

// Append returns a new List with value appended.
func (l List[T]) Append(value T) List[T] {
	return append(l, value)
}

// Len returns the number of items currently held.
func (l List[T]) Len() int {
	return len(l)
}
