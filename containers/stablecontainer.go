package containers

import (
	"reflect"
)

// StableContainer represents an EIP-7495 StableContainer(N). V is a schema
// struct whose field count fixes the capacity N, and every field of V must
// be an Optional so the container's shape can evolve (fields can become
// permanently absent) without invalidating its hash tree root structure.
//
// Usage:
//
//	type attestationSchema struct {
//	    Slot   containers.Optional[uint64]
//	    Index  containers.Optional[uint64]
//	    Source containers.Optional[[32]byte]
//	}
//	type Attestation = containers.StableContainer[attestationSchema]
//
//	var a Attestation
//	a.Value.Slot = containers.NewSome(uint64(123))
type StableContainer[V any] struct {
	Value V
}

// GetDescriptorType returns the reflect.Type of the schema struct V.
func (c *StableContainer[V]) GetDescriptorType() reflect.Type {
	var zero *V
	return reflect.TypeOf(zero).Elem()
}
