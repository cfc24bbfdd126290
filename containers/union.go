package containers

import (
	"reflect"
)

// Union represents a tagged union (EIP-7495 CompatibleUnion) that can hold
// one of several possible types. Go generics are used only to carry the
// descriptor: T is a struct whose fields enumerate the union's possible
// variants in order, and is never itself instantiated.
//
// The union stores:
//   - Variant: the index of the active field in the descriptor struct T
//   - Data: the actual value, boxed in an interface{}
//
// Usage:
//
//	type PayloadUnion = containers.Union[struct {
//	    ExecutionPayload
//	    ExecutionPayloadWithBlobs
//	}]
//
//	block := BlockWithPayload{
//	    Slot: 123,
//	    Payload: PayloadUnion{
//	        Variant: 0,
//	        Data:    ExecutionPayload{...},
//	    },
//	}
type Union[T any] struct {
	Variant uint8
	Data    interface{}
}

// NewUnion creates a new Union with the given variant index and boxed data.
// variantIndex corresponds to the field index in the descriptor struct T.
func NewUnion[T any](variantIndex uint8, data interface{}) (*Union[T], error) {
	return &Union[T]{
		Variant: variantIndex,
		Data:    data,
	}, nil
}

// GetDescriptorType returns the reflect.Type of the descriptor struct T.
func (u *Union[T]) GetDescriptorType() reflect.Type {
	var zero *T
	return reflect.TypeOf(zero).Elem()
}
