package containers

import (
	"reflect"
	"testing"
)

func TestNewUnion(t *testing.T) {
	type PayloadA struct{ Hash []byte }
	type PayloadB struct {
		Hash  []byte
		Blobs [][]byte
	}
	type UnionDescriptor struct {
		A PayloadA
		B PayloadB
	}

	tests := []struct {
		name    string
		variant uint8
		data    interface{}
	}{
		{
			name:    "first variant",
			variant: 0,
			data:    PayloadA{Hash: []byte{1, 2, 3}},
		},
		{
			name:    "second variant",
			variant: 1,
			data:    PayloadB{Hash: []byte{4, 5, 6}, Blobs: [][]byte{{7, 8, 9}}},
		},
		{
			name:    "nil data",
			variant: 0,
			data:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUnion[UnionDescriptor](tt.variant, tt.data)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.Variant != tt.variant {
				t.Errorf("Variant = %d, want %d", u.Variant, tt.variant)
			}
			if !reflect.DeepEqual(u.Data, tt.data) {
				t.Errorf("Data = %v, want %v", u.Data, tt.data)
			}
		})
	}
}

func TestUnionGetDescriptorType(t *testing.T) {
	type UnionDescriptor struct {
		A uint64
		B string
	}

	u := Union[UnionDescriptor]{}
	typ := u.GetDescriptorType()
	if typ.NumField() != 2 {
		t.Errorf("GetDescriptorType() has %d fields, want 2", typ.NumField())
	}
}
