package containers

import (
	"reflect"
	"testing"
)

func TestNewListAppendLen(t *testing.T) {
	l := NewList(uint64(1), uint64(2), uint64(3))

	if got, want := l.Len(), 3; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}

	l = l.Append(4)
	if got, want := l.Len(), 4; got != want {
		t.Errorf("Len() after Append = %d, want %d", got, want)
	}

	want := List[uint64]{1, 2, 3, 4}
	if !reflect.DeepEqual(l, want) {
		t.Errorf("l = %v, want %v", l, want)
	}
}

func TestNewListEmpty(t *testing.T) {
	var l List[string]
	if l.Len() != 0 {
		t.Errorf("Len() of zero-value List = %d, want 0", l.Len())
	}
}
