package containers

import "testing"

func TestNewBitvector(t *testing.T) {
	tests := []struct {
		name     string
		bits     int
		wantLen  int
		wantBits int // byte length
	}{
		{name: "zero bits", bits: 0, wantLen: 0, wantBits: 0},
		{name: "one bit", bits: 1, wantLen: 8, wantBits: 1},
		{name: "eight bits", bits: 8, wantLen: 8, wantBits: 1},
		{name: "nine bits", bits: 9, wantLen: 16, wantBits: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewBitvector(tt.bits)
			if len(got) != tt.wantBits {
				t.Errorf("byte length = %d, want %d", len(got), tt.wantBits)
			}
			if got.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", got.Len(), tt.wantLen)
			}
		})
	}
}

func TestBitvectorSetClearGetCount(t *testing.T) {
	b := NewBitvector(16)

	b.Set(0)
	b.Set(15)
	b.Set(8)

	if !b.Get(0) || !b.Get(15) || !b.Get(8) {
		t.Fatal("expected bits 0, 8, 15 to be set")
	}
	if got, want := b.Count(), 3; got != want {
		t.Errorf("Count() = %d, want %d", got, want)
	}

	b.Clear(8)
	if b.Get(8) {
		t.Error("bit 8 should be cleared")
	}
	if got, want := b.Count(), 2; got != want {
		t.Errorf("Count() after Clear = %d, want %d", got, want)
	}
}

func TestBitvectorOutOfRange(t *testing.T) {
	b := NewBitvector(8)

	if b.Get(8) || b.Get(-1) {
		t.Error("Get() out of range should report false")
	}

	before := append(Bitvector{}, b...)
	b.Set(8)
	b.Set(-1)
	if len(b) != len(before) {
		t.Fatal("Set() out of range changed length")
	}
	for i := range b {
		if b[i] != before[i] {
			t.Errorf("Set() out of range mutated byte %d", i)
		}
	}
}
