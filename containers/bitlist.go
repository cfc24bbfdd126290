package containers

// Bitlist is a variable-length bit sequence, stored in its SSZ wire form:
// packed data bits followed by a single mandatory termination (sentinel)
// bit set at the position one past the last usable bit. This mirrors how
// github.com/prysmaticlabs/go-bitfield represents a Bitlist, which the type
// cache already recognizes by name; a defined type named "Bitlist" here is
// matched the same way, so the maximum length comes from the enclosing
// field's `ssz-max` tag like any other list.
type Bitlist []byte

// NewBitlist creates a Bitlist with length usable bits, all initially
// unset, with the termination bit set at position length.
func NewBitlist(length int) Bitlist {
	buf := make(Bitlist, length/8+1)
	buf[length/8] |= 1 << uint(length%8)
	return buf
}

// Set sets the bit at index.
func (b Bitlist) Set(index int) {
	if index < 0 || index >= b.Len() {
		return
	}
	b[index/8] |= 1 << uint(index%8)
}

// Clear unsets the bit at index.
func (b Bitlist) Clear(index int) {
	if index < 0 || index >= b.Len() {
		return
	}
	b[index/8] &^= 1 << uint(index%8)
}

// Get reports whether the bit at index is set.
func (b Bitlist) Get(index int) bool {
	if index < 0 || index >= b.Len() {
		return false
	}
	return b[index/8]&(1<<uint(index%8)) != 0
}

// Len returns the number of usable bits, i.e. the position of the
// termination bit, excluding it.
func (b Bitlist) Len() int {
	if len(b) == 0 {
		return 0
	}
	last := b[len(b)-1]
	if last == 0 {
		return 0
	}
	msb := 0
	for v := last; v > 1; v >>= 1 {
		msb++
	}
	return (len(b)-1)*8 + msb
}

// Count returns the number of set bits, excluding the termination bit.
func (b Bitlist) Count() int {
	count := 0
	n := b.Len()
	for i := 0; i < n; i++ {
		if b.Get(i) {
			count++
		}
	}
	return count
}
