package util

import "math/bits"

const blockw = 32 // width of each block

// BitSet is a fixed-size set of bits.
// The evaluator uses it to remember which (instruction, position) states were already explored.
type BitSet struct {
	data []uint32
	len  uint
}

// NewBitSet creates a bit set with `n` bits, all cleared.
func NewBitSet(n int) *BitSet {
	var b BitSet
	b.Grow(n)
	return &b
}

// Grow increases the capacity to guarantee space for `n` extra bits.
func (b *BitSet) Grow(n int) {
	if n <= 0 {
		return
	}

	b.len += uint(n)
	b.ensureCap(b.len)
}

// ensureCap guarantees space for `n` bits.
func (b *BitSet) ensureCap(n uint) {
	size := uint(len(b.data))
	expected := divup(n, blockw)

	if size < expected {
		b.data = append(b.data, make([]uint32, expected-size)...)
	}
}

// divup performs the integer division (a / b) and rounds up the result.
func divup(a, b uint) uint {
	return (a + b - 1) / b
}

// Len returns the number of bits in the set.
func (b *BitSet) Len() int {
	return int(b.len)
}

// Test reports whether the `i`-th bit is set.
// Bits outside of the set are reported as cleared.
func (b *BitSet) Test(i int) bool {
	if i < 0 || uint(i) >= b.len {
		return false
	}

	mask := uint32(1) << (blockw - uint(i)%blockw - 1)
	return b.data[uint(i)/blockw]&mask != 0
}

// Set sets the `i`-th bit to 1.
// The caller must ensure, that the `i`-th bit exists, or else this function panics.
func (b *BitSet) Set(i int) {
	bitoff := uint(i) % blockw
	valindex := uint(i) / blockw

	mask := uint32(1) << (blockw - bitoff - 1)
	b.data[valindex] |= mask
}

// TestAndSet sets the `i`-th bit and reports whether it was already set.
func (b *BitSet) TestAndSet(i int) bool {
	if b.Test(i) {
		return true
	}

	b.Set(i)
	return false
}

// Count returns the number of 1-bits.
func (b *BitSet) Count() int {
	c := 0
	for _, v := range b.data {
		c += bits.OnesCount32(v)
	}
	return c
}

// Reset clears all bits, keeping the size.
func (b *BitSet) Reset() {
	clear(b.data)
}
