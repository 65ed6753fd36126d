package util

import (
	"math"
	"testing"

	"gotest.tools/v3/assert"
)

func TestAddInt(t *testing.T) {
	tests := []struct {
		a, b, limit int
		want        int
		ok          bool
	}{
		{10, 20, -1, 30, true},
		{math.MaxInt, 1, -1, math.MaxInt, false},
		{math.MaxInt - 1, 1, -1, math.MaxInt, true},
		{3, 1, 4, 4, true},
		{4, 1, 4, 4, false},
		{5, 0, 4, 5, false},
		{-1, 1, -1, -1, false},
	}

	for _, tt := range tests {
		got, ok := AddInt(tt.a, tt.b, tt.limit)
		if ok != tt.ok {
			t.Errorf("AddInt(%d, %d, %d): got ok=%v, want %v", tt.a, tt.b, tt.limit, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("AddInt(%d, %d, %d) = %d, want %d", tt.a, tt.b, tt.limit, got, tt.want)
		}
	}
}

func TestBitSet(t *testing.T) {
	b := NewBitSet(100)
	assert.Equal(t, b.Len(), 100)

	for _, i := range []int{0, 31, 32, 63, 99} {
		assert.Assert(t, !b.TestAndSet(i), "bit %d already set", i)
		assert.Assert(t, b.Test(i), "bit %d not set", i)
		assert.Assert(t, b.TestAndSet(i), "bit %d not reported as set", i)
	}

	assert.Assert(t, !b.Test(1))
	assert.Assert(t, !b.Test(64))

	// bits outside of the set are cleared
	assert.Assert(t, !b.Test(-1))
	assert.Assert(t, !b.Test(100))

	assert.Equal(t, b.Count(), 5)

	b.Reset()
	assert.Equal(t, b.Count(), 0)
	assert.Equal(t, b.Len(), 100)
}

func TestRepr(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", `'abc'`},
		{"it's", `"it's"`},
		{`'"`, `'\'"'`},
		{"a\tb\n", `'a\tb\n'`},
		{"\x00\x7f", `'\x00\x7f'`},
		{"\xff", `'\xff'`},
		{"é", `'é'`},
		{`a\b`, `'a\\b'`},
	}

	for _, tt := range tests {
		if got := Repr(tt.in); got != tt.want {
			t.Errorf("Repr(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestQuoteRune(t *testing.T) {
	tests := []struct {
		in   rune
		want string
	}{
		{'a', `'a'`},
		{'\'', `'\''`},
		{'\\', `'\\'`},
		{'\n', `'\n'`},
		{0x01, `'\x01'`},
		{0x2028, `'\u2028'`},
		{'世', `'世'`},
	}

	for _, tt := range tests {
		if got := QuoteRune(tt.in); got != tt.want {
			t.Errorf("QuoteRune(%U) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
