package syntax

import "unicode/utf8"

// source is a read cursor over a pattern string.
type source struct {
	orig string // original source
	cur  string // current cursor
}

func (s *source) init(src string) {
	s.orig = src
	s.cur = src
}

// tell returns the byte offset of the cursor.
func (s *source) tell() int {
	return len(s.orig) - len(s.cur)
}

// read returns the next character and advances the cursor.
// An invalid UTF-8 byte is returned as a character of its own.
func (s *source) read() (rune, bool) {
	if len(s.cur) == 0 {
		return 0, false
	}

	c, size := DecodeChar(s.cur)
	s.cur = s.cur[size:]

	return c, true
}

func (s *source) peek() (rune, bool) {
	if len(s.cur) == 0 {
		return 0, false
	}

	c, _ := DecodeChar(s.cur)
	return c, true
}

func (s *source) match(c rune) bool {
	ch, width := DecodeChar(s.cur)
	if width > 0 && ch == c {
		s.cur = s.cur[width:]
		return true
	}

	return false
}

// DecodeChar decodes the first character of `s` and returns it with its width in bytes.
// If `s` starts with an invalid UTF-8 sequence, the first byte is returned as the character,
// with a width of 1. If `s` is empty, the width is 0.
// Patterns and matched texts use the same decoding, so a literal byte in a pattern
// matches the same byte in the text.
func DecodeChar(s string) (rune, int) {
	if len(s) == 0 {
		return 0, 0
	}

	c, size := utf8.DecodeRuneInString(s)
	if c == utf8.RuneError && size == 1 {
		c = rune(s[0])
	}

	return c, size
}
