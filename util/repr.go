package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Digits of hex strings.
var hexDigits = "0123456789abcdef"

// Repr returns a quoted representation of a string, as used in pattern reprs.
// Single quotes are preferred, unless the string contains a single quote but no double quote.
func Repr(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)

	var quote byte
	if strings.IndexByte(s, '\'') < 0 || strings.IndexByte(s, '"') >= 0 {
		quote = '\''
	} else {
		quote = '"'
	}

	b.WriteByte(quote)

	var ch rune
	for size := 0; len(s) > 0; s = s[size:] {
		ch, size = utf8.DecodeRuneInString(s)

		// Invalid bytes are written as '\xhh'
		if ch == utf8.RuneError && size == 1 {
			writeHexByte(&b, s[0])
			continue
		}

		writeChar(&b, ch, quote)
	}

	b.WriteByte(quote)

	return b.String()
}

// QuoteRune returns the single quoted representation of a character, as printed in bytecode dumps.
func QuoteRune(ch rune) string {
	var b strings.Builder
	b.Grow(4)

	b.WriteByte('\'')
	writeChar(&b, ch, '\'')
	b.WriteByte('\'')

	return b.String()
}

// writeChar writes a single character, escaping quotes, backslashes and non-printable characters.
func writeChar(b *strings.Builder, ch rune, quote byte) {
	switch {
	case ch == rune(quote) || ch == '\\':
		b.WriteByte('\\')
		b.WriteByte(byte(ch))
	case ch == '\t':
		b.WriteString(`\t`)
	case ch == '\n':
		b.WriteString(`\n`)
	case ch == '\r':
		b.WriteString(`\r`)
	case ch < ' ' || ch == unicode.MaxASCII:
		writeHexByte(b, byte(ch))
	case !unicode.IsPrint(ch):
		hexEscape(b, ch)
	default:
		b.WriteRune(ch)
	}
}

func writeHexByte(b *strings.Builder, c byte) {
	b.WriteString(`\x`)
	b.WriteByte(hexDigits[c>>4])
	b.WriteByte(hexDigits[c&0xf])
}

// hexEscape escapes the character to a hex sequence and writes it to the string builder.
func hexEscape(w *strings.Builder, ch rune) {
	w.WriteByte('\\')
	if ch <= 0xff { // Map 8-bit characters to '\xhh'
		w.WriteByte('x')
		w.WriteByte(hexDigits[(ch>>4)&0xf])
		w.WriteByte(hexDigits[ch&0xf])
	} else if ch <= 0xffff { // Map 16-bit characters to '\uxxxx'
		w.WriteByte('u')
		w.WriteByte(hexDigits[(ch>>12)&0xf])
		w.WriteByte(hexDigits[(ch>>8)&0xf])
		w.WriteByte(hexDigits[(ch>>4)&0xf])
		w.WriteByte(hexDigits[ch&0xf])
	} else { // Map 21-bit characters to '\U00xxxxxx'
		w.WriteByte('U')
		w.WriteByte(hexDigits[(ch>>28)&0xf])
		w.WriteByte(hexDigits[(ch>>24)&0xf])
		w.WriteByte(hexDigits[(ch>>20)&0xf])
		w.WriteByte(hexDigits[(ch>>16)&0xf])
		w.WriteByte(hexDigits[(ch>>12)&0xf])
		w.WriteByte(hexDigits[(ch>>8)&0xf])
		w.WriteByte(hexDigits[(ch>>4)&0xf])
		w.WriteByte(hexDigits[ch&0xf])
	}
}
