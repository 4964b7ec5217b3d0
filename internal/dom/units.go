package dom

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Units converts s to UTF-16 code units
func Units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// String converts UTF-16 code units back to a Go string.
// A surrogate half cut off by slicing decodes to U+FFFD, which is still one code unit.
func String(u []uint16) string {
	return string(utf16.Decode(u))
}

// Len returns the length of s in UTF-16 code units
func Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// CodePointAt decodes the code point starting at code unit i.
// A lone surrogate is returned as is.
func CodePointAt(u []uint16, i int) (rune, bool) {
	if i < 0 || i >= len(u) {
		return 0, false
	}
	c := rune(u[i])
	if utf16.IsSurrogate(c) && i+1 < len(u) {
		if r := utf16.DecodeRune(c, rune(u[i+1])); r != utf8.RuneError {
			return r, true
		}
	}
	return c, true
}
