package lookup

import "unicode"

// lookupWorthy lists the code points that can start a lookup: CJK punctuation,
// kana, CJK ideographs and compatibility ideographs, full-width digits,
// letters and half-width katakana, everything from the supplementary
// ideographic plane up, and the white circle used as a kanji placeholder.
var lookupWorthy = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x25CB, Hi: 0x25CB, Stride: 1},
		{Lo: 0x3001, Hi: 0x30FF, Stride: 1},
		{Lo: 0x3400, Hi: 0x9FFF, Stride: 1},
		{Lo: 0xF900, Hi: 0xFAFF, Stride: 1},
		{Lo: 0xFF10, Hi: 0xFF9D, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x20000, Hi: unicode.MaxRune, Stride: 1},
	},
}

// IsLookupWorthy reports whether r may start a dictionary lookup
func IsLookupWorthy(r rune) bool {
	return unicode.Is(lookupWorthy, r)
}

// isSpace is the whitespace set used for anchor skipping and trimming:
// Unicode White_Space without NEL, plus the byte order mark
func isSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\uFEFF'
}
