package expat

import (
	"strconv"
	"unicode/utf8"
)

// parseCharRef parses a transcoded (UTF-8) character reference token
// of the form "&#NNN;" or "&#xHH;", delimiters included, and returns
// its code point. ok is false for a reference to a code point the XML
// Char production excludes (spec's ErrBadCharRef).
func parseCharRef(tok []byte) (r rune, ok bool) {
	if len(tok) < 4 || tok[0] != '&' || tok[1] != '#' || tok[len(tok)-1] != ';' {
		return 0, false
	}
	digits := tok[2 : len(tok)-1]
	base := 10
	if len(digits) > 0 && (digits[0] == 'x' || digits[0] == 'X') {
		base = 16
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(string(digits), base, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), isValidXMLChar(rune(v))
}

// isValidXMLChar reports whether r is in the XML 1.0 Char production:
// tab, newline, carriage return, and most of the Basic Multilingual
// Plane plus the supplementary planes, excluding the other C0
// controls, the surrogate range, and U+FFFE/U+FFFF.
func isValidXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

func appendRune(out []byte, r rune) []byte {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return append(out, buf[:n]...)
}
