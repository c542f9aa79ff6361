package xmltok

import (
	"golang.org/x/net/html/charset"
)

type charStatus int

const (
	charOK charStatus = iota
	charPartial
	charInvalid
)

type charInfo struct {
	class   class
	width   int
	isAscii bool
	ascii   byte
}

// prim is the per-encoding primitive the generic scanner is built
// on top of: decode the class and byte-width of the next character.
// Everything above this layer (token recognition, grammar) is written
// once and shared by every encoding, matching the design note that a
// tokenizer be "generated" from a trait rather than hand-duplicated
// per encoding.
type prim interface {
	name() string
	minBytesPerChar() int
	next(buf []byte) (charInfo, charStatus)
}

// Encoding is the parser's uniform tokenizer handle: one value per
// concrete encoding (UTF-8, UTF-16LE, UTF-16BE), plus any single-byte
// encoding wrapped by SingleByteEncoding.AsEncoding.
type Encoding struct {
	prim    prim
	initial bool
}

func (e *Encoding) Name() string           { return e.prim.name() }
func (e *Encoding) MinBytesPerChar() int    { return e.prim.minBytesPerChar() }
func (e *Encoding) IsInitial() bool        { return e.initial }

var (
	UTF8    = &Encoding{prim: utf8Prim{}}
	UTF16LE = &Encoding{prim: utf16Prim{bigEndian: false}}
	UTF16BE = &Encoding{prim: utf16Prim{bigEndian: true}}
)

// ---- UTF-8 ----

type utf8Prim struct{}

func (utf8Prim) name() string        { return "UTF-8" }
func (utf8Prim) minBytesPerChar() int { return 1 }

func (utf8Prim) next(buf []byte) (charInfo, charStatus) {
	if len(buf) == 0 {
		return charInfo{}, charPartial
	}
	b0 := buf[0]
	if b0 < 0x80 {
		return charInfo{class: asciiClass[b0], width: 1, isAscii: true, ascii: b0}, charOK
	}
	var width int
	switch {
	case b0&0xE0 == 0xC0:
		width = 2
	case b0&0xF0 == 0xE0:
		width = 3
	case b0&0xF8 == 0xF0:
		width = 4
	default:
		return charInfo{}, charInvalid
	}
	if len(buf) < width {
		return charInfo{}, charPartial
	}
	for i := 1; i < width; i++ {
		if buf[i]&0xC0 != 0x80 {
			return charInfo{}, charInvalid
		}
	}
	return charInfo{class: clsNonAscii, width: width}, charOK
}

// ---- UTF-16 ----

type utf16Prim struct{ bigEndian bool }

func (p utf16Prim) name() string {
	if p.bigEndian {
		return "UTF-16BE"
	}
	return "UTF-16LE"
}
func (utf16Prim) minBytesPerChar() int { return 2 }

func (p utf16Prim) unit(buf []byte) uint16 {
	if p.bigEndian {
		return uint16(buf[0])<<8 | uint16(buf[1])
	}
	return uint16(buf[1])<<8 | uint16(buf[0])
}

func (p utf16Prim) next(buf []byte) (charInfo, charStatus) {
	if len(buf) < 2 {
		return charInfo{}, charPartial
	}
	u := p.unit(buf)
	if u < 0x80 {
		return charInfo{class: asciiClass[u], width: 2, isAscii: true, ascii: byte(u)}, charOK
	}
	switch {
	case u >= 0xD800 && u <= 0xDBFF: // high surrogate
		if len(buf) < 4 {
			return charInfo{}, charPartial
		}
		lo := p.unit(buf[2:])
		if lo < 0xDC00 || lo > 0xDFFF {
			return charInfo{}, charInvalid
		}
		return charInfo{class: clsNonAscii, width: 4}, charOK
	case u >= 0xDC00 && u <= 0xDFFF: // unpaired low surrogate
		return charInfo{}, charInvalid
	case u == 0xFFFE || u == 0xFFFF:
		return charInfo{class: clsNonXML, width: 2}, charOK
	default:
		return charInfo{class: clsNonAscii, width: 2}, charOK
	}
}

// Detect inspects the first bytes of a document and returns the
// concrete encoding to switch to, per the XML spec's auto-detection
// algorithm restricted to the encodings this parser supports (UTF-8,
// UTF-16 with or without a byte-order mark). consumed is the number
// of leading bytes to discard (nonzero only for a BOM). ok is false
// when more bytes are needed before a decision can be made.
func Detect(buf []byte) (enc *Encoding, consumed int, ok bool) {
	if len(buf) < 2 {
		return nil, 0, false
	}
	switch {
	case buf[0] == 0xFE && buf[1] == 0xFF:
		return UTF16BE, 2, true
	case buf[0] == 0xFF && buf[1] == 0xFE:
		return UTF16LE, 2, true
	case buf[0] == 0x00 && buf[1] == 0x3C:
		return UTF16BE, 0, true
	case buf[0] == 0x3C && buf[1] == 0x00:
		return UTF16LE, 0, true
	case len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF:
		return UTF8, 3, true
	default:
		return UTF8, 0, true
	}
}

// ByName resolves a declared encoding label (from an XML or text
// declaration) to one of the three encodings this parser natively
// understands. It does not consult the unknown-encoding fallback;
// callers fall back to NewUnknownEncodingFromLabel when ByName fails.
func ByName(name string) (enc *Encoding, ok bool) {
	switch normalizeLabel(name) {
	case "utf-8", "utf8":
		return UTF8, true
	case "utf-16le":
		return UTF16LE, true
	case "utf-16be":
		return UTF16BE, true
	default:
		return nil, false
	}
}

func normalizeLabel(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b = append(b, c)
	}
	return string(b)
}

// Transcode converts buf (encoded in e's source encoding, assumed
// already validated by a prior Scan) to its UTF-8 representation.
// All text handed out across the public SAX boundary is transcoded
// exactly once at that boundary; internal byte-for-byte comparisons
// (tag-name matching, DTD keyword recognition) operate on the
// original untranscoded bytes instead, since two spans drawn from the
// same source document compare equal in their original encoding iff
// they would after transcoding.
func (e *Encoding) Transcode(buf []byte) []byte {
	if _, ok := e.prim.(utf8Prim); ok {
		return buf
	}
	out := make([]byte, 0, len(buf))
	off := 0
	for off < len(buf) {
		r, width := e.decodeRune(buf[off:])
		if width == 0 {
			break
		}
		out = appendUTF8(out, r)
		off += width
	}
	return out
}

func (e *Encoding) decodeRune(buf []byte) (rune, int) {
	switch p := e.prim.(type) {
	case utf16Prim:
		if len(buf) < 2 {
			return 0xFFFD, len(buf)
		}
		u := p.unit(buf)
		if u >= 0xD800 && u <= 0xDBFF && len(buf) >= 4 {
			lo := p.unit(buf[2:])
			r := 0x10000 + (rune(u)-0xD800)<<10 + (rune(lo) - 0xDC00)
			return r, 4
		}
		return rune(u), 2
	case singleBytePrim:
		if len(buf) < 1 {
			return 0xFFFD, 0
		}
		if buf[0] < 0x80 {
			return rune(buf[0]), 1
		}
		return p.s.table[buf[0]], 1
	default:
		info, status := e.prim.next(buf)
		if status != charOK {
			return 0xFFFD, 1
		}
		return decodeRuneFromUTF8Wide(buf[:info.width]), info.width
	}
}

func decodeRuneFromUTF8Wide(b []byte) rune {
	if len(b) == 1 {
		return rune(b[0])
	}
	return decodeRuneFromUTF8(b)
}

func appendUTF8(out []byte, r rune) []byte {
	switch {
	case r < 0x80:
		return append(out, byte(r))
	case r < 0x800:
		return append(out, byte(0xC0|r>>6), byte(0x80|r&0x3F))
	case r < 0x10000:
		return append(out, byte(0xE0|r>>12), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	default:
		return append(out, byte(0xF0|r>>18), byte(0x80|(r>>12)&0x3F), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	}
}

// SingleByteEncoding is a synthetic encoding built from a 256-entry
// code-point map, as produced by the unknown-encoding fallback (spec
// §4.3: "an unknown-encoding callback may supply a 256-entry map plus
// a convert function").
type SingleByteEncoding struct {
	label string
	table [256]rune
}

func (s *SingleByteEncoding) MinBytesPerChar() int { return 1 }
func (s *SingleByteEncoding) Name() string         { return s.label }

// RuneAt returns the Unicode code point this encoding maps byte b to.
func (s *SingleByteEncoding) RuneAt(b byte) rune { return s.table[b] }

// AsEncoding wraps the single-byte map as an *Encoding so it can be
// driven through the same generic scanner as the built-in encodings.
func (s *SingleByteEncoding) AsEncoding() *Encoding {
	return &Encoding{prim: singleBytePrim{s}}
}

type singleBytePrim struct{ s *SingleByteEncoding }

func (p singleBytePrim) name() string        { return p.s.label }
func (singleBytePrim) minBytesPerChar() int { return 1 }

func (p singleBytePrim) next(buf []byte) (charInfo, charStatus) {
	if len(buf) == 0 {
		return charInfo{}, charPartial
	}
	b0 := buf[0]
	if b0 < 0x80 {
		return charInfo{class: asciiClass[b0], width: 1, isAscii: true, ascii: b0}, charOK
	}
	r := p.s.table[b0]
	if r == 0xFFFD || r == 0 {
		return charInfo{}, charInvalid
	}
	return charInfo{class: clsNonAscii, width: 1}, charOK
}

// NewUnknownEncodingFromLabel builds a SingleByteEncoding for a
// declared encoding name this parser does not natively recognize, by
// asking golang.org/x/net/html/charset to resolve the label (the
// same package ucarion-c14n drives through charset.NewReaderLabel)
// and probing its decoder over every single byte value 0x00-0xFF.
// It returns ok=false for labels charset does not know, or whose
// decoder turns a single byte into more than one code point. A byte
// that does not decode on its own (such as a lead byte of a multi-byte
// encoding) maps to U+FFFD, which the scanner rejects as invalid; such
// encodings are not detected here and still return ok=true.
func NewUnknownEncodingFromLabel(label string) (*SingleByteEncoding, bool) {
	enc, canonical := charset.Lookup(label)
	if enc == nil {
		return nil, false
	}
	out := &SingleByteEncoding{label: canonical}
	dec := enc.NewDecoder()
	for i := 0; i < 256; i++ {
		dst := make([]byte, 8)
		n, _, err := dec.Transform(dst, []byte{byte(i)}, true)
		if err != nil || n == 0 {
			out.table[i] = 0xFFFD
			continue
		}
		r, size := decodeUTF8Rune(dst[:n])
		if size != n {
			// decoder produced more than one code point for a single
			// input byte: not representable as a 256-entry map.
			return nil, false
		}
		out.table[i] = r
	}
	return out, true
}

func decodeUTF8Rune(b []byte) (rune, int) {
	if len(b) == 0 {
		return 0xFFFD, 0
	}
	if b[0] < 0x80 {
		return rune(b[0]), 1
	}
	info, status := utf8Prim{}.next(b)
	if status != charOK {
		return 0xFFFD, len(b)
	}
	r := decodeRuneFromUTF8(b[:info.width])
	return r, info.width
}

func decodeRuneFromUTF8(b []byte) rune {
	switch len(b) {
	case 2:
		return rune(b[0]&0x1F)<<6 | rune(b[1]&0x3F)
	case 3:
		return rune(b[0]&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F)
	case 4:
		return rune(b[0]&0x07)<<18 | rune(b[1]&0x3F)<<12 | rune(b[2]&0x3F)<<6 | rune(b[3]&0x3F)
	default:
		return 0xFFFD
	}
}
