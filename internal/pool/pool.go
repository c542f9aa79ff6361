// Package pool implements the string pool (arena) described by the
// parser's data model: an append-only scratch buffer for the item
// currently being assembled (a tag name, an attribute value, expanded
// entity text, ...), committed with Finish into an immutable, stable
// byte slice once the item is complete.
//
// Go's garbage collector makes the original design's block-chaining
// and free-list unnecessary: instead of handing out pointers into a
// buffer that may later be grown and relocated, Finish copies the
// in-progress item out into its own backing array. That slice is
// never written to again, so it stays valid for as long as the caller
// holds a reference to it — the same "stable once finished" guarantee
// the original arena gives, reached by a more idiomatic route.
package pool

const initBlockSize = 256

// Pool is a single arena. It is not safe for concurrent use; a parser
// owns one scratch pool reused for each attribute-value normalization,
// and attribute entity expansion takes a fresh pool per nesting level.
type Pool struct {
	buf   []byte
	start int
}

// New returns an empty pool with its scratch buffer pre-sized.
func New() *Pool {
	return &Pool{buf: make([]byte, 0, initBlockSize)}
}

// Len returns the number of bytes appended to the in-progress item.
func (p *Pool) Len() int {
	return len(p.buf) - p.start
}

// AppendByte appends a single byte to the in-progress item.
func (p *Pool) AppendByte(c byte) {
	p.buf = append(p.buf, c)
}

// Append appends raw bytes to the in-progress item.
func (p *Pool) Append(b []byte) {
	p.buf = append(p.buf, b...)
}

// AppendString appends a string to the in-progress item.
func (p *Pool) AppendString(s string) {
	p.buf = append(p.buf, s...)
}

// AppendRune encodes a rune in UTF-8 and appends it to the in-progress
// item — used when expanding a character reference into the pool's
// internal (always-UTF-8) representation.
func (p *Pool) AppendRune(r rune) {
	var tmp [4]byte
	n := encodeRune(tmp[:], r)
	p.buf = append(p.buf, tmp[:n]...)
}

// Current returns the bytes appended so far for the in-progress item,
// without committing it. The slice is only valid until the next
// Append/Finish/Discard call.
func (p *Pool) Current() []byte {
	return p.buf[p.start:]
}

// Finish commits the in-progress item and returns an immutable copy of
// its bytes. Subsequent Append calls start a new item.
func (p *Pool) Finish() []byte {
	out := make([]byte, len(p.buf)-p.start)
	copy(out, p.buf[p.start:])
	p.start = len(p.buf)
	return out
}

// FinishString is Finish followed by a string conversion, for callers
// that want an interned string rather than a byte slice.
func (p *Pool) FinishString() string {
	return string(p.Finish())
}

// StoreString appends b and immediately finishes, returning the
// committed copy. Equivalent to the original's append-then-finish
// idiom used for short, one-shot strings (names, system IDs, ...).
func (p *Pool) StoreString(b []byte) []byte {
	p.Append(b)
	return p.Finish()
}

// Discard abandons the in-progress item without committing it,
// rewinding the scratch buffer as though Append had never been
// called. Used when a partially-scanned value turns out to be invalid
// (e.g. a duplicate attribute detected after its value was appended).
func (p *Pool) Discard() {
	p.buf = p.buf[:p.start]
}

// Clear releases the entire arena's scratch space, including any
// already-finished-but-still-referenced bytes copied out via Finish
// remain valid (they are independent slices); only the scratch buffer
// itself is reset. Used between top-level events where no
// previously-returned item needs to stay reachable through the pool.
func (p *Pool) Clear() {
	p.buf = p.buf[:0]
	p.start = 0
}

// encodeRune is a small local UTF-8 encoder so this package does not
// need to import unicode/utf8 just for WriteRune semantics on a raw
// byte slice; behaves identically to utf8.EncodeRune.
func encodeRune(dst []byte, r rune) int {
	switch {
	case r < 0x80:
		dst[0] = byte(r)
		return 1
	case r < 0x800:
		dst[0] = 0xC0 | byte(r>>6)
		dst[1] = 0x80 | byte(r)&0x3F
		return 2
	case r < 0x10000:
		dst[0] = 0xE0 | byte(r>>12)
		dst[1] = 0x80 | byte(r>>6)&0x3F
		dst[2] = 0x80 | byte(r)&0x3F
		return 3
	default:
		dst[0] = 0xF0 | byte(r>>18)
		dst[1] = 0x80 | byte(r>>12)&0x3F
		dst[2] = 0x80 | byte(r>>6)&0x3F
		dst[3] = 0x80 | byte(r)&0x3F
		return 4
	}
}
