package xmltok

// RawAttribute is one attribute as found by ExtractAttributes: raw,
// unnormalized name/value spans into the caller's start-tag buffer.
type RawAttribute struct {
	Name       []byte
	Value      []byte
	Normalized bool // true iff Value needs no CR/LF/TAB folding, no entity expansion, and no transcoding
}

// ExtractAttributes re-walks a start tag's attribute region (the
// bytes after the element name, already validated once by
// scanStartTag; a trailing '>' or "/>" may be included and simply
// ends the walk) and fills in
// one RawAttribute per name="value" pair, in document order.
//
// Normalized is spec §4.2's normalization shortcut: true only when
// the raw value contains no CR, LF, TAB or '&', and the source
// encoding is already this parser's UTF-8 internal representation
// (so no transcoding is needed either) — the document processor can
// then skip attribute-value normalization entirely and use Value as
// the final attribute value.
func (e *Encoding) ExtractAttributes(buf []byte) []RawAttribute {
	var attrs []RawAttribute
	off := 0
	isUTF8 := e.prim.name() == "UTF-8"
	for {
		var stop *Result
		off, _, stop = e.skipWS(buf, off, true)
		if stop != nil || off >= len(buf) {
			break
		}
		nameStart := off
		newOff, ok, _, nstop := e.scanName(buf, off, true)
		if nstop != nil || !ok {
			break
		}
		name := buf[nameStart:newOff]
		off = newOff

		off, _, stop = e.skipWS(buf, off, true)
		if stop != nil {
			break
		}
		info, status := e.prim.next(buf[off:])
		if status != charOK || info.class != clsEq {
			break
		}
		off += info.width

		off, _, stop = e.skipWS(buf, off, true)
		if stop != nil {
			break
		}
		info, status = e.prim.next(buf[off:])
		if status != charOK || (info.class != clsQuot && info.class != clsApos) {
			break
		}
		quote := info.class
		off += info.width
		valStart := off
		normalized := isUTF8
		for {
			i, st := e.prim.next(buf[off:])
			if st != charOK {
				break
			}
			if i.class == quote {
				break
			}
			if i.class == clsCR || i.class == clsLF || i.class == clsAmp ||
				(i.isAscii && i.ascii == '\t') {
				normalized = false
			}
			off += i.width
		}
		value := buf[valStart:off]
		if info, status = e.prim.next(buf[off:]); status == charOK && info.class == quote {
			off += info.width
		}
		attrs = append(attrs, RawAttribute{Name: name, Value: value, Normalized: normalized})
	}
	return attrs
}
