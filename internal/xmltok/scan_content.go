package xmltok

// scanContent scans one token of document content: character data,
// markup ('<' constructs) or a reference ('&' constructs).
func (e *Encoding) scanContent(buf []byte, final bool) Result {
	if len(buf) == 0 {
		return Result{Kind: KindNone}
	}
	info, status := e.prim.next(buf)
	if status == charPartial {
		return partialResult(final, 0)
	}
	if status == charInvalid {
		return Result{Kind: KindInvalid}
	}
	switch info.class {
	case clsLt:
		return e.scanMarkup(buf, info.width, final)
	case clsAmp:
		return e.scanReference(buf, final)
	case clsCR:
		return e.scanTrailingCR(buf, info.width, final)
	case clsLF:
		return Result{Kind: KindDataNewline, N: info.width}
	case clsNonXML:
		return Result{Kind: KindInvalid}
	default:
		return e.scanDataChars(buf, final)
	}
}

func (e *Encoding) scanTrailingCR(buf []byte, width int, final bool) Result {
	rest := buf[width:]
	if len(rest) == 0 {
		if final {
			return Result{Kind: KindDataNewline, N: width}
		}
		return Result{Kind: KindTrailingCR}
	}
	info, status := e.prim.next(rest)
	if status == charPartial {
		if final {
			return Result{Kind: KindDataNewline, N: width}
		}
		return Result{Kind: KindTrailingCR}
	}
	if status == charOK && info.class == clsLF {
		return Result{Kind: KindDataNewline, N: width + info.width}
	}
	return Result{Kind: KindDataNewline, N: width}
}

// scanDataChars coalesces a run of plain character data, stopping
// before '<', '&', a line ending, or a disallowed "]]>" sequence.
func (e *Encoding) scanDataChars(buf []byte, final bool) Result {
	n := 0
runLoop:
	for n < len(buf) {
		info, status := e.prim.next(buf[n:])
		switch status {
		case charPartial:
			break runLoop
		case charInvalid:
			break runLoop
		}
		switch info.class {
		case clsLt, clsAmp, clsCR, clsLF, clsNonXML:
			break runLoop
		case clsRsqb:
			closes, needMore := e.looksLikeCDataClose(buf[n:], final)
			if needMore || closes {
				break runLoop
			}
			n += info.width
		default:
			n += info.width
		}
	}
	if n == 0 {
		info, status := e.prim.next(buf)
		if status == charOK && info.class == clsRsqb {
			return Result{Kind: KindTrailingRSqb}
		}
		return partialResult(final, 0)
	}
	return Result{Kind: KindDataChars, N: n}
}

// looksLikeCDataClose reports whether buf begins with "]]>". needMore
// is true when buf holds a prefix of "]]>" but not enough bytes to
// rule the sequence in or out and final is false.
func (e *Encoding) looksLikeCDataClose(buf []byte, final bool) (closes bool, needMore bool) {
	i1, s1 := e.prim.next(buf)
	if s1 != charOK || i1.class != clsRsqb {
		return false, false
	}
	rest := buf[i1.width:]
	i2, s2 := e.prim.next(rest)
	if s2 == charPartial {
		return false, !final
	}
	if s2 != charOK || i2.class != clsRsqb {
		return false, false
	}
	rest2 := rest[i2.width:]
	i3, s3 := e.prim.next(rest2)
	if s3 == charPartial {
		return false, !final
	}
	return s3 == charOK && i3.class == clsGt, false
}

// scanReference scans "&#NNN;", "&#xHH;" or "&name;" starting at '&'.
func (e *Encoding) scanReference(buf []byte, final bool) Result {
	amp, _ := e.prim.next(buf)
	off := amp.width
	info, status := e.prim.next(buf[off:])
	if status == charPartial {
		return partialResult(final, 0)
	}
	if status == charInvalid {
		return Result{Kind: KindInvalid, N: off}
	}
	if info.class == clsHash {
		off += info.width
		return e.scanCharRef(buf, off, final)
	}
	if !(isNameStart(info.class) || info.class == clsNonAscii) {
		return Result{Kind: KindInvalid, N: off}
	}
	newOff, _, needMore, stop := e.scanName(buf, off, final)
	if stop != nil {
		return *stop
	}
	_ = needMore
	info, status = e.prim.next(buf[newOff:])
	if status == charPartial {
		return partialResult(final, 0)
	}
	if status != charOK || info.class != clsSemi {
		return Result{Kind: KindInvalid, N: newOff}
	}
	return Result{Kind: KindEntityRef, N: newOff + info.width}
}

func (e *Encoding) scanCharRef(buf []byte, off int, final bool) Result {
	hex := false
	info, status := e.prim.next(buf[off:])
	if status == charPartial {
		return partialResult(final, 0)
	}
	if status == charOK && info.isAscii && (info.ascii == 'x' || info.ascii == 'X') {
		hex = true
		off += info.width
	}
	digits := 0
	for {
		info, status = e.prim.next(buf[off:])
		if status == charPartial {
			return partialResult(final, 0)
		}
		if status != charOK || !info.isAscii {
			break
		}
		c := info.ascii
		isDigit := c >= '0' && c <= '9'
		isHexDigit := isDigit || (hex && ((c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')))
		if hex && !isHexDigit {
			break
		}
		if !hex && !isDigit {
			break
		}
		digits++
		off += info.width
	}
	if digits == 0 {
		return Result{Kind: KindInvalid, N: off}
	}
	if status == charOK && info.class == clsSemi {
		return Result{Kind: KindCharRef, N: off + info.width}
	}
	return Result{Kind: KindInvalid, N: off}
}

// scanMarkup scans a '<' construct: comment, PI, CDATA section open,
// end tag or start/empty tag.
func (e *Encoding) scanMarkup(buf []byte, ltWidth int, final bool) Result {
	off := ltWidth
	info, status := e.prim.next(buf[off:])
	if status == charPartial {
		return partialResult(final, 0)
	}
	if status == charInvalid {
		return Result{Kind: KindInvalid, N: off}
	}
	switch info.class {
	case clsExcl:
		return e.scanBang(buf, off+info.width, final)
	case clsQuestion:
		return e.scanPI(buf, off+info.width, final)
	case clsSol:
		return e.scanEndTag(buf, off+info.width, final)
	default:
		if isNameStart(info.class) || info.class == clsNonAscii {
			return e.scanStartTag(buf, off, final)
		}
		return Result{Kind: KindInvalid, N: off}
	}
}

func (e *Encoding) scanBang(buf []byte, off int, final bool) Result {
	if n, st := e.matchLiteral(buf[off:], "--"); st == charOK {
		return e.scanComment(buf, off+n, final)
	} else if st == charPartial {
		return partialResult(final, 0)
	}
	if n, st := e.matchLiteral(buf[off:], "[CDATA["); st == charOK {
		return Result{Kind: KindCdataSectionOpen, N: off + n}
	} else if st == charPartial {
		return partialResult(final, 0)
	}
	return Result{Kind: KindInvalid, N: off}
}

func (e *Encoding) scanComment(buf []byte, off int, final bool) Result {
	for {
		idx, found, needMore := e.findDashDashGt(buf[off:], final)
		if needMore {
			return partialResult(final, off)
		}
		if !found {
			if final {
				return Result{Kind: KindInvalid, N: off}
			}
			return Result{Kind: KindPartial}
		}
		return Result{Kind: KindComment, N: off + idx}
	}
}

// findDashDashGt scans forward for "-->" and returns the offset just
// past it, scanning one character at a time so multi-byte encodings
// are handled uniformly.
func (e *Encoding) findDashDashGt(buf []byte, final bool) (n int, found bool, needMore bool) {
	off := 0
	for {
		i1, s1 := e.prim.next(buf[off:])
		if s1 == charPartial {
			return 0, false, !final
		}
		if s1 == charInvalid {
			return 0, false, false
		}
		if i1.class != clsHyphen {
			off += i1.width
			continue
		}
		rest := buf[off+i1.width:]
		i2, s2 := e.prim.next(rest)
		if s2 == charPartial {
			return 0, false, !final
		}
		if s2 != charOK || i2.class != clsHyphen {
			off += i1.width
			continue
		}
		rest2 := rest[i2.width:]
		i3, s3 := e.prim.next(rest2)
		if s3 == charPartial {
			return 0, false, !final
		}
		if s3 == charOK && i3.class == clsGt {
			return off + i1.width + i2.width + i3.width, true, false
		}
		// "--" not followed by '>' is itself malformed inside a comment,
		// but we simply keep scanning past the first hyphen.
		off += i1.width
	}
}

func (e *Encoding) scanPI(buf []byte, off int, final bool) Result {
	// target name
	newOff, ok, _, stop := e.scanName(buf, off, final)
	if stop != nil {
		return *stop
	}
	if !ok {
		return Result{Kind: KindInvalid, N: off}
	}
	off = newOff
	for {
		i1, s1 := e.prim.next(buf[off:])
		if s1 == charPartial {
			return partialResult(final, off)
		}
		if s1 == charInvalid {
			return Result{Kind: KindInvalid, N: off}
		}
		if i1.class != clsQuestion {
			off += i1.width
			continue
		}
		rest := buf[off+i1.width:]
		i2, s2 := e.prim.next(rest)
		if s2 == charPartial {
			return partialResult(final, off)
		}
		if s2 == charOK && i2.class == clsGt {
			return Result{Kind: KindPi, N: off + i1.width + i2.width}
		}
		off += i1.width
	}
}

func (e *Encoding) scanEndTag(buf []byte, off int, final bool) Result {
	off, ok, _, stop := e.scanName(buf, off, final)
	if stop != nil {
		return *stop
	}
	if !ok {
		return Result{Kind: KindInvalid, N: off}
	}
	var needMore bool
	off, needMore, stop = e.skipWS(buf, off, final)
	if stop != nil {
		return *stop
	}
	_ = needMore
	info, status := e.prim.next(buf[off:])
	if status == charPartial {
		return partialResult(final, off)
	}
	if status != charOK || info.class != clsGt {
		return Result{Kind: KindInvalid, N: off}
	}
	return Result{Kind: KindEndTag, N: off + info.width}
}

// scanStartTag scans a start/empty-element tag from the name onward,
// including any attributes. The returned Kind distinguishes the four
// combinations of (with/without attributes) x (start/empty) so the
// document processor can skip attribute extraction entirely for the
// common no-attribute case.
func (e *Encoding) scanStartTag(buf []byte, off int, final bool) Result {
	off, ok, _, stop := e.scanName(buf, off, final)
	if stop != nil {
		return *stop
	}
	if !ok {
		return Result{Kind: KindInvalid, N: off}
	}
	hasAtts := false
	for {
		var needMore bool
		off, needMore, stop = e.skipWS(buf, off, final)
		if stop != nil {
			return *stop
		}
		_ = needMore
		info, status := e.prim.next(buf[off:])
		if status == charPartial {
			return partialResult(final, off)
		}
		if status == charInvalid {
			return Result{Kind: KindInvalid, N: off}
		}
		switch {
		case info.class == clsGt:
			off += info.width
			if hasAtts {
				return Result{Kind: KindStartTagWithAtts, N: off}
			}
			return Result{Kind: KindStartTagNoAtts, N: off}
		case info.class == clsSol:
			rest := buf[off+info.width:]
			i2, s2 := e.prim.next(rest)
			if s2 == charPartial {
				return partialResult(final, off)
			}
			if s2 != charOK || i2.class != clsGt {
				return Result{Kind: KindInvalid, N: off}
			}
			off += info.width + i2.width
			if hasAtts {
				return Result{Kind: KindEmptyElemWithAtts, N: off}
			}
			return Result{Kind: KindEmptyElemNoAtts, N: off}
		case isNameStart(info.class) || info.class == clsNonAscii:
			hasAtts = true
			var aOff int
			aOff, ok, _, stop = e.scanName(buf, off, final)
			if stop != nil {
				return *stop
			}
			if !ok {
				return Result{Kind: KindInvalid, N: off}
			}
			off = aOff
			off, needMore, stop = e.skipWS(buf, off, final)
			if stop != nil {
				return *stop
			}
			info, status = e.prim.next(buf[off:])
			if status == charPartial {
				return partialResult(final, off)
			}
			if status != charOK || info.class != clsEq {
				return Result{Kind: KindInvalid, N: off}
			}
			off += info.width
			off, needMore, stop = e.skipWS(buf, off, final)
			if stop != nil {
				return *stop
			}
			off, stop = e.scanAttValueLiteral(buf, off, final)
			if stop != nil {
				return *stop
			}
		default:
			return Result{Kind: KindInvalid, N: off}
		}
	}
}

// scanAttValueLiteral scans a quoted attribute value, forbidding a
// raw '<' inside it. The caller is only interested in the end offset;
// content is re-extracted and normalized by ExtractAttributes.
func (e *Encoding) scanAttValueLiteral(buf []byte, off int, final bool) (int, *Result) {
	info, status := e.prim.next(buf[off:])
	if status == charPartial {
		return off, ref(partialResult(final, off))
	}
	if status != charOK || (info.class != clsQuot && info.class != clsApos) {
		return off, ref(Result{Kind: KindInvalid, N: off})
	}
	quote := info.class
	off += info.width
	for {
		info, status = e.prim.next(buf[off:])
		if status == charPartial {
			return off, ref(partialResult(final, off))
		}
		if status == charInvalid {
			return off, ref(Result{Kind: KindInvalid, N: off})
		}
		if info.class == clsLt {
			return off, ref(Result{Kind: KindInvalid, N: off})
		}
		off += info.width
		if info.class == quote {
			return off, nil
		}
	}
}

func ref(r Result) *Result { return &r }
