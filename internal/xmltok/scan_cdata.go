package xmltok

// scanCData scans one token while inside a CDATA section: plain data,
// a line ending, or the closing "]]>" marker.
func (e *Encoding) scanCData(buf []byte, final bool) Result {
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
	case clsCR:
		return e.scanTrailingCR(buf, info.width, final)
	case clsLF:
		return Result{Kind: KindDataNewline, N: info.width}
	case clsNonXML:
		return Result{Kind: KindInvalid}
	case clsRsqb:
		n, st := e.matchLiteral(buf, "]]>")
		if st == charOK {
			return Result{Kind: KindCdataSectionClose, N: n}
		}
		if st == charPartial && !final {
			return Result{Kind: KindPartial}
		}
		return e.scanCDataChars(buf, final)
	default:
		return e.scanCDataChars(buf, final)
	}
}

func (e *Encoding) scanCDataChars(buf []byte, final bool) Result {
	n := 0
loop:
	for n < len(buf) {
		info, status := e.prim.next(buf[n:])
		if status != charOK {
			break loop
		}
		switch info.class {
		case clsCR, clsLF, clsNonXML:
			break loop
		case clsRsqb:
			_, st := e.matchLiteral(buf[n:], "]]>")
			if st == charOK {
				break loop
			}
			if st == charPartial && !final {
				break loop
			}
			n += info.width
		default:
			n += info.width
		}
	}
	if n == 0 {
		return partialResult(final, 0)
	}
	return Result{Kind: KindDataChars, N: n}
}
