package xmltok

// matchLiteral tries to match the ASCII literal lit starting at
// buf[0]. It returns the number of bytes consumed on a full match.
// charPartial means buf does not yet hold enough bytes to decide;
// charInvalid means buf's content diverges from lit at some point
// at or before min(len(lit-consumed)).
func (e *Encoding) matchLiteral(buf []byte, lit string) (n int, status charStatus) {
	off := 0
	for i := 0; i < len(lit); i++ {
		info, st := e.prim.next(buf[off:])
		if st == charPartial {
			return off, charPartial
		}
		if st == charInvalid {
			return off, charInvalid
		}
		if !info.isAscii || info.ascii != lit[i] {
			return off, charInvalid
		}
		off += info.width
	}
	return off, charOK
}

// skipWS advances off past a run of whitespace (space/tab/CR/LF).
// needMore is true when the run may continue past the end of buf and
// the caller is not final; stop is a ready-made Result to return
// immediately in that case (or on malformed input).
func (e *Encoding) skipWS(buf []byte, off int, final bool) (newOff int, needMore bool, stop *Result) {
	for {
		info, status := e.prim.next(buf[off:])
		if status == charPartial {
			if final {
				return off, false, nil
			}
			return off, true, &Result{Kind: KindPartial}
		}
		if status == charInvalid {
			return off, false, &Result{Kind: KindInvalid, N: off}
		}
		if !isWS(info.class) {
			return off, false, nil
		}
		off += info.width
	}
}

// scanName advances off past one Name production (NameStartChar
// followed by zero or more NameChar). ok is false if buf[off:] does
// not begin with a NameStartChar.
func (e *Encoding) scanName(buf []byte, off int, final bool) (newOff int, ok bool, needMore bool, stop *Result) {
	info, status := e.prim.next(buf[off:])
	if status == charPartial {
		if final {
			return off, false, false, nil
		}
		return off, false, true, &Result{Kind: KindPartial}
	}
	if status == charInvalid || !(isNameStart(info.class) || info.class == clsNonAscii) {
		return off, false, false, nil
	}
	off += info.width
	for {
		info, status = e.prim.next(buf[off:])
		if status == charPartial {
			if final {
				return off, true, false, nil
			}
			return off, true, true, &Result{Kind: KindPartial}
		}
		if status == charInvalid {
			return off, true, false, nil
		}
		if isNameChar(info.class) || info.class == clsNonAscii {
			off += info.width
			continue
		}
		return off, true, false, nil
	}
}

func partialResult(final bool, unclosedAt int) Result {
	if final {
		return Result{Kind: KindInvalid, N: unclosedAt}
	}
	return Result{Kind: KindPartial}
}
