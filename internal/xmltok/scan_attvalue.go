package xmltok

// ScanAttValue scans one token from an already-delimited attribute
// value span (the bytes strictly between the opening and closing
// quote, as located by the start-tag scanner). The span is always
// complete, so there is no partial/final distinction here: callers
// loop calling ScanAttValue until it reports KindNone.
//
// CR, LF and TAB are reported as KindDataNewline, signalling "append
// one space" to the caller — the attribute-normalization rule in
// spec §4.7 folds all three into a single space identically, so they
// share one token kind rather than three.
func (e *Encoding) ScanAttValue(buf []byte) Result {
	if len(buf) == 0 {
		return Result{Kind: KindNone}
	}
	info, status := e.prim.next(buf)
	if status != charOK {
		return Result{Kind: KindInvalid}
	}
	switch {
	case info.class == clsAmp:
		return e.scanReference(buf, true)
	case info.class == clsCR:
		rest := buf[info.width:]
		if len(rest) > 0 {
			i2, s2 := e.prim.next(rest)
			if s2 == charOK && i2.class == clsLF {
				return Result{Kind: KindDataNewline, N: info.width + i2.width}
			}
		}
		return Result{Kind: KindDataNewline, N: info.width}
	case info.class == clsLF:
		return Result{Kind: KindDataNewline, N: info.width}
	case info.class == clsWS && info.isAscii && info.ascii == '\t':
		return Result{Kind: KindDataNewline, N: info.width}
	default:
		return e.scanAttDataChars(buf)
	}
}

func (e *Encoding) scanAttDataChars(buf []byte) Result {
	n := 0
loop:
	for n < len(buf) {
		info, status := e.prim.next(buf[n:])
		if status != charOK {
			break loop
		}
		if info.class == clsAmp || info.class == clsCR || info.class == clsLF {
			break loop
		}
		if info.class == clsWS && info.isAscii && info.ascii == '\t' {
			break loop
		}
		n += info.width
	}
	if n == 0 {
		return Result{Kind: KindInvalid}
	}
	return Result{Kind: KindDataChars, N: n}
}
