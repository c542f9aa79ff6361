package xmltok

// scanProlog scans one token of the prolog/DTD grammar: whitespace,
// a name, a punctuation byte, a quoted literal, a comment, a PI, an
// XML/text declaration, a declaration opener, a conditional-section
// opener, or a parameter-entity reference.
//
// The prolog tokenizer deliberately stays coarse-grained: it does not
// itself know that "DOCTYPE" is special or that a Literal following
// "SYSTEM" is a system identifier. It hands a flat token stream to
// the role engine (internal/xmlrole), which is the layer that
// understands prolog grammar, exactly as spec §4.4 describes.
func (e *Encoding) scanProlog(buf []byte, final bool) Result {
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
	case clsWS, clsCR, clsLF:
		return e.scanPrologS(buf, final)
	case clsLt:
		return e.scanPrologLt(buf, info.width, final)
	case clsQuot, clsApos:
		return e.scanLiteral(buf, final)
	case clsPercent:
		return e.scanParamEntityRefProlog(buf, info.width, final)
	case clsLparen, clsRparen, clsPipe, clsComma, clsStar, clsPlus, clsLsqb, clsRsqb, clsGt, clsEq:
		return Result{Kind: KindPunct, N: info.width}
	case clsHash:
		return e.scanHashName(buf, info.width, final)
	default:
		if isNameStart(info.class) || info.class == clsNonAscii {
			newOff, _, _, stop := e.scanName(buf, 0, final)
			if stop != nil {
				return *stop
			}
			return Result{Kind: KindName, N: newOff}
		}
		return Result{Kind: KindInvalid}
	}
}

func (e *Encoding) scanPrologS(buf []byte, final bool) Result {
	off, needMore, stop := e.skipWS(buf, 0, final)
	if stop != nil {
		return *stop
	}
	_ = needMore
	return Result{Kind: KindPrologS, N: off}
}

func (e *Encoding) scanLiteral(buf []byte, final bool) Result {
	info, _ := e.prim.next(buf)
	quote := info.class
	off := info.width
	for {
		i, status := e.prim.next(buf[off:])
		if status == charPartial {
			return partialResult(final, off)
		}
		if status == charInvalid {
			return Result{Kind: KindInvalid, N: off}
		}
		off += i.width
		if i.class == quote {
			return Result{Kind: KindLiteral, N: off}
		}
	}
}

func (e *Encoding) scanHashName(buf []byte, off int, final bool) Result {
	newOff, ok, _, stop := e.scanName(buf, off, final)
	if stop != nil {
		return *stop
	}
	if !ok {
		return Result{Kind: KindInvalid, N: off}
	}
	return Result{Kind: KindName, N: newOff}
}

// scanParamEntityRefProlog scans the token that begins with '%' at
// prolog phase. Two distinct grammar productions start this way: the
// reference form "%name;" (no intervening whitespace, used inside the
// internal subset and in entity replacement text), and the bare '%'
// that marks a parameter-entity declaration ("<!ENTITY % name ...>"),
// which is always followed by whitespace. A Name not immediately
// following '%' means the latter: return '%' alone as punctuation and
// let the role engine consume the Name as its own token.
func (e *Encoding) scanParamEntityRefProlog(buf []byte, off int, final bool) Result {
	newOff, ok, needMore, stop := e.scanName(buf, off, final)
	if stop != nil {
		return *stop
	}
	if needMore {
		return partialResult(final, off)
	}
	if !ok {
		return Result{Kind: KindPunct, N: off}
	}
	info, status := e.prim.next(buf[newOff:])
	if status == charPartial {
		return partialResult(final, newOff)
	}
	if status != charOK || info.class != clsSemi {
		return Result{Kind: KindInvalid, N: newOff}
	}
	return Result{Kind: KindParamEntityRef, N: newOff + info.width}
}

func (e *Encoding) scanPrologLt(buf []byte, ltWidth int, final bool) Result {
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
		return e.scanPrologBang(buf, off+info.width, final)
	case clsQuestion:
		return e.scanPrologPI(buf, off+info.width, final)
	default:
		// A bare '<Name' in prolog context is the root element: hand
		// off to the content tokenizer at this same offset.
		if isNameStart(info.class) || info.class == clsNonAscii {
			return Result{Kind: KindPrologEnd}
		}
		return Result{Kind: KindInvalid, N: off}
	}
}

func (e *Encoding) scanPrologPI(buf []byte, off int, final bool) Result {
	// Peek the target name without consuming: decide XmlDecl vs Pi.
	n, st := e.matchLiteral(buf[off:], "xml")
	if st == charPartial {
		return partialResult(final, 0)
	}
	if st == charOK {
		rest := buf[off+n:]
		info, status := e.prim.next(rest)
		if status == charPartial {
			return partialResult(final, 0)
		}
		if status == charOK && (isWS(info.class) || info.class == clsQuestion) {
			return e.scanXmlDecl(buf, off+n, final)
		}
	}
	return e.scanPI(buf, off, final)
}

func (e *Encoding) scanXmlDecl(buf []byte, off int, final bool) Result {
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
			return Result{Kind: KindXmlDecl, N: off + i1.width + i2.width}
		}
		off += i1.width
	}
}

var declKeywords = []string{"DOCTYPE", "ENTITY", "ELEMENT", "ATTLIST", "NOTATION"}

func (e *Encoding) scanPrologBang(buf []byte, off int, final bool) Result {
	if n, st := e.matchLiteral(buf[off:], "--"); st == charOK {
		return e.scanComment(buf, off+n, final)
	} else if st == charPartial {
		return partialResult(final, 0)
	}
	if n, st := e.matchLiteral(buf[off:], "["); st == charOK {
		return Result{Kind: KindCondOpen, N: off + n}
	} else if st == charPartial {
		return partialResult(final, 0)
	}
	for _, kw := range declKeywords {
		n, st := e.matchLiteral(buf[off:], kw)
		if st == charOK {
			return Result{Kind: KindDeclOpen, N: off + n}
		}
		if st == charPartial {
			return partialResult(final, 0)
		}
	}
	return Result{Kind: KindInvalid, N: off}
}
