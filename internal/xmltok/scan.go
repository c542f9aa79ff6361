package xmltok

// Scan scans one token starting at buf[0] under the given phase.
// final indicates no more bytes will ever follow this call chain, so
// a token that would otherwise be Partial/PartialChar must instead
// be resolved (typically as Invalid/UnclosedToken by the caller).
//
// Invariants: 0 <= N <= len(buf) for any non-Partial, non-PartialChar
// Kind; for Invalid, N is the offset of the first offending byte.
func (e *Encoding) Scan(phase Phase, buf []byte, final bool) Result {
	switch phase {
	case PhaseProlog:
		return e.scanProlog(buf, final)
	case PhaseContent:
		return e.scanContent(buf, final)
	case PhaseCData:
		return e.scanCData(buf, final)
	default:
		return Result{Kind: KindInvalid}
	}
}

// NameEqual compares two raw name spans byte-for-byte in the active
// encoding. Because both spans originate from the same encoded
// document, exact byte equality is equivalent to the original's
// lead-by-lead multi-byte comparison: two distinct encoded
// representations of the same name cannot both appear verbatim in
// the same document.
func NameEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
