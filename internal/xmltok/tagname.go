package xmltok

// StartTagName splits a start/empty-element tag's token bytes (buf
// starts right after the opening '<', and runs exactly as far as the
// Result.N the tag's Scan call returned) into the element name and
// the remaining attribute region.
// attrRegion still includes the trailing '>' or "/>" (and any
// whitespace before it): ExtractAttributes stops cleanly the moment
// it meets something that isn't a Name, so passing the extra bytes
// through is harmless and avoids a second encoding-aware scan just to
// trim them.
func (e *Encoding) StartTagName(buf []byte) (name []byte, attrRegion []byte) {
	end, ok, _, _ := e.scanName(buf, 0, true)
	if !ok {
		return nil, nil
	}
	return buf[:end], buf[end:]
}

// EndTagName extracts the element name from an end tag's token bytes
// (buf starts right after "</").
func (e *Encoding) EndTagName(buf []byte) []byte {
	end, ok, _, _ := e.scanName(buf, 0, true)
	if !ok {
		return nil
	}
	return buf[:end]
}
