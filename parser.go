package expat

import (
	"strings"

	"github.com/libexpat/goexpat/internal/debug"
	"github.com/libexpat/goexpat/internal/dtd"
	"github.com/libexpat/goexpat/internal/xmlrole"
	"github.com/libexpat/goexpat/internal/xmltok"
	"github.com/libexpat/goexpat/sax"
)

// SAX is the full set of callback interfaces the processor drives.
// A caller wanting only some of them can embed sax.Handler, which
// supplies safe no-op implementations for whatever fields it leaves
// nil.
type SAX interface {
	sax.ContentHandler
	sax.DTDHandler
	sax.LexicalHandler
	sax.DeclHandler
	sax.EntityResolver
}

// Parser is a streaming, push-style XML 1.0 processor: callers feed
// it byte chunks via Parse/ParseBuffer and it drives a SAX handler as
// it recognizes structure, never building a document of its own.
type Parser struct {
	ctx *parserCtx
}

// Option configures a Parser at construction time.
type Option func(*parserCtx)

// WithNamespaceSeparator turns on namespace processing (spec's
// optional Component H): qualified names are split into prefix and
// local part at ':' and resolved against the active xmlns bindings.
// The sep byte is accepted for API symmetry with expat's
// XML_ParserCreateNS but is not otherwise interpreted, since ':' is
// the only separator the XML Name grammar reserves.
func WithNamespaceSeparator(sep byte) Option {
	return func(c *parserCtx) { c.nsSep = sep }
}

// WithParamEntityParsing records a ParamEntityParsing mode. Parameter
// entities and external subsets are not read in any mode.
func WithParamEntityParsing(mode ParamEntityParsing) Option {
	return func(c *parserCtx) { c.paramEntityParsing = mode }
}

// WithUnknownEncodingHandler supplies a fallback invoked when a
// declared encoding label is neither UTF-8/UTF-16 nor resolvable via
// golang.org/x/net/html/charset as a single-byte encoding (spec
// §4.3's "unknown-encoding callback").
func WithUnknownEncodingHandler(f func(label string) (*xmltok.Encoding, bool)) Option {
	return func(c *parserCtx) { c.unknownEncoding = f }
}

// NewParser returns a Parser ready to have a handler installed and
// bytes fed to it.
func NewParser(opts ...Option) *Parser {
	c := newParserCtx()
	for _, opt := range opts {
		opt(c)
	}
	return &Parser{ctx: c}
}

// SetSAXHandler installs the callback set the processor drives.
func (p *Parser) SetSAXHandler(h SAX) { p.ctx.handler = h }

// LineNumber and ColumnNumber satisfy sax.DocumentLocator, so the
// parser can pass itself as the locator object.
func (c *parserCtx) LineNumber() int   { return c.line }
func (c *parserCtx) ColumnNumber() int { return c.col }

// Parse feeds data to the processor. isFinal marks the last chunk of
// the document; the processor will not accept any further input on
// this Parser afterwards, successful or not.
func (p *Parser) Parse(data []byte, isFinal bool) error {
	c := p.ctx
	if c.ph == phaseError {
		return c.err
	}
	c.pending = append(c.pending, data...)
	return c.run(isFinal)
}

// GetBuffer returns a slice of n bytes the caller should fill before
// calling ParseBuffer(n, isFinal); it lets a caller read directly into
// the processor's own buffer instead of handing Parse a separately
// allocated chunk.
func (p *Parser) GetBuffer(n int) []byte {
	c := p.ctx
	if cap(c.pending)-len(c.pending) < n {
		grown := make([]byte, len(c.pending), (len(c.pending)+n)*2)
		copy(grown, c.pending)
		c.pending = grown
	}
	return c.pending[len(c.pending) : len(c.pending)+n]
}

// ParseBuffer parses the n bytes most recently written into the slice
// GetBuffer returned.
func (p *Parser) ParseBuffer(n int, isFinal bool) error {
	c := p.ctx
	if c.ph == phaseError {
		return c.err
	}
	c.pending = c.pending[:len(c.pending)+n]
	return c.run(isFinal)
}

// GetContext returns the base-URI context string a sub-parser created
// via ExternalEntityParserCreate would need; this processor does not
// track external-entity base URIs, so it always returns "".
func (p *Parser) GetContext() string { return "" }

// ExternalEntityParserCreate returns a new Parser for parsing a parsed
// external entity's replacement text, sharing the current DTD
// snapshot (spec's externalEntityParserCreate): the sub-parser must
// see every declaration visible at the point of reference but must
// not let any of its own subsequent declarations leak back to the
// parent.
func (p *Parser) ExternalEntityParserCreate(context, encodingName string) (*Parser, error) {
	parent := p.ctx
	sub := newParserCtx()
	sub.handler = parent.handler
	sub.dtd = parent.dtd.Clone()
	sub.nsSep = parent.nsSep
	sub.paramEntityParsing = parent.paramEntityParsing
	sub.unknownEncoding = parent.unknownEncoding
	sub.extEntity = true
	sub.ph = phaseContent
	sub.sawRoot = true // a parsed entity has no root element of its own to wait for
	sub.role.InitExternalEntity()
	sub.detectedEncoding = true
	if encodingName != "" {
		if enc, ok := xmltok.ByName(encodingName); ok {
			sub.enc = enc
		}
	}
	return &Parser{ctx: sub}, nil
}

func (p *Parser) ErrorCode() ErrorCode {
	if p.ctx.err == nil {
		return ErrNone
	}
	return p.ctx.err.Code
}
func (p *Parser) ErrorLine() int        { return p.ctx.line }
func (p *Parser) ErrorColumn() int      { return p.ctx.col }
func (p *Parser) ErrorByteIndex() int64 { return p.ctx.byteIndex }
func (p *Parser) Err() error {
	if p.ctx.err == nil {
		return nil
	}
	return p.ctx.err
}

// run drives the processor over c.pending, advancing as far as full
// tokens allow and stashing whatever trails off mid-token for the
// next call (spec §4.7's buffer-management contract). Go's slice
// growth plays the role the original's getBuffer/realloc dance plays;
// see DESIGN.md.
func (c *parserCtx) run(isFinal bool) error {
	buf := c.pending
	offset := 0

	if !c.startDocFired {
		c.startDocFired = true
		if c.handler != nil {
			if err := c.handler.SetDocumentLocator(c, c); err != nil {
				return c.fail(ErrSyntax, c.byteIndex)
			}
			if err := c.handler.StartDocument(c); err != nil {
				return c.fail(ErrSyntax, c.byteIndex)
			}
		}
	}

	if !c.detectedEncoding {
		if len(buf) < 2 {
			if !isFinal {
				c.pending = append([]byte(nil), buf...)
				return nil
			}
			c.detectedEncoding = true
		} else {
			enc, consumed, ok := xmltok.Detect(buf)
			if !ok {
				c.pending = append([]byte(nil), buf...)
				return nil
			}
			c.enc = enc
			offset += consumed
			c.detectedEncoding = true
		}
	}

	for c.ph != phaseError {
		chunk := buf[offset:]
		if len(chunk) == 0 {
			break
		}
		n, more, err := c.processToken(chunk, isFinal)
		if err != nil {
			return err
		}
		if more {
			break
		}
		offset += n
	}

	if c.ph == phaseError {
		c.pending = nil
		return c.err
	}

	remaining := buf[offset:]
	if !isFinal {
		c.pending = append([]byte(nil), remaining...)
		return nil
	}

	if len(remaining) > 0 {
		return c.fail(ErrUnclosedToken, c.byteIndex)
	}
	if !c.sawRoot {
		return c.fail(ErrNoElements, c.byteIndex)
	}
	if len(c.tags) > 0 {
		return c.fail(ErrUnclosedToken, c.byteIndex)
	}
	c.pending = nil
	if c.handler != nil {
		if err := c.handler.EndDocument(c); err != nil {
			return c.fail(ErrSyntax, c.byteIndex)
		}
	}
	return nil
}

func (c *parserCtx) processToken(buf []byte, final bool) (int, bool, error) {
	switch c.ph {
	case phasePrologInit, phaseProlog:
		return c.processPrologToken(buf, final)
	case phaseContent:
		return c.processContentToken(buf, final)
	case phaseCData:
		return c.processCDataToken(buf, final)
	case phaseEpilog:
		return c.processEpilogToken(buf, final)
	}
	return 0, false, c.err
}

func (c *parserCtx) processPrologToken(buf []byte, final bool) (int, bool, error) {
	res := c.enc.Scan(xmltok.PhaseProlog, buf, final)
	switch res.Kind {
	case xmltok.KindNone:
		return 0, true, nil
	case xmltok.KindPartial, xmltok.KindPartialChar:
		if final {
			return 0, false, c.fail(ErrUnclosedToken, c.byteIndex)
		}
		return 0, true, nil
	case xmltok.KindInvalid:
		return 0, false, c.fail(ErrInvalidToken, c.byteIndex)
	case xmltok.KindPrologEnd:
		role := c.role.TokenRole(res.Kind, nil)
		if role != xmlrole.RoleInstanceStart {
			return 0, false, c.fail(ErrSyntax, c.byteIndex)
		}
		debug.Printf("prolog -> content at root element")
		c.ph = phaseContent
		return 0, false, nil
	}

	tok := buf[:res.N]
	role := c.role.TokenRole(res.Kind, tok)

	if role == xmlrole.RoleXmlDecl {
		if err := c.handleXmlDecl(tok); err != nil {
			return 0, false, err
		}
	} else if res.Kind == xmltok.KindComment || res.Kind == xmltok.KindPi {
		if err := c.reportMiscMarkup(res.Kind, tok); err != nil {
			return 0, false, err
		}
	} else if err := c.applyPrologRole(role, tok); err != nil {
		return 0, false, err
	}

	c.advancePosition(tok)
	return res.N, false, nil
}

func (c *parserCtx) reportMiscMarkup(kind xmltok.Kind, tok []byte) error {
	if c.handler == nil {
		return nil
	}
	body := c.enc.Transcode(tok)
	if kind == xmltok.KindComment {
		return c.handler.Comment(c, body[4:len(body)-3])
	}
	target, data := splitPI(body)
	return c.handler.ProcessingInstruction(c, string(target), string(data))
}

func splitPI(body []byte) (target, data []byte) {
	inner := body[2 : len(body)-2]
	i := 0
	for i < len(inner) && !isSpaceByte(inner[i]) {
		i++
	}
	target = inner[:i]
	data = inner[i:]
	if len(data) > 0 && isSpaceByte(data[0]) {
		data = data[1:]
	}
	return target, data
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func incompatibleFamily(cur, declared *xmltok.Encoding) bool {
	return cur.MinBytesPerChar() != declared.MinBytesPerChar()
}

// handleXmlDecl parses the version/encoding/standalone pseudo-
// attributes out of an XML declaration token. Expat gives this
// production its own dedicated scan rather than reusing general
// attribute grammar (they are not real attributes: no entity
// expansion, a fixed three-name vocabulary, a fixed order); this
// mirrors that by scanning the already-transcoded text directly
// rather than running it back through ExtractAttributes.
func (c *parserCtx) handleXmlDecl(tok []byte) error {
	s := string(c.enc.Transcode(tok))
	if v, ok := extractPseudoAttr(s, "version"); ok {
		c.version = v
	}
	if e, ok := extractPseudoAttr(s, "encoding"); ok {
		c.encodingDecl = e
		if enc, ok2 := xmltok.ByName(e); ok2 {
			if incompatibleFamily(c.enc, enc) {
				return c.fail(ErrIncorrectEncoding, c.byteIndex)
			}
			c.enc = enc
		} else if se, ok2 := xmltok.NewUnknownEncodingFromLabel(e); ok2 {
			c.enc = se.AsEncoding()
		} else if c.unknownEncoding != nil {
			if enc2, ok3 := c.unknownEncoding(e); ok3 {
				c.enc = enc2
			} else {
				return c.fail(ErrUnknownEncoding, c.byteIndex)
			}
		} else {
			return c.fail(ErrUnknownEncoding, c.byteIndex)
		}
	}
	if sa, ok := extractPseudoAttr(s, "standalone"); ok {
		c.standaloneSet = true
		c.standalone = sa == "yes"
		c.dtd.StandsAlone = c.standalone
	}
	return nil
}

func extractPseudoAttr(s, key string) (string, bool) {
	search := key
	idx := strings.Index(s, search)
	for idx >= 0 {
		j := idx + len(search)
		for j < len(s) && isSpaceByte(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '=' {
			j++
			for j < len(s) && isSpaceByte(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '"' || s[j] == '\'') {
				q := s[j]
				j++
				start := j
				for j < len(s) && s[j] != q {
					j++
				}
				if j < len(s) {
					return s[start:j], true
				}
			}
		}
		next := strings.Index(s[idx+1:], search)
		if next < 0 {
			break
		}
		idx = idx + 1 + next
	}
	return "", false
}

func (c *parserCtx) processContentToken(buf []byte, final bool) (int, bool, error) {
	res := c.enc.Scan(xmltok.PhaseContent, buf, final)
	switch res.Kind {
	case xmltok.KindNone:
		return 0, true, nil
	case xmltok.KindPartial, xmltok.KindPartialChar, xmltok.KindTrailingCR, xmltok.KindTrailingRSqb:
		if final {
			return 0, false, c.fail(ErrUnclosedToken, c.byteIndex)
		}
		return 0, true, nil
	case xmltok.KindInvalid:
		return 0, false, c.fail(ErrInvalidToken, c.byteIndex)
	}

	tok := buf[:res.N]

	switch res.Kind {
	case xmltok.KindDataChars:
		if c.handler != nil {
			if err := c.handler.Characters(c, c.enc.Transcode(tok)); err != nil {
				return 0, false, err
			}
		}
	case xmltok.KindDataNewline:
		if c.handler != nil {
			if err := c.handler.Characters(c, []byte{'\n'}); err != nil {
				return 0, false, err
			}
		}
	case xmltok.KindCharRef:
		r, ok := parseCharRef(c.enc.Transcode(tok))
		if !ok {
			return 0, false, c.fail(ErrBadCharRef, c.byteIndex)
		}
		if c.handler != nil {
			if err := c.handler.Characters(c, appendRune(nil, r)); err != nil {
				return 0, false, err
			}
		}
	case xmltok.KindEntityRef:
		full := c.enc.Transcode(tok)
		name := string(full[1 : len(full)-1])
		if err := c.handleGeneralEntityRef(name); err != nil {
			return 0, false, err
		}
	case xmltok.KindComment, xmltok.KindPi:
		if err := c.reportMiscMarkup(res.Kind, tok); err != nil {
			return 0, false, err
		}
	case xmltok.KindCdataSectionOpen:
		c.ph = phaseCData
		if c.handler != nil {
			if err := c.handler.StartCDATA(c); err != nil {
				return 0, false, err
			}
		}
	case xmltok.KindStartTagNoAtts, xmltok.KindStartTagWithAtts,
		xmltok.KindEmptyElemNoAtts, xmltok.KindEmptyElemWithAtts:
		if err := c.handleStartTag(tok, res.Kind); err != nil {
			return 0, false, err
		}
	case xmltok.KindEndTag:
		if err := c.handleEndTag(tok); err != nil {
			return 0, false, err
		}
	}

	c.advancePosition(tok)
	if c.ph == phaseContent && c.sawRoot && c.tagLevel() == 0 && !c.extEntity {
		c.ph = phaseEpilog
	}
	return res.N, false, nil
}

func (c *parserCtx) processCDataToken(buf []byte, final bool) (int, bool, error) {
	res := c.enc.Scan(xmltok.PhaseCData, buf, final)
	switch res.Kind {
	case xmltok.KindNone:
		return 0, true, nil
	case xmltok.KindPartial, xmltok.KindPartialChar, xmltok.KindTrailingCR:
		if final {
			return 0, false, c.fail(ErrUnclosedCdataSection, c.byteIndex)
		}
		return 0, true, nil
	case xmltok.KindInvalid:
		return 0, false, c.fail(ErrInvalidToken, c.byteIndex)
	}

	tok := buf[:res.N]
	switch res.Kind {
	case xmltok.KindDataChars:
		if c.handler != nil {
			if err := c.handler.Characters(c, c.enc.Transcode(tok)); err != nil {
				return 0, false, err
			}
		}
	case xmltok.KindDataNewline:
		if c.handler != nil {
			if err := c.handler.Characters(c, []byte{'\n'}); err != nil {
				return 0, false, err
			}
		}
	case xmltok.KindCdataSectionClose:
		c.ph = phaseContent
		if c.handler != nil {
			if err := c.handler.EndCDATA(c); err != nil {
				return 0, false, err
			}
		}
	}
	c.advancePosition(tok)
	return res.N, false, nil
}

func (c *parserCtx) processEpilogToken(buf []byte, final bool) (int, bool, error) {
	res := c.enc.Scan(xmltok.PhaseProlog, buf, final)
	switch res.Kind {
	case xmltok.KindNone:
		return 0, true, nil
	case xmltok.KindPartial, xmltok.KindPartialChar:
		if final {
			return 0, false, c.fail(ErrUnclosedToken, c.byteIndex)
		}
		return 0, true, nil
	case xmltok.KindInvalid:
		return 0, false, c.fail(ErrInvalidToken, c.byteIndex)
	case xmltok.KindPrologS:
		tok := buf[:res.N]
		c.advancePosition(tok)
		return res.N, false, nil
	case xmltok.KindComment, xmltok.KindPi:
		tok := buf[:res.N]
		if err := c.reportMiscMarkup(res.Kind, tok); err != nil {
			return 0, false, err
		}
		c.advancePosition(tok)
		return res.N, false, nil
	}
	return 0, false, c.fail(ErrJunkAfterDocElement, c.byteIndex)
}

// resolverProbe is implemented by *sax.Handler so hasEntityResolver can
// tell "a real ResolveEntityHandler is registered" apart from "the
// struct-of-function-fields adapter's no-op default", which it could
// not otherwise do since SAX structurally requires ResolveEntity from
// every handler, sax.Handler included.
type resolverProbe interface {
	HasResolveEntityHandler() bool
}

// hasEntityResolver reports whether c.handler has a real external-
// entity resolver installed. A *sax.Handler answers via the
// resolverProbe it exposes; any other SAX implementation is assumed to
// mean its ResolveEntity method whenever it has one, since a bespoke
// implementation has no no-op default to distinguish from.
func (c *parserCtx) hasEntityResolver() bool {
	if c.handler == nil {
		return false
	}
	if p, ok := c.handler.(resolverProbe); ok {
		return p.HasResolveEntityHandler()
	}
	return true
}

// handleGeneralEntityRef resolves a "&name;" reference met in content.
func (c *parserCtx) handleGeneralEntityRef(name string) error {
	ent, ok := c.dtd.GeneralEntity(name)
	if !ok {
		if err := c.undefinedEntityErr(); err != nil {
			return err
		}
		if c.handler != nil {
			return c.handler.SkippedEntity(c, name)
		}
		return nil
	}
	switch name {
	case "lt", "gt", "amp", "quot", "apos":
		// A predefined entity stands for one literal character; "&" or
		// "<" re-scanned as content would not form a token.
		if c.handler != nil {
			return c.handler.Characters(c, []byte(ent.Value))
		}
		return nil
	}
	if ent.IsUnparsed() {
		return c.fail(ErrBinaryEntityRef, c.byteIndex)
	}
	if !ent.IsInternal() {
		// Give a registered resolver first say (spec §4.7: "invoke the
		// external-entity reference handler, which may return 0 (→
		// ExternalEntityHandling) or create a sub-parser"). A caller
		// wanting to actually expand the entity drives
		// Parser.ExternalEntityParserCreate itself from inside its
		// ResolveEntity implementation and feeds the result back through
		// its own SAX handler; this call only asks permission.
		if c.hasEntityResolver() {
			if err := c.handler.ResolveEntity(c, name, ent.PublicID, "", ent.SystemID); err != nil {
				return c.fail(ErrExternalEntityHandling, c.byteIndex)
			}
			return nil
		}
		if c.handler != nil {
			return c.handler.SkippedEntity(c, name)
		}
		return nil
	}
	if c.entityIsOpen(name) {
		return c.fail(ErrRecursiveEntityRef, c.byteIndex)
	}
	if c.handler != nil {
		if err := c.handler.StartEntity(c, name); err != nil {
			return err
		}
	}
	if err := c.expandInternalEntity(name, ent.Value); err != nil {
		return err
	}
	if c.handler != nil {
		if err := c.handler.EndEntity(c, name); err != nil {
			return err
		}
	}
	return nil
}

// expandInternalEntity drives the content/CDATA dispatch recursively
// over an internal entity's replacement text, sharing the tag stack
// with the document that referenced it so a mismatched end tag inside
// the entity is still caught. The replacement text is always fully
// available (it came from a declaration already parsed in full), so
// every call here passes final=true.
func (c *parserCtx) expandInternalEntity(name, value string) error {
	g := debug.IPrintf("expand entity %q (%d bytes)", name, len(value))
	defer g.IRelease("done expanding %q", name)

	oe := &openEntity{name: name}
	c.openEntities = append(c.openEntities, oe)
	defer func() { c.openEntities = c.openEntities[:len(c.openEntities)-1] }()

	startLevel := c.tagLevel()
	startPhase := c.ph
	buf := []byte(value)
	pos := 0
	for pos < len(buf) {
		var n int
		var more bool
		var err error
		switch c.ph {
		case phaseContent:
			n, more, err = c.processContentToken(buf[pos:], true)
		case phaseCData:
			n, more, err = c.processCDataToken(buf[pos:], true)
		default:
			return c.fail(ErrAsyncEntity, c.byteIndex)
		}
		if err != nil {
			return err
		}
		if more {
			return c.fail(ErrAsyncEntity, c.byteIndex)
		}
		pos += n
	}
	if c.ph != startPhase || c.tagLevel() != startLevel {
		return c.fail(ErrAsyncEntity, c.byteIndex)
	}
	return nil
}

func (c *parserCtx) handleStartTag(tok []byte, kind xmltok.Kind) error {
	isEmpty := kind == xmltok.KindEmptyElemNoAtts || kind == xmltok.KindEmptyElemWithAtts
	hasAtts := kind == xmltok.KindStartTagWithAtts || kind == xmltok.KindEmptyElemWithAtts

	mb := c.enc.MinBytesPerChar()
	inner := tok[mb:] // drop leading '<'
	rawName, attrRegion := c.enc.StartTagName(inner)
	if rawName == nil {
		return c.fail(ErrInvalidToken, c.byteIndex)
	}

	var rawAttrs []xmltok.RawAttribute
	if hasAtts {
		rawAttrs = c.enc.ExtractAttributes(attrRegion)
	}

	nsEnabled := c.nsSep != 0
	elemNameUTF8 := string(c.enc.Transcode(rawName))
	et := c.dtd.ElementType(elemNameUTF8)

	var boundPfx []string
	if nsEnabled {
		for _, a := range rawAttrs {
			aName := string(c.enc.Transcode(a.Name))
			switch {
			case aName == XMLNsPrefix:
				val, err := c.normalizeAttrValue(a, dtd.AttrCDATA)
				if err != nil {
					return err
				}
				p := c.dtd.Prefix("")
				p.Bindings = append(p.Bindings, val)
				boundPfx = append(boundPfx, "")
			case strings.HasPrefix(aName, XMLNsPrefix+":"):
				pfxName := aName[len(XMLNsPrefix)+1:]
				val, err := c.normalizeAttrValue(a, dtd.AttrCDATA)
				if err != nil {
					return err
				}
				p := c.dtd.Prefix(pfxName)
				p.Bindings = append(p.Bindings, val)
				boundPfx = append(boundPfx, pfxName)
			}
		}
	}

	elem := &parsedElement{name: elemNameUTF8}
	if nsEnabled {
		prefix, local := splitQName(elemNameUTF8, ':')
		elem.prefix, elem.local = prefix, local
		if prefix == XMLPrefix {
			elem.uri = XMLNamespace
		} else if prefix != "" || len(c.dtd.Prefix("").Bindings) > 0 {
			elem.uri = c.dtd.Prefix(prefix).URI()
		}
	} else {
		elem.local = elemNameUTF8
	}

	seen := make([][]byte, 0, len(rawAttrs))
	for _, a := range rawAttrs {
		for _, s := range seen {
			if xmltok.NameEqual(s, a.Name) {
				return c.fail(ErrDuplicateAttributeCode, c.byteIndex)
			}
		}
		seen = append(seen, a.Name)

		aNameUTF8 := string(c.enc.Transcode(a.Name))
		if nsEnabled && (aNameUTF8 == XMLNsPrefix || strings.HasPrefix(aNameUTF8, XMLNsPrefix+":")) {
			continue
		}
		attrType := dtd.AttrCDATA
		if d := et.AttrByName(aNameUTF8); d != nil {
			attrType = d.Type
		}
		val, err := c.normalizeAttrValue(a, attrType)
		if err != nil {
			return err
		}
		pa := parsedAttribute{value: val}
		if nsEnabled {
			pa.prefix, pa.local = splitQName(aNameUTF8, ':')
		} else {
			pa.local = aNameUTF8
		}
		elem.attrs = append(elem.attrs, pa)
	}

	for _, d := range et.Attributes {
		if d.Kind != dtd.DefaultFixed && d.Kind != dtd.DefaultValue {
			continue
		}
		present := false
		for _, a := range rawAttrs {
			if string(c.enc.Transcode(a.Name)) == d.Name {
				present = true
				break
			}
		}
		if present {
			continue
		}
		pa := parsedAttribute{value: d.Value}
		if nsEnabled {
			pa.prefix, pa.local = splitQName(d.Name, ':')
		} else {
			pa.local = d.Name
		}
		elem.attrs = append(elem.attrs, pa)
	}

	c.sawRoot = true
	c.pushTag(rawName)
	if top := c.topTag(); top != nil {
		top.boundPfx = boundPfx
	}

	if c.handler != nil {
		if err := c.handler.StartElement(c, elem); err != nil {
			return err
		}
	}

	if isEmpty {
		if c.handler != nil {
			if err := c.handler.EndElement(c, elem); err != nil {
				return err
			}
		}
		c.popTag()
	}
	return nil
}

func (c *parserCtx) handleEndTag(tok []byte) error {
	mb := c.enc.MinBytesPerChar()
	rawName := c.enc.EndTagName(tok[2*mb:])
	if rawName == nil {
		return c.fail(ErrInvalidToken, c.byteIndex)
	}
	top := c.topTag()
	if top == nil || !xmltok.NameEqual(top.rawName, rawName) {
		return c.fail(ErrTagMismatch, c.byteIndex)
	}

	nameUTF8 := string(c.enc.Transcode(rawName))
	elem := &parsedElement{name: nameUTF8}
	if c.nsSep != 0 {
		prefix, local := splitQName(nameUTF8, ':')
		elem.prefix, elem.local = prefix, local
		if prefix == XMLPrefix {
			elem.uri = XMLNamespace
		} else {
			elem.uri = c.dtd.Prefix(prefix).URI()
		}
	} else {
		elem.local = nameUTF8
	}

	if c.handler != nil {
		if err := c.handler.EndElement(c, elem); err != nil {
			return err
		}
	}
	c.popTag()
	return nil
}
