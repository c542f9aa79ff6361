package expat

import (
	"github.com/libexpat/goexpat/internal/dtd"
	"github.com/libexpat/goexpat/internal/pool"
	"github.com/libexpat/goexpat/internal/xmlrole"
	"github.com/libexpat/goexpat/internal/xmltok"
)

// phase is the processor's state pointer (spec §4.7).
type phase int

const (
	phasePrologInit phase = iota
	phaseProlog
	phaseContent
	phaseCData
	phaseEpilog
	phaseError
)

// tagEntry is one open element on the tag stack.
type tagEntry struct {
	rawName   []byte // copy of the start tag's raw (source-encoding) name, for end-tag matching
	boundPfx  []string // prefixes whose binding stack got a push at this level, to pop on close
}

// openEntity tracks one level of general-entity expansion so the
// processor can detect the recursive-reference cycle (spec's entity
// "open" flag and invariant 6).
type openEntity struct {
	name string
	rest []byte // unprocessed replacement text, scanned with an internal-encoding sub-tokenizer
}

// parserCtx is the parser's full mutable state. It is also the value
// passed as sax.Context to every handler, so a handler can type-assert
// it to reach position information via sax.DocumentLocator.
type parserCtx struct {
	handler SAX

	enc     *xmltok.Encoding
	ph      phase
	role    xmlrole.State
	dtd     *dtd.DTD
	db      dtdBuilder // transient state while parsing one declaration

	// pending holds bytes carried over from a previous Parse call
	// because they ended mid-token (spec §4.7 "Buffer management").
	// Go's slice growth plays the role of the original's getBuffer
	// reallocation dance; see DESIGN.md.
	pending []byte

	tags []tagEntry
	openEntities []*openEntity

	// attrPool is scratch space reused across every attribute-value
	// normalization (spec's string-pool data model); cleared at the
	// start of each normalizeAttrValue call.
	attrPool *pool.Pool

	nsSep      byte // 0 disables namespace processing
	nsEnabled  bool

	version    string
	encodingDecl string
	standalone bool
	standaloneSet bool

	paramEntityParsing ParamEntityParsing
	hasParamEntityRefs bool

	line      int
	col       int
	byteIndex int64

	err *ParseError

	sawRoot          bool // true once the root element's start tag has been seen
	detectedEncoding bool // true once auto-detection has run for this input stream
	startDocFired    bool

	extEntity bool // true for a sub-parser created over a parsed general entity

	unknownEncoding func(label string) (*xmltok.Encoding, bool)
}

func newParserCtx() *parserCtx {
	c := &parserCtx{
		enc:      xmltok.UTF8,
		ph:       phasePrologInit,
		dtd:      dtd.New(),
		attrPool: pool.New(),
		line:     1,
		standalone: false,
	}
	c.role.Init()
	return c
}

// fail latches the first error encountered; subsequent calls to
// advance for this parser always see phaseError and the same code
// (spec §7: "the error code is latched").
func (c *parserCtx) fail(code ErrorCode, at int64) error {
	if c.err == nil {
		c.err = &ParseError{Code: code, Line: c.line, Column: c.col, ByteIndex: at}
		c.ph = phaseError
	}
	return c.err
}

// advancePosition updates line/column/byteIndex for n bytes of raw
// source just consumed, per spec §6 "Position semantics".
func (c *parserCtx) advancePosition(raw []byte) {
	i := 0
	for i < len(raw) {
		b := raw[i]
		switch b {
		case '\n':
			c.line++
			c.col = 0
			i++
		case '\r':
			c.line++
			c.col = 0
			i++
			if i < len(raw) && raw[i] == '\n' {
				i++
			}
		default:
			c.col++
			i++
		}
	}
	c.byteIndex += int64(len(raw))
}

func (c *parserCtx) pushTag(rawName []byte) {
	cp := append([]byte(nil), rawName...)
	c.tags = append(c.tags, tagEntry{rawName: cp})
}

func (c *parserCtx) topTag() *tagEntry {
	if len(c.tags) == 0 {
		return nil
	}
	return &c.tags[len(c.tags)-1]
}

func (c *parserCtx) popTag() {
	top := c.topTag()
	if top != nil {
		for _, p := range top.boundPfx {
			pfx := c.dtd.Prefix(p)
			if len(pfx.Bindings) > 0 {
				pfx.Bindings = pfx.Bindings[:len(pfx.Bindings)-1]
			}
		}
	}
	c.tags = c.tags[:len(c.tags)-1]
}

func (c *parserCtx) tagLevel() int { return len(c.tags) }

func (c *parserCtx) entityIsOpen(name string) bool {
	for _, e := range c.openEntities {
		if e.name == name {
			return true
		}
	}
	return false
}

// dtdComplete reports whether every declaration that could define an
// entity has actually been read: no external subset and no parameter
// entity references were seen that might carry more declarations
// (spec §4.7). An undefined-entity reference is only a well-
// formedness error when the DTD is complete or the document declares
// itself standalone; otherwise the entity might be declared in a
// subset this processor never read, and the reference must be
// delivered to the default handler instead.
func (c *parserCtx) dtdComplete() bool {
	return !c.dtd.HasExternalSubset && !c.dtd.HasParamEntityRefs
}

// undefinedEntityErr decides what happens when a general entity
// reference names an entity this processor never declared (spec
// §4.7): "Unknown → UndefinedEntity iff DTD is complete or document
// is standalone, else delivered to default handler". It returns nil
// when the caller should instead deliver the reference to its
// default/skipped-entity handler.
//
// When the document declares itself standalone="yes" yet depends on
// declarations this processor never read (an external subset, or a
// parameter entity reference into one), that contradiction is itself
// the condition the not-standalone handler exists to police: the
// handler gets first say, and a refusal is reported as
// ErrNotStandalone rather than the plain ErrUndefinedEntity that
// follows if it allows the document through.
func (c *parserCtx) undefinedEntityErr() error {
	if c.dtdComplete() || c.standalone {
		if c.standalone && !c.dtdComplete() && c.handler != nil {
			if err := c.handler.NotStandalone(c); err != nil {
				return c.fail(ErrNotStandalone, c.byteIndex)
			}
		}
		return c.fail(ErrUndefinedEntity, c.byteIndex)
	}
	return nil
}
