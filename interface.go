// Package expat implements a streaming, push-style, non-validating
// XML 1.0 parser: callers register SAX-style handlers and feed byte
// chunks through Parser.Parse/ParseBuffer; the parser never builds an
// in-memory document tree of its own (that is left to whatever
// handler the caller installs, per the sax package's handler
// interfaces).
package expat

const (
	XMLNamespace = "http://www.w3.org/XML/1998/namespace"
	XMLNsPrefix  = "xmlns"
	XMLPrefix    = "xml"
)

// ParamEntityParsing names the parameter-entity parsing modes (spec
// §4.7 "External subset / parameter entities"). The processor reads
// neither parameter entities nor an external subset in any mode; the
// value is stored and copied to sub-parsers but has no other effect.
type ParamEntityParsing int

const (
	ParamEntityParsingNever ParamEntityParsing = iota
	ParamEntityParsingUnlessStandalone
	ParamEntityParsingAlways
)
