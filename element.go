package expat

import "github.com/libexpat/goexpat/sax"

// parsedElement is the concrete sax.ParsedElement the processor hands
// to StartElement/EndElement. Unlike a libxml2-flavored Node tree, it
// is a disposable value: it describes one event and is not retained
// by the parser past the callback returning.
type parsedElement struct {
	prefix string
	uri    string
	local  string
	name   string
	attrs  []parsedAttribute
}

func (e *parsedElement) Prefix() string    { return e.prefix }
func (e *parsedElement) URI() string       { return e.uri }
func (e *parsedElement) LocalName() string { return e.local }
func (e *parsedElement) Name() string      { return e.name }
func (e *parsedElement) Attributes() []sax.ParsedAttribute {
	out := make([]sax.ParsedAttribute, len(e.attrs))
	for i := range e.attrs {
		out[i] = &e.attrs[i]
	}
	return out
}

type parsedAttribute struct {
	prefix string
	local  string
	value  string
}

func (a *parsedAttribute) Prefix() string    { return a.prefix }
func (a *parsedAttribute) LocalName() string { return a.local }
func (a *parsedAttribute) Value() string     { return a.value }
