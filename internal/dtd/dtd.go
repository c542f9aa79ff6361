// Package dtd holds the DTD state a document accumulates as its
// prolog is parsed: entities, notations, element types, attribute
// defaults and namespace prefix bindings (spec §3, Component G). It
// is built purely from the roles internal/xmlrole assigns to prolog
// tokens; it has no notion of tokenizing or role assignment itself.
package dtd

import "github.com/libexpat/goexpat/internal/nametable"

// Entity is one general or parameter entity declaration.
type Entity struct {
	Name         string
	Value        string // internal entities only; replacement text already normalized for CR/LF, not yet for char refs or nested entity refs
	IsParam      bool
	SystemID     string
	PublicID     string
	NotationName string // set for unparsed (NDATA) general entities
	Is           entityKind
	Open         bool // not set by the processor, which tracks entities under expansion on its own stack
	base         string
}

type entityKind int

const (
	entityInternal entityKind = iota
	entityExternalParsed
	entityExternalUnparsed
)

func (e *Entity) IsInternal() bool { return e.Is == entityInternal }
func (e *Entity) IsUnparsed() bool { return e.Is == entityExternalUnparsed }

// NewInternalEntity builds a general or parameter entity whose
// replacement text is the literal value given in its declaration.
func NewInternalEntity(name, value string) *Entity {
	return &Entity{Name: name, Value: value, Is: entityInternal}
}

// NewExternalParsedEntity builds a general or parameter entity whose
// replacement text lives in an external resource identified by
// systemID/publicID.
func NewExternalParsedEntity(name, systemID, publicID string) *Entity {
	return &Entity{Name: name, SystemID: systemID, PublicID: publicID, Is: entityExternalParsed}
}

// NewExternalUnparsedEntity builds an NDATA general entity: not XML
// at all, identified only so a SAX consumer can resolve it via its
// notation.
func NewExternalUnparsedEntity(name, systemID, publicID, notation string) *Entity {
	return &Entity{Name: name, SystemID: systemID, PublicID: publicID, NotationName: notation, Is: entityExternalUnparsed}
}

// AttributeType classifies a declared attribute for normalization
// purposes (spec's "maybeTokenized" flag): a specified CDATA value is
// never further whitespace-collapsed during attribute-value
// normalization, a value of any other declared type is.
type AttributeType int

const (
	AttrCDATA AttributeType = iota
	AttrOther
)

// DefaultKind says how an AttlistDecl's default applies.
type DefaultKind int

const (
	DefaultNone     DefaultKind = iota // no #ATTLIST entry naming this attribute: parser-supplied default only if another one was declared elsewhere
	DefaultRequired                    // #REQUIRED
	DefaultImplied                     // #IMPLIED
	DefaultFixed                       // #FIXED "value"
	DefaultValue                       // plain "value"
)

// DefaultAttribute is one <!ATTLIST el attr ...> entry.
type DefaultAttribute struct {
	Name  string
	Type  AttributeType
	Kind  DefaultKind
	Value string // meaningful when Kind is DefaultFixed or DefaultValue
}

// ElementType is one declared (or merely referenced) element name and
// the attribute defaults declared for it across possibly several
// ATTLIST declarations.
type ElementType struct {
	Name       string
	Attributes []*DefaultAttribute
	Prefix     *Prefix
}

// AttrByName returns the attribute default for name, or nil.
func (et *ElementType) AttrByName(name string) *DefaultAttribute {
	for _, a := range et.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Notation is a <!NOTATION name ...> declaration.
type Notation struct {
	Name     string
	SystemID string
	PublicID string
}

// Prefix is a namespace prefix as bound by an xmlns[:prefix]
// attribute (spec's optional namespace-processing feature, Component
// H). Binding is a stack so nested elements can shadow an enclosing
// binding and pop cleanly on EndElement.
type Prefix struct {
	Name     string
	Bindings []string
}

// URI returns the currently active binding for prefix, or "".
func (p *Prefix) URI() string {
	if len(p.Bindings) == 0 {
		return ""
	}
	return p.Bindings[len(p.Bindings)-1]
}

// DTD is the full set of declarations accumulated for one document
// (or, for a parsed external entity, a Clone of its parent's DTD, so
// the declarations visible to it are copied rather than shared).
type DTD struct {
	generalEntities *nametable.Table
	paramEntities   *nametable.Table
	elementTypes    *nametable.Table
	notations       *nametable.Table
	prefixes        *nametable.Table

	StandsAlone bool
	HasParamEntityRefs bool
	HasExternalSubset  bool
}

// New returns a DTD pre-seeded with the five predefined entities
// every XML 1.0 document has regardless of any <!DOCTYPE>.
func New() *DTD {
	d := &DTD{
		generalEntities: nametable.New(),
		paramEntities:   nametable.New(),
		elementTypes:    nametable.New(),
		notations:       nametable.New(),
		prefixes:        nametable.New(),
	}
	for _, pe := range []struct{ name, value string }{
		{"lt", "<"}, {"gt", ">"}, {"amp", "&"}, {"quot", "\""}, {"apos", "'"},
	} {
		d.generalEntities.Set(pe.name, &Entity{Name: pe.name, Value: pe.value, Is: entityInternal})
	}
	return d
}

// GeneralEntity looks up a declared general entity by name.
func (d *DTD) GeneralEntity(name string) (*Entity, bool) {
	v, ok := d.generalEntities.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Entity), true
}

// DeclareGeneralEntity records a general entity declaration. Per
// XML 1.0, only the first declaration of a given name is binding;
// later ones are ignored rather than treated as errors.
func (d *DTD) DeclareGeneralEntity(e *Entity) {
	if _, exists := d.generalEntities.Get(e.Name); exists {
		return
	}
	d.generalEntities.Set(e.Name, e)
}

// ParamEntity looks up a declared parameter entity by name.
func (d *DTD) ParamEntity(name string) (*Entity, bool) {
	v, ok := d.paramEntities.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Entity), true
}

// DeclareParamEntity records a parameter entity declaration, subject
// to the same first-wins rule as general entities.
func (d *DTD) DeclareParamEntity(e *Entity) {
	if _, exists := d.paramEntities.Get(e.Name); exists {
		return
	}
	d.paramEntities.Set(e.Name, e)
}

// ElementType returns the element-type record for name, creating an
// empty one on first reference (from either an ATTLIST declaration
// or the first start-tag using the name).
func (d *DTD) ElementType(name string) *ElementType {
	v, _ := d.elementTypes.Lookup(name, func() interface{} {
		return &ElementType{Name: name}
	})
	return v.(*ElementType)
}

// DeclareNotation records a notation declaration.
func (d *DTD) DeclareNotation(n *Notation) {
	if _, exists := d.notations.Get(n.Name); exists {
		return
	}
	d.notations.Set(n.Name, n)
}

// Notation looks up a declared notation by name.
func (d *DTD) Notation(name string) (*Notation, bool) {
	v, ok := d.notations.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Notation), true
}

// Prefix returns the binding stack for a namespace prefix ("" for the
// default namespace), creating an empty one on first reference.
func (d *DTD) Prefix(name string) *Prefix {
	v, _ := d.prefixes.Lookup(name, func() interface{} {
		return &Prefix{Name: name}
	})
	return v.(*Prefix)
}

// Clone makes an independent copy of d for use by a sub-parser
// created over an external entity (spec's externalEntityParserCreate):
// the sub-parser must see every declaration visible at the point the
// reference occurred, but must not let its own subsequent declarations
// (illegal though a second DOCTYPE would be, a parameter-entity
// replacement text can itself contain declarations) leak back into the
// parent once the sub-parse returns.
func (d *DTD) Clone() *DTD {
	c := New()
	cloneInto := func(src, dst *nametable.Table) {
		src.Each(func(name string, value interface{}) {
			switch v := value.(type) {
			case *Entity:
				cp := *v
				dst.Set(name, &cp)
			case *ElementType:
				cp := *v
				cp.Attributes = append([]*DefaultAttribute(nil), v.Attributes...)
				dst.Set(name, &cp)
			case *Notation:
				cp := *v
				dst.Set(name, &cp)
			case *Prefix:
				cp := *v
				cp.Bindings = append([]string(nil), v.Bindings...)
				dst.Set(name, &cp)
			}
		})
	}
	// c already carries its own predefined entities; overwrite with d's
	// copies so any (illegal but tolerated) redeclaration is preserved.
	cloneInto(d.generalEntities, c.generalEntities)
	cloneInto(d.paramEntities, c.paramEntities)
	cloneInto(d.elementTypes, c.elementTypes)
	cloneInto(d.notations, c.notations)
	cloneInto(d.prefixes, c.prefixes)
	c.StandsAlone = d.StandsAlone
	c.HasParamEntityRefs = d.HasParamEntityRefs
	c.HasExternalSubset = d.HasExternalSubset
	return c
}
