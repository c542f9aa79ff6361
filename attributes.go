package expat

import (
	"strings"

	"github.com/libexpat/goexpat/internal/dtd"
	"github.com/libexpat/goexpat/internal/pool"
	"github.com/libexpat/goexpat/internal/xmltok"
)

// normalizeAttrValue applies spec §4.2's attribute-value
// normalization: CR/LF/TAB fold to a single space, references expand,
// and (for any declared type other than CDATA) the result is further
// whitespace-collapsed. raw.Normalized is ExtractAttributes's fast
// path for the overwhelmingly common case where none of that is
// needed.
func (c *parserCtx) normalizeAttrValue(raw xmltok.RawAttribute, attrType dtd.AttributeType) (string, error) {
	utf8Val := c.enc.Transcode(raw.Value)
	if raw.Normalized && attrType == dtd.AttrCDATA {
		return string(utf8Val), nil
	}
	c.attrPool.Clear()
	if err := c.expandAttrText(c.attrPool, utf8Val); err != nil {
		return "", err
	}
	out := c.attrPool.FinishString()
	if attrType != dtd.AttrCDATA {
		out = collapseWhitespace(out)
	}
	return out, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// expandAttrText walks already-UTF-8 attribute text, folding literal
// CR/LF/TAB to a space and expanding character and general-entity
// references, appending the result into dst (spec's string-pool data
// model: dst is the in-progress item being assembled). General entity
// replacement text is expanded recursively into a pool of its own,
// using the same open-entity cycle check as content; a shared pool
// would not survive reentrancy since it tracks only one in-progress
// item at a time.
func (c *parserCtx) expandAttrText(dst *pool.Pool, s []byte) error {
	i := 0
	for i < len(s) {
		b := s[i]
		switch {
		case b == '\r' || b == '\n' || b == '\t':
			dst.AppendByte(' ')
			i++
		case b == '&':
			j := i + 1
			if j < len(s) && s[j] == '#' {
				k := j + 1
				for k < len(s) && s[k] != ';' {
					k++
				}
				if k >= len(s) {
					return c.fail(ErrBadCharRef, c.byteIndex)
				}
				r, ok := parseCharRef(s[i : k+1])
				if !ok {
					return c.fail(ErrBadCharRef, c.byteIndex)
				}
				dst.AppendRune(r)
				i = k + 1
				continue
			}
			k := j
			for k < len(s) && s[k] != ';' {
				k++
			}
			if k >= len(s) {
				return c.fail(ErrInvalidToken, c.byteIndex)
			}
			expanded, err := c.expandNamedRefForAttr(string(s[j:k]))
			if err != nil {
				return err
			}
			dst.Append(expanded)
			i = k + 1
		default:
			dst.AppendByte(b)
			i++
		}
	}
	return nil
}

func (c *parserCtx) expandNamedRefForAttr(name string) ([]byte, error) {
	ent, ok := c.dtd.GeneralEntity(name)
	if !ok {
		if err := c.undefinedEntityErr(); err != nil {
			return nil, err
		}
		if c.handler != nil {
			if err := c.handler.SkippedEntity(c, name); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
	switch name {
	case "lt", "gt", "amp", "quot", "apos":
		return []byte(ent.Value), nil
	}
	if ent.IsUnparsed() {
		return nil, c.fail(ErrBinaryEntityRef, c.byteIndex)
	}
	if !ent.IsInternal() {
		return nil, c.fail(ErrAttributeExternalEntityRef, c.byteIndex)
	}
	if c.entityIsOpen(name) {
		return nil, c.fail(ErrRecursiveEntityRef, c.byteIndex)
	}
	c.openEntities = append(c.openEntities, &openEntity{name: name})
	defer func() { c.openEntities = c.openEntities[:len(c.openEntities)-1] }()
	inner := pool.New()
	if err := c.expandAttrText(inner, []byte(ent.Value)); err != nil {
		return nil, err
	}
	return inner.Finish(), nil
}

// splitQName splits a possibly-prefixed name at nsSep (already
// transcoded to UTF-8) into prefix and local parts.
func splitQName(name string, nsSep byte) (prefix, local string) {
	if nsSep == 0 {
		return "", name
	}
	if i := strings.IndexByte(name, nsSep); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
