package expat

import (
	"strings"

	"github.com/libexpat/goexpat/internal/dtd"
	"github.com/libexpat/goexpat/internal/xmlrole"
)

// dtdBuilder accumulates the fields of whichever declaration the role
// engine is currently in the middle of. Exactly one declaration is
// ever in flight at a time (the prolog grammar does not nest ENTITY
// inside ATTLIST, etc.), so one flat struct is enough; each Role case
// below either fills in a field or, once it has everything a
// declaration needs, finalizes it into c.dtd and fires the matching
// SAX callback.
type dtdBuilder struct {
	doctypeName     string
	doctypeSystemID string
	doctypePublicID string
	doctypeStarted  bool

	entName     string
	entIsParam  bool
	entSystemID string
	entPublicID string

	notName     string
	notPublicID string

	attlistElem string
	attrName    string
	attrType    dtd.AttributeType
	attrTypeStr string
}

func normalizeNewlines(s string) string {
	if !strings.ContainsAny(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// transcodeLiteral transcodes a quoted prolog Literal token to UTF-8
// and strips the surrounding quotes, which (being ASCII) are always
// exactly one byte wide in the transcoded result regardless of the
// source encoding's unit width.
func transcodeLiteral(c *parserCtx, raw []byte) string {
	full := c.enc.Transcode(raw)
	if len(full) >= 2 {
		full = full[1 : len(full)-1]
	}
	return string(full)
}

// ensureDTDStarted fires StartDTD exactly once, the first time a
// subset declaration needs it (spec's SAX ordering requires StartDTD
// before any declaration callback), or at RoleDoctypeClose for a
// DOCTYPE with no internal subset at all.
func (c *parserCtx) ensureDTDStarted() error {
	if c.db.doctypeStarted || c.db.doctypeName == "" {
		return nil
	}
	c.db.doctypeStarted = true
	if c.handler == nil {
		return nil
	}
	return c.handler.StartDTD(c, c.db.doctypeName, c.db.doctypePublicID, c.db.doctypeSystemID)
}

// applyPrologRole acts on one role the prolog role engine assigned to
// a token, updating DTD state and firing SAX callbacks as soon as a
// declaration has everything it needs (spec §4.5/§4.6).
func (c *parserCtx) applyPrologRole(role xmlrole.Role, raw []byte) error {
	switch role {
	case xmlrole.RoleSkip, xmlrole.RoleNone:
		return nil

	case xmlrole.RoleIgnoreSect:
		// Conditional IGNORE sections: content inside is skipped by the
		// tokenizer's generic prolog scanning (internal subset grammar
		// still applies the balanced-']'/'>' rules), so nothing further
		// needs recording here.
		return nil

	case xmlrole.RoleDoctypeName:
		c.db.doctypeName = string(c.enc.Transcode(raw))
		return nil
	case xmlrole.RoleDoctypeSystemId:
		c.db.doctypeSystemID = transcodeLiteral(c, raw)
		c.dtd.HasExternalSubset = true
		return nil
	case xmlrole.RoleDoctypePublicId:
		c.db.doctypePublicID = transcodeLiteral(c, raw)
		return nil
	case xmlrole.RoleDoctypeClose:
		if err := c.ensureDTDStarted(); err != nil {
			return err
		}
		if c.handler != nil {
			if err := c.handler.EndDTD(c); err != nil {
				return err
			}
		}
		return nil

	case xmlrole.RoleGeneralEntityName, xmlrole.RoleParamEntityName:
		if err := c.ensureDTDStarted(); err != nil {
			return err
		}
		c.db.entName = string(c.enc.Transcode(raw))
		c.db.entIsParam = role == xmlrole.RoleParamEntityName
		c.db.entSystemID = ""
		c.db.entPublicID = ""
		return nil

	case xmlrole.RoleEntityValue:
		value := normalizeNewlines(transcodeLiteral(c, raw))
		ent := dtd.NewInternalEntity(c.db.entName, value)
		ent.IsParam = c.db.entIsParam
		if c.db.entIsParam {
			c.dtd.DeclareParamEntity(ent)
			return nil
		}
		_, already := c.dtd.GeneralEntity(ent.Name)
		c.dtd.DeclareGeneralEntity(ent)
		if already || c.handler == nil {
			return nil
		}
		return c.handler.InternalEntityDecl(c, ent.Name, ent.Value)

	case xmlrole.RoleEntitySystemId:
		c.db.entSystemID = transcodeLiteral(c, raw)
		return nil
	case xmlrole.RoleEntityPublicId:
		c.db.entPublicID = transcodeLiteral(c, raw)
		return nil

	case xmlrole.RoleEntityNotationName:
		notation := string(c.enc.Transcode(raw))
		ent := dtd.NewExternalUnparsedEntity(c.db.entName, c.db.entSystemID, c.db.entPublicID, notation)
		_, already := c.dtd.GeneralEntity(ent.Name)
		c.dtd.DeclareGeneralEntity(ent)
		if already || c.handler == nil {
			return nil
		}
		return c.handler.UnparsedEntityDecl(c, ent.Name, ent.PublicID, ent.SystemID, ent.NotationName)

	case xmlrole.RoleEntityDeclClose:
		// External ID seen, no NDATA followed: external parsed general
		// entity, or a parameter entity (SAX does not expose parameter
		// entities as document content; only the DTD gets updated).
		if c.db.entIsParam {
			ent := dtd.NewExternalParsedEntity(c.db.entName, c.db.entSystemID, c.db.entPublicID)
			ent.IsParam = true
			c.dtd.DeclareParamEntity(ent)
			c.dtd.HasExternalSubset = true
			return nil
		}
		ent := dtd.NewExternalParsedEntity(c.db.entName, c.db.entSystemID, c.db.entPublicID)
		_, already := c.dtd.GeneralEntity(ent.Name)
		c.dtd.DeclareGeneralEntity(ent)
		if already || c.handler == nil {
			return nil
		}
		return c.handler.ExternalEntityDecl(c, ent.Name, ent.PublicID, ent.SystemID)

	case xmlrole.RoleNotationName:
		if err := c.ensureDTDStarted(); err != nil {
			return err
		}
		c.db.notName = string(c.enc.Transcode(raw))
		c.db.notPublicID = ""
		return nil
	case xmlrole.RoleNotationPublicId:
		c.db.notPublicID = transcodeLiteral(c, raw)
		return nil
	case xmlrole.RoleNotationSystemId:
		sysID := transcodeLiteral(c, raw)
		return c.finishNotation(sysID)
	case xmlrole.RoleNotationDeclClose:
		// PUBLIC id only, no SYSTEM id.
		return c.finishNotation("")

	case xmlrole.RoleAttlistElementName:
		if err := c.ensureDTDStarted(); err != nil {
			return err
		}
		c.db.attlistElem = string(c.enc.Transcode(raw))
		c.dtd.ElementType(c.db.attlistElem)
		return nil
	case xmlrole.RoleAttributeName:
		c.db.attrName = string(c.enc.Transcode(raw))
		return nil
	case xmlrole.RoleAttributeTypeCdata:
		c.db.attrType = dtd.AttrCDATA
		c.db.attrTypeStr = "CDATA"
		return nil
	case xmlrole.RoleAttributeTypeOther:
		c.db.attrType = dtd.AttrOther
		switch {
		case len(raw) == 1 && raw[0] == '(':
			c.db.attrTypeStr = "ENUMERATION"
		default:
			c.db.attrTypeStr = string(c.enc.Transcode(raw))
		}
		return nil
	case xmlrole.RoleRequiredAttributeValue:
		return c.finishAttlist(dtd.DefaultRequired, "")
	case xmlrole.RoleImpliedAttributeValue:
		return c.finishAttlist(dtd.DefaultImplied, "")
	case xmlrole.RoleFixedAttributeValue:
		return c.finishAttlist(dtd.DefaultFixed, transcodeLiteral(c, raw))
	case xmlrole.RoleDefaultAttributeValue:
		return c.finishAttlist(dtd.DefaultValue, transcodeLiteral(c, raw))

	case xmlrole.RoleElementName:
		if err := c.ensureDTDStarted(); err != nil {
			return err
		}
		name := string(c.enc.Transcode(raw))
		c.dtd.ElementType(name)
		if c.handler == nil {
			return nil
		}
		return c.handler.ElementDecl(c, name, 0, nil)

	case xmlrole.RoleGroupOpen, xmlrole.RoleGroupClose, xmlrole.RoleGroupSequence, xmlrole.RoleGroupChoice:
		return nil

	case xmlrole.RoleParamEntityRef, xmlrole.RoleInnerParamEntityRef:
		c.dtd.HasParamEntityRefs = true
		c.hasParamEntityRefs = true
		return nil

	case xmlrole.RoleError:
		return c.fail(ErrSyntax, c.byteIndex)
	}
	return nil
}

func (c *parserCtx) finishNotation(systemID string) error {
	n := &dtd.Notation{Name: c.db.notName, SystemID: systemID, PublicID: c.db.notPublicID}
	_, already := c.dtd.Notation(n.Name)
	c.dtd.DeclareNotation(n)
	if already || c.handler == nil {
		return nil
	}
	return c.handler.NotationDecl(c, n.Name, n.PublicID, n.SystemID)
}

func (c *parserCtx) finishAttlist(kind dtd.DefaultKind, value string) error {
	et := c.dtd.ElementType(c.db.attlistElem)
	if et.AttrByName(c.db.attrName) == nil {
		et.Attributes = append(et.Attributes, &dtd.DefaultAttribute{
			Name:  c.db.attrName,
			Type:  c.db.attrType,
			Kind:  kind,
			Value: value,
		})
	}
	if c.handler == nil {
		return nil
	}
	mode := ""
	switch kind {
	case dtd.DefaultRequired:
		mode = "#REQUIRED"
	case dtd.DefaultImplied:
		mode = "#IMPLIED"
	case dtd.DefaultFixed:
		mode = "#FIXED"
	}
	return c.handler.AttributeDecl(c, c.db.attlistElem, c.db.attrName, c.db.attrTypeStr, mode, value)
}
