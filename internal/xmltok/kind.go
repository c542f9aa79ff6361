// Package xmltok implements the tokenizer: scanning raw byte chunks
// into XML tokens without ever materializing a syntax tree, in a
// manner that is re-entrant at arbitrary chunk boundaries.
package xmltok

// Kind tags the result of a single Scan call.
type Kind int

const (
	KindNone Kind = iota
	KindPartial
	KindPartialChar
	KindInvalid
	KindBom
	KindPrologS
	KindComment
	KindPi
	KindLiteral
	KindPrologChars
	KindStartTagNoAtts
	KindStartTagWithAtts
	KindEmptyElemNoAtts
	KindEmptyElemWithAtts
	KindEndTag
	KindDataChars
	KindDataNewline
	KindTrailingCR
	KindTrailingRSqb
	KindCdataSectionOpen
	KindCdataSectionClose
	KindCharRef
	KindEntityRef
	KindParamEntityRef
	KindXmlDecl
	KindAttributeValueS
	KindDeclOpen   // "<!NAME" markup declaration opener (DOCTYPE/ENTITY/ELEMENT/ATTLIST/NOTATION)
	KindName       // bare Name token, prolog phase only
	KindPercentRef // "%name;" used in the internal subset outside attribute context (ParamEntityRef is the same concept; kept distinct only for clarity at the call site)
	KindPunct      // a single significant punctuation byte in the prolog: '(' ')' '|' ',' '*' '+' '[' ']' '>'
	KindCondOpen   // "<![" conditional-section opener, prolog phase only
	KindPrologEnd  // signals "not prolog-shaped; re-dispatch this offset to the content tokenizer" (internal handoff, never surfaced to callers)
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindPartial:
		return "Partial"
	case KindPartialChar:
		return "PartialChar"
	case KindInvalid:
		return "Invalid"
	case KindBom:
		return "Bom"
	case KindPrologS:
		return "PrologS"
	case KindComment:
		return "Comment"
	case KindPi:
		return "Pi"
	case KindLiteral:
		return "Literal"
	case KindPrologChars:
		return "PrologChars"
	case KindStartTagNoAtts:
		return "StartTagNoAtts"
	case KindStartTagWithAtts:
		return "StartTagWithAtts"
	case KindEmptyElemNoAtts:
		return "EmptyElemNoAtts"
	case KindEmptyElemWithAtts:
		return "EmptyElemWithAtts"
	case KindEndTag:
		return "EndTag"
	case KindDataChars:
		return "DataChars"
	case KindDataNewline:
		return "DataNewline"
	case KindTrailingCR:
		return "TrailingCR"
	case KindTrailingRSqb:
		return "TrailingRSqb"
	case KindCdataSectionOpen:
		return "CdataSectionOpen"
	case KindCdataSectionClose:
		return "CdataSectionClose"
	case KindCharRef:
		return "CharRef"
	case KindEntityRef:
		return "EntityRef"
	case KindParamEntityRef:
		return "ParamEntityRef"
	case KindXmlDecl:
		return "XmlDecl"
	case KindAttributeValueS:
		return "AttributeValueS"
	case KindDeclOpen:
		return "DeclOpen"
	case KindName:
		return "Name"
	case KindPercentRef:
		return "PercentRef"
	default:
		return "Unknown"
	}
}

// Phase selects the grammar the scanner applies to the next token.
type Phase int

const (
	PhaseProlog Phase = iota
	PhaseContent
	PhaseCData
	PhaseAttValue
	PhaseEntityValue
	PhaseIgnoreSect
)

// Result is returned by a single Scan call.
type Result struct {
	Kind Kind
	N    int // bytes of buf consumed; meaningful only for non-Partial*, non-Invalid kinds (Invalid's offending byte is at buf[N])
}
