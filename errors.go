package expat

import "errors"

// Sentinel errors for programmer-facing conditions: invalid API
// usage, not document well-formedness. Well-formedness violations are
// reported as *ParseError instead.
var (
	ErrNilNode            = errors.New("nil node")
	ErrInvalidOperation   = errors.New("operation cannot be performed")
	ErrInvalidParserCtx   = errors.New("invalid parser context")
	ErrInvalidDocument    = errors.New("invalid document")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrDuplicateAttribute = errors.New("duplicate attribute")
	ErrAlreadyFinished    = errors.New("parser already reached end of input or error state")
)

// ErrorCode is the closed set of well-formedness/processing error
// codes a ParseError can carry.
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrNoMemory
	ErrSyntax
	ErrNoElements
	ErrInvalidToken
	ErrUnclosedToken
	ErrPartialChar
	ErrTagMismatch
	ErrDuplicateAttributeCode
	ErrJunkAfterDocElement
	ErrParamEntityRef
	ErrUndefinedEntity
	ErrRecursiveEntityRef
	ErrAsyncEntity
	ErrBadCharRef
	ErrBinaryEntityRef
	ErrAttributeExternalEntityRef
	ErrMisplacedXmlPi
	ErrUnknownEncoding
	ErrIncorrectEncoding
	ErrUnclosedCdataSection
	ErrExternalEntityHandling
	ErrNotStandalone
)

var errorStrings = [...]string{
	ErrNone:                       "no error",
	ErrNoMemory:                   "out of memory",
	ErrSyntax:                     "syntax error",
	ErrNoElements:                 "no element found",
	ErrInvalidToken:               "not well-formed (invalid token)",
	ErrUnclosedToken:              "unclosed token",
	ErrPartialChar:                "partial character at end of input",
	ErrTagMismatch:                "mismatched tag",
	ErrDuplicateAttributeCode:     "duplicate attribute",
	ErrJunkAfterDocElement:        "junk after document element",
	ErrParamEntityRef:             "illegal parameter entity reference",
	ErrUndefinedEntity:            "undefined entity",
	ErrRecursiveEntityRef:         "recursive entity reference",
	ErrAsyncEntity:                "asynchronous entity",
	ErrBadCharRef:                 "reference to invalid character number",
	ErrBinaryEntityRef:            "reference to binary entity",
	ErrAttributeExternalEntityRef: "reference to external entity in attribute",
	ErrMisplacedXmlPi:             "XML or text declaration not at start of entity",
	ErrUnknownEncoding:            "unknown encoding",
	ErrIncorrectEncoding:          "encoding specified in XML declaration is incorrect",
	ErrUnclosedCdataSection:       "unclosed CDATA section",
	ErrExternalEntityHandling:     "failure to process external entity reference",
	ErrNotStandalone:              "document is not standalone",
}

// errorString mirrors expat's XML_ErrorString.
func errorString(code ErrorCode) string {
	if int(code) >= 0 && int(code) < len(errorStrings) && errorStrings[code] != "" {
		return errorStrings[code]
	}
	return "unknown error"
}

// ParseError is the result of a well-formedness or processing
// violation. The processor latches the first one it encounters; no
// subsequent call on the same parser produces a different error.
type ParseError struct {
	Code       ErrorCode
	Line       int // one-based
	Column     int // zero-based
	ByteIndex  int64
}

func (e *ParseError) Error() string {
	return errorString(e.Code)
}
