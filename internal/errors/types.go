package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind represents the category of a markup compilation error.
type Kind string

const (
	KindMalformedMarkup Kind = "malformed_markup"
	KindMismatchedTag   Kind = "mismatched_tag"
	KindUnclosedTag     Kind = "unclosed_tag"
	KindTemplateValue   Kind = "template_value"
)

// Parent returns the kind this kind specialises, or "" for root kinds.
func (k Kind) Parent() Kind {
	switch k {
	case KindMismatchedTag, KindUnclosedTag:
		return KindMalformedMarkup
	default:
		return ""
	}
}

// MarkupError is the structured error returned by every stage of the compiler.
type MarkupError struct {
	Kind    Kind
	Code    string
	Message string
	// Tag is the element the error refers to, if any.
	Tag string
	// Attr is the attribute (or position class) the error refers to, if any.
	Attr string
	// Offset is the byte offset into the instrumented markup, or -1.
	Offset  int
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *MarkupError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Tag != "" {
		parts = append(parts, "<"+e.Tag+">")
	}

	if e.Attr != "" {
		parts = append(parts, "attribute:"+e.Attr)
	}

	if e.Offset > 0 {
		parts = append(parts, fmt.Sprintf("offset:%d", e.Offset))
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *MarkupError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a MarkupError of the same kind, or of a kind
// this error specialises. A target with a Code only matches the same Code.
func (e *MarkupError) Is(target error) bool {
	var t *MarkupError
	if !errors.As(target, &t) {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	for k := e.Kind; k != ""; k = k.Parent() {
		if k == t.Kind {
			return true
		}
	}

	return false
}

// WithContext adds context information to the error.
func (e *MarkupError) WithContext(key string, value interface{}) *MarkupError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithTag records the element the error refers to.
func (e *MarkupError) WithTag(tag string) *MarkupError {
	e.Tag = tag

	return e
}

// WithAttr records the attribute or position the error refers to.
func (e *MarkupError) WithAttr(attr string) *MarkupError {
	e.Attr = attr

	return e
}

// WithOffset records the byte offset of the offending token.
func (e *MarkupError) WithOffset(offset int) *MarkupError {
	e.Offset = offset

	return e
}

// WithCause attaches an underlying error.
func (e *MarkupError) WithCause(cause error) *MarkupError {
	e.Cause = cause

	return e
}

// Sentinels for errors.Is. They carry no code so they match any error of
// their kind.
var (
	ErrMalformedMarkup = &MarkupError{Kind: KindMalformedMarkup, Message: "malformed markup", Offset: -1}
	ErrMismatchedTag   = &MarkupError{Kind: KindMismatchedTag, Message: "mismatched tag", Offset: -1}
	ErrUnclosedTag     = &MarkupError{Kind: KindUnclosedTag, Message: "unclosed tag", Offset: -1}
	ErrTemplateValue   = &MarkupError{Kind: KindTemplateValue, Message: "invalid template value", Offset: -1}
)

// Error creation functions

// NewMalformedMarkupError creates a tokenizer-level or structural error.
func NewMalformedMarkupError(code, message string, cause error) *MarkupError {
	return &MarkupError{
		Kind:    KindMalformedMarkup,
		Code:    code,
		Message: message,
		Cause:   cause,
		Offset:  -1,
	}
}

// NewMismatchedTagError creates an error for a closing tag that does not
// match the element being built.
func NewMismatchedTagError(open, close string) *MarkupError {
	msg := fmt.Sprintf("mismatched closing tag </%s> for <%s>", close, open)
	code := ErrCodeMismatchedTag
	if open == "" {
		msg = fmt.Sprintf("unexpected closing tag </%s> with no matching opening tag", close)
		code = ErrCodeUnexpectedClose
	}

	return &MarkupError{
		Kind:    KindMismatchedTag,
		Code:    code,
		Message: msg,
		Tag:     close,
		Offset:  -1,
	}
}

// NewUnclosedTagError creates an error for elements still open at the end of
// the input.
func NewUnclosedTagError(open []string) *MarkupError {
	return &MarkupError{
		Kind:    KindUnclosedTag,
		Code:    ErrCodeUnclosedTag,
		Message: "invalid markup structure: unclosed tags remain",
		Tag:     strings.Join(open, ">, <"),
		Offset:  -1,
	}
}

// NewTemplateValueError creates a substitution failure for the named
// attribute or position.
func NewTemplateValueError(code, attr, message string) *MarkupError {
	return &MarkupError{
		Kind:    KindTemplateValue,
		Code:    code,
		Message: message,
		Attr:    attr,
		Offset:  -1,
	}
}

// TypeError is a shorthand for the most common template value failure: a
// value of the wrong type in the given position.
func TypeError(attr string, value interface{}, kind string) *MarkupError {
	return NewTemplateValueError(ErrCodeWrongType, attr,
		fmt.Sprintf("cannot use %s as %s", typeName(value), kind))
}

func typeName(v interface{}) string {
	if v == nil {
		return "nil"
	}

	return fmt.Sprintf("%T", v)
}

// IsMalformedMarkup reports whether err is a malformed markup error,
// including its mismatched and unclosed specialisations.
func IsMalformedMarkup(err error) bool {
	return errors.Is(err, ErrMalformedMarkup)
}

// IsTemplateValue reports whether err is a substitution failure.
func IsTemplateValue(err error) bool {
	return errors.Is(err, ErrTemplateValue)
}

// KindOf returns the kind of a MarkupError in err's chain, or "".
func KindOf(err error) Kind {
	var me *MarkupError
	if errors.As(err, &me) {
		return me.Kind
	}

	return ""
}

// BindError is returned when a component's props cannot be bound from the
// attributes it was invoked with. It is passed through to callers as is.
type BindError struct {
	Component string
	Field     string
	Attr      string
	Reason    string
}

// Error implements the error interface.
func (e *BindError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: cannot bind attribute %q to %s: %s", e.Component, e.Attr, e.Field, e.Reason)
	}

	return fmt.Sprintf("%s: missing required argument %q", e.Component, e.Attr)
}

// Common error codes.
const (
	ErrCodeTokenizer        = "ERR_TOKENIZER"
	ErrCodeMismatchedTag    = "ERR_MISMATCHED_TAG"
	ErrCodeUnexpectedClose  = "ERR_UNEXPECTED_CLOSE"
	ErrCodeUnclosedTag      = "ERR_UNCLOSED_TAG"
	ErrCodeVoidChildren     = "ERR_VOID_CHILDREN"
	ErrCodeEmptyTag         = "ERR_EMPTY_TAG"
	ErrCodeWrongType        = "ERR_WRONG_TYPE"
	ErrCodeNotMapping       = "ERR_NOT_MAPPING"
	ErrCodeInvalidTag       = "ERR_INVALID_TAG"
	ErrCodeInvalidAttr      = "ERR_INVALID_ATTR"
	ErrCodeInvalidComment   = "ERR_INVALID_COMMENT"
	ErrCodeInterpolations   = "ERR_INTERPOLATION_COUNT"
	ErrCodeUnknownDirective = "ERR_UNKNOWN_DIRECTIVE"
	ErrCodeComponentResult  = "ERR_COMPONENT_RESULT"
	ErrCodeSlotSyntax       = "ERR_SLOT_SYNTAX"
	ErrCodeMissingValue     = "ERR_MISSING_VALUE"
)
