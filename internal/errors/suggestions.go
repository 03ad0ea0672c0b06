package errors

import (
	"errors"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title       string
	Description string
	Example     string
}

// Suggest returns hints for a compilation error, keyed on its code.
func Suggest(err error) []ErrorSuggestion {
	var me *MarkupError
	if !errors.As(err, &me) {
		return nil
	}

	switch me.Code {
	case ErrCodeMismatchedTag:
		return []ErrorSuggestion{
			{
				Title:       "Check tag nesting",
				Description: "Every closing tag must close the most recently opened element",
				Example:     "<div><p>text</p></div>",
			},
		}
	case ErrCodeUnexpectedClose:
		return []ErrorSuggestion{
			{
				Title:       "Remove the stray closing tag",
				Description: "A closing tag appeared with no element open",
			},
		}
	case ErrCodeUnclosedTag:
		return []ErrorSuggestion{
			{
				Title:       "Close every element",
				Description: "Elements still open at the end of the template: <" + me.Tag + ">",
				Example:     "<" + firstTag(me.Tag) + ">...</" + firstTag(me.Tag) + ">",
			},
		}
	case ErrCodeVoidChildren:
		return []ErrorSuggestion{
			{
				Title:       "Void elements cannot have children",
				Description: "Move the content next to the <" + me.Tag + "> element",
			},
		}
	case ErrCodeNotMapping:
		return []ErrorSuggestion{
			{
				Title:       "Pass a mapping",
				Description: "Spread, data and aria positions need a map or an ordered dict",
				Example:     `<a {attrs}>  with  attrs = Dict{{"href", "/"}}`,
			},
		}
	case ErrCodeInvalidTag:
		return []ErrorSuggestion{
			{
				Title:       "Use a tag name or a component",
				Description: "A value in tag position must be a non-empty string or a component function",
			},
		}
	case ErrCodeInvalidAttr:
		return []ErrorSuggestion{
			{
				Title:       "Use plain attribute names",
				Description: "Attribute names cannot be empty or contain spaces, quotes, <, >, / or =",
			},
		}
	case ErrCodeInvalidComment:
		return []ErrorSuggestion{
			{
				Title:       "Keep comment delimiters out of values",
				Description: "A value inside a comment cannot contain --> or <!--",
			},
		}
	case ErrCodeSlotSyntax:
		return []ErrorSuggestion{
			{
				Title:       "Escape literal braces",
				Description: "Write {{ and }} for braces that are not interpolation slots",
				Example:     "<style>p {{ color: red }}</style>",
			},
		}
	case ErrCodeMissingValue:
		return []ErrorSuggestion{
			{
				Title:       "Check the data file",
				Description: "The slot names a value that the data does not define: " + me.Attr,
			},
		}
	}

	return nil
}

func firstTag(tags string) string {
	if i := strings.Index(tags, ">"); i >= 0 {
		return tags[:i]
	}
	return tags
}
