// Package htmltag compiles tagged markup templates into node trees.
//
// A template is a list of literal markup segments with one interpolated
// value between each pair of neighbouring segments. The literal segments are
// parsed once per distinct list and cached; each call then substitutes its
// own values into a fresh copy of the cached structure.
//
// # Quick Start
//
//	node, err := htmltag.HTML(htmltag.T(
//		[]string{`<a href=`, ` class=`, `>`, `</a>`},
//		url, []string{"link", "external"}, label,
//	))
//	if err != nil {
//		return err
//	}
//	fmt.Println(htmltag.Render(node))
//
// # Values
//
// Where a value lands decides how it is treated:
//
//   - Child content: strings become escaped text, [SafeHTML] values are written
//     verbatim, nodes and templates are spliced in, lists are flattened and
//     nil or false render nothing.
//   - Attribute values: class takes strings, lists and mappings of class name
//     to condition, style takes a string or a mapping of property to value,
//     data and aria require mappings that expand to data-* and aria-*
//     attributes. Other attributes are stringified; true renders a bare
//     attribute and nil or false drop it.
//   - Spread: a mapping in attribute position contributes one attribute per
//     entry. Anything else, nil included, is an error, as is a key that is
//     not a valid attribute name.
//   - Tag position: a string names the element, a function is called as a
//     component with the element's children and attributes. Close such an
//     element with any placeholder, as in <{A}>...</{A}>; the closing value
//     is ignored.
//   - Comments: values are stringified and must not contain --> or <!--.
//
// # Components
//
// Components are ordinary functions. Three shapes are accepted:
//
//	func(children []htmltag.Node, attrs htmltag.Attrs) (any, error)
//	func(ctx context.Context, children []htmltag.Node, attrs htmltag.Attrs) (any, error)
//	func(props P) (any, error) // P is a struct bound from attributes
//
// The result may be nil, a string, [SafeHTML], a [Node], a [Template] or a
// templ.Component. Use [Component] to go the other way and embed a compiled
// tree in templ code.
//
// # Errors
//
// Structural problems in the literal markup are reported as
// [ErrMalformedMarkup] (with the [ErrMismatchedTag] and [ErrUnclosedTag]
// specialisations). Values that do not fit their position are reported as
// [ErrTemplateValue]. Both are [*MarkupError] values and work with errors.Is.
package htmltag
