package nodes

// Attr is one attribute. A boolean attribute has Bool set and is rendered as
// a bare name; Value is ignored in that case.
type Attr struct {
	Name  string
	Value string
	Bool  bool
}

// String returns a string attribute.
func String(name, value string) Attr { return Attr{Name: name, Value: value} }

// Boolean returns a valueless attribute.
func Boolean(name string) Attr { return Attr{Name: name, Bool: true} }

// Attrs is an ordered attribute list with unique names. Order is insertion
// order; re-assigning a name keeps its original position.
type Attrs []Attr

// NewAttrs builds an attribute list, applying Set semantics in order.
func NewAttrs(attrs ...Attr) Attrs {
	var out Attrs
	for _, a := range attrs {
		out.Put(a)
	}
	return out
}

// Put assigns a, replacing any attribute with the same name in place.
func (a *Attrs) Put(attr Attr) {
	for i := range *a {
		if (*a)[i].Name == attr.Name {
			(*a)[i] = attr
			return
		}
	}
	*a = append(*a, attr)
}

// Set assigns a string value.
func (a *Attrs) Set(name, value string) { a.Put(String(name, value)) }

// SetBool assigns a valueless attribute.
func (a *Attrs) SetBool(name string) { a.Put(Boolean(name)) }

// Delete removes the named attribute if present.
func (a *Attrs) Delete(name string) {
	for i := range *a {
		if (*a)[i].Name == name {
			*a = append((*a)[:i], (*a)[i+1:]...)
			return
		}
	}
}

// Get looks up an attribute by name.
func (a Attrs) Get(name string) (Attr, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attr{}, false
}

// Has reports whether the named attribute is present.
func (a Attrs) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Names returns attribute names in order.
func (a Attrs) Names() []string {
	names := make([]string, len(a))
	for i, attr := range a {
		names[i] = attr.Name
	}
	return names
}

// Clone returns an independent copy.
func (a Attrs) Clone() Attrs {
	if len(a) == 0 {
		return nil
	}
	out := make(Attrs, len(a))
	copy(out, a)
	return out
}

// Len returns the number of attributes.
func (a Attrs) Len() int { return len(a) }
