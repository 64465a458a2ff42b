package vdom

import (
	"iter"
	"slices"
	"strings"
)

type atKind uint8

const (
	atString atKind = iota
	atPresent
	atIgnored
)

// AtValue is an attribute value: a string, a bare boolean attribute, or an
// explicitly omitted attribute. The zero value is the empty string.
type AtValue struct {
	kind atKind
	s    string
}

// AtString returns an attribute value carrying s.
func AtString(s string) AtValue { return AtValue{kind: atString, s: s} }

// AtPresent returns a boolean attribute value rendered without a value.
func AtPresent() AtValue { return AtValue{kind: atPresent} }

// AtIgnored returns a value that removes the attribute from the element.
func AtIgnored() AtValue { return AtValue{kind: atIgnored} }

// AtBool maps true to AtPresent and false to AtIgnored.
func AtBool(b bool) AtValue {
	if b {
		return AtPresent()
	}
	return AtIgnored()
}

// IsIgnored reports whether the attribute is explicitly omitted.
func (v AtValue) IsIgnored() bool { return v.kind == atIgnored }

// IsPresent reports whether the attribute is a bare boolean attribute.
func (v AtValue) IsPresent() bool { return v.kind == atPresent }

// Value returns the string set on the live element and whether the
// attribute should exist at all.
func (v AtValue) Value() (string, bool) {
	switch v.kind {
	case atString:
		return v.s, true
	case atPresent:
		return "", true
	default:
		return "", false
	}
}

// String implements fmt.Stringer.
func (v AtValue) String() string {
	switch v.kind {
	case atPresent:
		return "<present>"
	case atIgnored:
		return "<ignored>"
	default:
		return v.s
	}
}

// ClassKey is the multi-valued attribute merged by concatenation.
const ClassKey = "class"

// Attrs is an insertion-ordered attribute map.
// Re-setting an existing key keeps its original position.
//
// The zero value is an empty map ready for use. A nil *Attrs reads as
// empty and may be deleted from; Set, Merge, AddClass and AddMultiple
// write to the receiver and need a non-nil one.
type Attrs struct {
	keys []string
	vals map[string]AtValue
}

// NewAttrs returns an empty attribute map.
func NewAttrs() *Attrs {
	return &Attrs{vals: make(map[string]AtValue)}
}

// Set adds or replaces an attribute.
func (a *Attrs) Set(key string, v AtValue) {
	if a.vals == nil {
		a.vals = make(map[string]AtValue)
	}
	if _, ok := a.vals[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.vals[key] = v
}

// Get returns the value stored for key.
func (a *Attrs) Get(key string) (AtValue, bool) {
	if a == nil {
		return AtValue{}, false
	}
	v, ok := a.vals[key]
	return v, ok
}

// Delete removes key.
func (a *Attrs) Delete(key string) {
	if a == nil {
		return
	}
	if _, ok := a.vals[key]; !ok {
		return
	}
	delete(a.vals, key)
	a.keys = slices.DeleteFunc(a.keys, func(k string) bool { return k == key })
}

// Len returns the number of attributes.
func (a *Attrs) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Keys returns the attribute names in insertion order.
func (a *Attrs) Keys() []string {
	if a == nil {
		return nil
	}
	return slices.Clone(a.keys)
}

// All iterates over the attributes in insertion order.
func (a *Attrs) All() iter.Seq2[string, AtValue] {
	return func(yield func(string, AtValue) bool) {
		if a == nil {
			return
		}
		for _, k := range a.keys {
			if !yield(k, a.vals[k]) {
				return
			}
		}
	}
}

// Merge combines other into a. Values from other overwrite, except for the
// class attribute where two string values are joined with a space.
func (a *Attrs) Merge(other *Attrs) {
	if other.Len() == 0 {
		return
	}
	for k, v := range other.All() {
		orig, ok := a.Get(k)
		if ok && k == ClassKey && orig.kind == atString && v.kind == atString {
			if orig.s != "" {
				orig.s += " "
			}
			orig.s += v.s
			a.Set(k, orig)
			continue
		}
		a.Set(k, v)
	}
}

// AddClass appends a class name to the class attribute.
func (a *Attrs) AddClass(name string) {
	v, ok := a.Get(ClassKey)
	if !ok || v.kind != atString {
		a.Set(ClassKey, AtString(name))
		return
	}
	if v.s != "" {
		v.s += " "
	}
	v.s += name
	a.Set(ClassKey, v)
}

// AddMultiple sets key to the space-joined non-empty items.
func (a *Attrs) AddMultiple(key string, items ...string) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item != "" {
			parts = append(parts, item)
		}
	}
	a.Set(key, AtString(strings.Join(parts, " ")))
}

// Equal reports whether both maps hold the same pairs, ignoring order.
func (a *Attrs) Equal(b *Attrs) bool {
	if a.Len() != b.Len() {
		return false
	}
	for k, v := range a.All() {
		if bv, ok := b.Get(k); !ok || bv != v {
			return false
		}
	}
	return true
}

// Clone returns a copy of a.
func (a *Attrs) Clone() *Attrs {
	c := NewAttrs()
	for k, v := range a.All() {
		c.Set(k, v)
	}
	return c
}

// String renders the attributes the way they appear in HTML.
func (a *Attrs) String() string {
	parts := make([]string, 0, a.Len())
	for k, v := range a.All() {
		switch v.kind {
		case atIgnored:
		case atPresent:
			parts = append(parts, k)
		default:
			parts = append(parts, k+`="`+v.s+`"`)
		}
	}
	return strings.Join(parts, " ")
}
