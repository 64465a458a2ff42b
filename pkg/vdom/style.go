package vdom

import (
	"iter"
	"slices"
	"strings"
)

// CSSValue is a style property value or an explicitly omitted property.
type CSSValue struct {
	ignored bool
	s       string
}

// CSS returns a property value.
func CSS(s string) CSSValue { return CSSValue{s: s} }

// CSSIgnored returns a value that drops the property from the style string.
func CSSIgnored() CSSValue { return CSSValue{ignored: true} }

// IsIgnored reports whether the property is omitted.
func (v CSSValue) IsIgnored() bool { return v.ignored }

// String implements fmt.Stringer.
func (v CSSValue) String() string { return v.s }

// Style holds inline style properties in insertion order. It is written to
// the live element as a single style attribute.
//
// As with Attrs, the zero value is ready for use and a nil *Style reads as
// empty. Set and Merge need a non-nil receiver.
type Style struct {
	keys []string
	vals map[string]CSSValue
}

// NewStyle returns an empty style.
func NewStyle() *Style {
	return &Style{vals: make(map[string]CSSValue)}
}

// Set adds or replaces a property.
func (s *Style) Set(key string, v CSSValue) {
	if s.vals == nil {
		s.vals = make(map[string]CSSValue)
	}
	if _, ok := s.vals[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.vals[key] = v
}

// Get returns the value for key.
func (s *Style) Get(key string) (CSSValue, bool) {
	if s == nil {
		return CSSValue{}, false
	}
	v, ok := s.vals[key]
	return v, ok
}

// Len returns the number of properties.
func (s *Style) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// All iterates over the properties in insertion order.
func (s *Style) All() iter.Seq2[string, CSSValue] {
	return func(yield func(string, CSSValue) bool) {
		if s == nil {
			return
		}
		for _, k := range s.keys {
			if !yield(k, s.vals[k]) {
				return
			}
		}
	}
}

// Merge combines other into s; on conflict other wins.
func (s *Style) Merge(other *Style) {
	if other.Len() == 0 {
		return
	}
	for k, v := range other.All() {
		s.Set(k, v)
	}
}

// Equal reports whether both styles hold the same pairs, ignoring order.
func (s *Style) Equal(o *Style) bool {
	if s.Len() != o.Len() {
		return false
	}
	for k, v := range s.All() {
		if ov, ok := o.Get(k); !ok || ov != v {
			return false
		}
	}
	return true
}

// Clone returns a copy of s.
func (s *Style) Clone() *Style {
	c := NewStyle()
	if s != nil {
		c.keys = slices.Clone(s.keys)
		for k, v := range s.vals {
			c.vals[k] = v
		}
	}
	return c
}

// String renders the value of the style attribute, e.g.
// "display:flex;font-size:1.5em".
func (s *Style) String() string {
	parts := make([]string, 0, s.Len())
	for k, v := range s.All() {
		if v.ignored {
			continue
		}
		parts = append(parts, k+":"+v.s)
	}
	return strings.Join(parts, ";")
}
