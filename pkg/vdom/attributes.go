package vdom

import (
	"slices"
	"strconv"
	"strings"
)

// Attr is a single attribute argument for the element builder.
type Attr struct {
	Key   string
	Value AtValue
}

// StyleProp is a single inline style property for the element builder.
type StyleProp struct {
	Name  string
	Value CSSValue
}

// attr creates an Attr with a string value.
func attr(key, value string) Attr {
	return Attr{Key: key, Value: AtString(value)}
}

// flag creates a boolean Attr.
func flag(key string, on bool) Attr {
	return Attr{Key: key, Value: AtBool(on)}
}

// attrsOf collects builder attributes into a map. Attrs with an empty key
// are skipped and class values accumulate.
func attrsOf(attrs ...Attr) *Attrs {
	m := NewAttrs()
	for _, a := range attrs {
		if a.Key == "" {
			continue
		}
		m.Merge(&Attrs{keys: []string{a.Key}, vals: map[string]AtValue{a.Key: a.Value}})
	}
	return m
}

// AttrValue sets an arbitrary attribute.
func AttrValue(key string, v AtValue) Attr { return Attr{Key: key, Value: v} }

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
// Repeated Class arguments accumulate.
func Class(classes ...string) Attr {
	classes = slices.DeleteFunc(slices.Clone(classes), func(c string) bool { return c == "" })
	return attr(ClassKey, strings.Join(classes, " "))
}

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", strconv.FormatBool(hidden)) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", strconv.Itoa(index)) }

// Hidden sets or clears the hidden attribute.
func Hidden(on bool) Attr { return flag("hidden", on) }

// TitleAttr sets the title attribute (named to avoid conflict with Title element).
func TitleAttr(title string) Attr { return attr("title", title) }

// Link attributes

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Target sets the target attribute.
func Target(target string) Attr { return attr("target", target) }

// Form attributes

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Value sets the value attribute. On patch the live value property is
// synchronized too.
func Value(v string) Attr { return attr("value", v) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Checked sets or clears the checked attribute.
func Checked(on bool) Attr { return flag("checked", on) }

// Disabled sets or clears the disabled attribute.
func Disabled(on bool) Attr { return flag("disabled", on) }

// Selected sets or clears the selected attribute.
func Selected(on bool) Attr { return flag("selected", on) }

// Readonly sets or clears the readonly attribute.
func Readonly(on bool) Attr { return flag("readonly", on) }

// Autofocus focuses the element when it is first attached.
func Autofocus() Attr { return flag("autofocus", true) }

// For sets the for attribute.
func For(id string) Attr { return attr("for", id) }

// Rows sets the rows attribute.
func Rows(n int) Attr { return attr("rows", strconv.Itoa(n)) }

// Media attributes

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Width sets the width attribute.
func Width(w int) Attr { return attr("width", strconv.Itoa(w)) }

// Height sets the height attribute.
func Height(h int) Attr { return attr("height", strconv.Itoa(h)) }

// Conditional attributes

// ClassIf adds a class conditionally.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return attr(ClassKey, class)
	}
	return Attr{} // Empty attr, will be ignored
}

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// Inline style

// Css sets an inline style property.
func Css(name, value string) StyleProp { return StyleProp{Name: name, Value: CSS(value)} }

// CssIf sets an inline style property only when condition is true. The
// property is dropped from the style string otherwise.
func CssIf(condition bool, name, value string) StyleProp {
	if condition {
		return Css(name, value)
	}
	return StyleProp{Name: name, Value: CSSIgnored()}
}
