package patch

import (
	"iter"
	"strconv"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// valueKey is written after every other attribute so that range limits
// such as min and max are in place before the value is checked against them.
const valueKey = "value"

// orderedAttrs iterates over attrs in insertion order with value moved last.
func orderedAttrs(attrs *vdom.Attrs) iter.Seq2[string, vdom.AtValue] {
	return func(yield func(string, vdom.AtValue) bool) {
		for k, v := range attrs.All() {
			if k == valueKey {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
		if v, ok := attrs.Get(valueKey); ok {
			yield(valueKey, v)
		}
	}
}

// setAttr writes one attribute value to the live element. Ignored values
// remove the attribute.
func (ps *pass) setAttr(n dom.Node, key string, v vdom.AtValue) {
	if s, ok := v.Value(); ok {
		ps.soft("E323", "SetAttribute", ps.host.SetAttribute(n, key, s))
		return
	}
	ps.soft("E324", "RemoveAttribute", ps.host.RemoveAttribute(n, key))
}

// patchEl updates old's live element in place to match new and moves the
// live node over to new.
func (ps *pass) patchEl(old, new *vdom.El) error {
	n := old.TakeHandle()
	if n == nil {
		panic(errors.Invariant("E300", "cannot patch "+old.Node().String()+": no live node"))
	}
	new.SetHandle(n)
	setRefs(new, n)

	ps.patchAttrs(n, old.Attrs, new.Attrs)
	if !old.Style.Equal(new.Style) {
		if s := new.Style.String(); s != "" {
			ps.soft("E323", "SetAttribute", ps.host.SetAttribute(n, "style", s))
		} else {
			ps.soft("E324", "RemoveAttribute", ps.host.RemoveAttribute(n, "style"))
		}
	}
	ps.soft("E326", "AddEventListener", new.Handlers.AttachListeners(ps.host, n, old.Handlers))
	ps.soft("E326", "RemoveEventListener", old.Handlers.ReleaseListeners(ps.host))

	return ps.patchChildren(n, old.Children, new.Children)
}

// patchAttrs writes changed and new attributes, removes the ones that went
// away and keeps the live value and checked properties in step.
func (ps *pass) patchAttrs(n dom.Node, old, new *vdom.Attrs) {
	for k, v := range orderedAttrs(new) {
		if ov, ok := old.Get(k); !ok || ov != v {
			if ok || !v.IsIgnored() {
				ps.setAttr(n, k, v)
			}
		}
		switch k {
		case valueKey:
			s, _ := v.Value()
			ps.setProperty(n, valueKey, s)
		case "checked":
			_, on := v.Value()
			ps.setProperty(n, "checked", on)
		}
	}

	for k, ov := range old.All() {
		if _, ok := new.Get(k); ok {
			continue
		}
		if !ov.IsIgnored() {
			ps.soft("E324", "RemoveAttribute", ps.host.RemoveAttribute(n, k))
		}
		switch k {
		case valueKey:
			if _, set := ov.Value(); set && !ov.IsPresent() {
				ps.setProperty(n, valueKey, "")
			}
		case "checked":
			if !ov.IsIgnored() {
				ps.setProperty(n, "checked", false)
			}
		}
	}
}

func (ps *pass) setProperty(n dom.Node, name string, value any) {
	if ps.props == nil {
		return
	}
	ps.soft("E327", "SetProperty", ps.props.SetProperty(n, name, value))
}

// patchText moves the live node from old to new and rewrites its content
// only when it changed.
func (ps *pass) patchText(old, new *vdom.Text) {
	n := old.TakeHandle()
	if n == nil {
		panic(errors.Invariant("E300", "cannot patch text "+quote(old.Content)+": no live node"))
	}
	new.SetHandle(n)
	if old.Content != new.Content {
		ps.soft("E325", "SetTextContent", ps.host.SetTextContent(n, new.Content))
	}
}

func quote(s string) string {
	if len(s) > 32 {
		s = s[:32] + "..."
	}
	return strconv.Quote(s)
}
