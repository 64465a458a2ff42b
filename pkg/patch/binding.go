package patch

import (
	stderrors "errors"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// attach builds the live subtree for v and inserts it into parent before
// ref, or at the end when ref is nil. Empty nodes are skipped.
func (ps *pass) attach(v *vdom.VNode, parent, ref dom.Node) error {
	switch {
	case v.IsEmpty():
		return nil
	case v.Kind == vdom.KindText:
		return ps.attachText(v.Text, parent, ref)
	default:
		return ps.attachEl(v.El, parent, ref)
	}
}

func (ps *pass) attachText(t *vdom.Text, parent, ref dom.Node) error {
	if t.Handle() != nil {
		panic(errors.Invariant("E301", "text "+quote(t.Content)+" is already attached"))
	}
	n, err := ps.host.CreateText(t.Content)
	if err != nil {
		return ps.fail("E320", "CreateText", err)
	}
	if err := ps.host.InsertBefore(parent, n, ref); err != nil {
		return ps.structural("E321", "InsertBefore", err)
	}
	t.SetHandle(n)
	return nil
}

// attachEl creates the element with its attributes, style, listeners and
// children, then inserts it. Default element state is applied last, once
// the element is in the tree.
func (ps *pass) attachEl(el *vdom.El, parent, ref dom.Node) error {
	if el.Handle() != nil {
		panic(errors.Invariant("E301", "element "+el.Node().String()+" is already attached"))
	}
	n, err := ps.host.CreateElement(el.Tag, string(el.Namespace))
	if err != nil {
		return ps.fail("E320", "CreateElement", err)
	}
	el.SetHandle(n)
	setRefs(el, n)

	for k, v := range orderedAttrs(el.Attrs) {
		if !v.IsIgnored() {
			ps.setAttr(n, k, v)
		}
	}
	if el.Namespace != "" {
		ps.soft("E323", "SetAttribute", ps.host.SetAttribute(n, "xmlns", string(el.Namespace)))
	}
	if s := el.Style.String(); s != "" {
		ps.soft("E323", "SetAttribute", ps.host.SetAttribute(n, "style", s))
	}
	ps.soft("E326", "AddEventListener", el.Handlers.AttachListeners(ps.host, n, nil))

	for _, child := range el.Children {
		if err := ps.attach(child, n, nil); err != nil {
			return err
		}
	}

	if err := ps.host.InsertBefore(parent, n, ref); err != nil {
		return ps.structural("E321", "InsertBefore", err)
	}
	ps.defaultState(el, n)
	return nil
}

func setRefs(el *vdom.El, n dom.Node) {
	for _, r := range el.Refs {
		r.Set(n)
	}
}

// defaultState applies element state that attributes alone do not set up
// on a fresh element.
func (ps *pass) defaultState(el *vdom.El, n dom.Node) {
	if ps.props == nil {
		return
	}
	if v, ok := el.Attrs.Get("autofocus"); ok && !v.IsIgnored() {
		ps.soft("E327", "Focus", ps.props.Focus(n))
	}
	if el.Tag == "textarea" {
		if v, ok := el.Attrs.Get("value"); ok {
			if s, set := v.Value(); set && !v.IsPresent() {
				ps.soft("E327", "SetProperty", ps.props.SetProperty(n, "value", s))
			}
		}
	}
}

// detach removes the live node of v from parent and releases the
// listeners of the whole subtree. Detaching a node that has no live node is
// an invariant violation.
func (ps *pass) detach(v *vdom.VNode, parent dom.Node) error {
	var n dom.Node
	switch {
	case v.IsEmpty():
		return nil
	case v.Kind == vdom.KindText:
		n = v.Text.TakeHandle()
	default:
		n = v.El.TakeHandle()
	}
	if n == nil {
		panic(errors.Invariant("E300", "cannot detach "+v.String()+": no live node"))
	}

	ps.release(v)
	if err := ps.host.RemoveChild(parent, n); err != nil {
		return ps.structural("E322", "RemoveChild", err)
	}
	v.StripHandles()
	return nil
}

// structural reports a failed insert or remove. When the host says the
// node or its ref is not under parent, the tree no longer describes the
// live document and the pass cannot go on.
func (ps *pass) structural(code, op string, err error) error {
	if stderrors.Is(err, dom.ErrNotChild) {
		panic(errors.Invariant("E305", op+" against a node outside the live tree").Wrap(err))
	}
	return ps.fail(code, op, err)
}

// release removes every live listener in the subtree of v.
func (ps *pass) release(v *vdom.VNode) {
	if v.IsEmpty() || v.Kind != vdom.KindElement {
		return
	}
	ps.soft("E326", "RemoveEventListener", v.El.Handlers.ReleaseListeners(ps.host))
	for _, child := range v.El.Children {
		ps.release(child)
	}
}

// replace swaps old for new at old's position.
func (ps *pass) replace(old, new *vdom.VNode, parent dom.Node) error {
	ref := old.Handle()
	if ref == nil {
		panic(errors.Invariant("E300", "cannot replace "+old.String()+": no live node"))
	}
	if err := ps.attach(new, parent, ref); err != nil {
		return err
	}
	return ps.detach(old, parent)
}
