package vdom

import (
	"strings"

	"github.com/vango-dev/reconcile/pkg/dom"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindEmpty   VKind = iota // Renders nothing, keeps a slot in a child list
	KindElement              // <div>, <button>, etc.
	KindText                 // Plain text node
	KindNoChange             // Keeps whatever the previous tree held here
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindNoChange:
		return "NoChange"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node: exactly one of Empty, Element, Text or
// NoChange.
//
// NoChange only appears in a new tree, at the root of a pass. The patcher
// replaces it with the previous tree, live nodes included.
//
// A VNode is either virtual only or attached to one live node of a
// dom.Host. Trees are built fresh for every update; the patcher moves live
// handles from the previous tree into the new one.
type VNode struct {
	Kind VKind
	El   *El   // For KindElement
	Text *Text // For KindText
}

// El is the element payload of a VNode.
//
// Tag, Namespace and Custom must not change for the lifetime of an El;
// build a new El instead.
type El struct {
	Tag       string
	Namespace Namespace
	Attrs     *Attrs
	Style     *Style
	Handlers  *HandlerManager
	Children  []*VNode

	// Key is the explicit reconciliation key; HasKey distinguishes the
	// empty key from no key.
	Key    string
	HasKey bool

	// Custom marks an element that is always rebuilt rather than patched.
	Custom bool

	// Refs are pointed at the live node whenever the element is attached
	// or patched.
	Refs []*ElRef

	node dom.Node
}

// ElRef gives code outside the tree access to the live node of an element.
// Bind it with the Ref builder argument.
type ElRef struct {
	node dom.Node
}

// NewElRef returns an unbound ref.
func NewElRef() *ElRef {
	return &ElRef{}
}

// Get returns the live node the ref was last pointed at, or nil. The node
// may since have been removed from the document.
func (r *ElRef) Get() dom.Node {
	if r == nil {
		return nil
	}
	return r.node
}

// Set points the ref at n.
func (r *ElRef) Set(n dom.Node) {
	r.node = n
}

// Text is the text payload of a VNode.
type Text struct {
	Content string

	node dom.Node
}

// Empty returns a placeholder node that renders nothing.
func Empty() *VNode {
	return &VNode{Kind: KindEmpty}
}

// NoChange returns a node that tells the patcher to keep the previous tree
// as it is.
func NoChange() *VNode {
	return &VNode{Kind: KindNoChange}
}

// IsNoChange reports whether v is the NoChange marker.
func (v *VNode) IsNoChange() bool {
	return v != nil && v.Kind == KindNoChange
}

// NewText returns a text node.
func NewText(content string) *VNode {
	return &VNode{Kind: KindText, Text: &Text{Content: content}}
}

// NewEl returns an empty element with the given tag.
func NewEl(tag string) *El {
	return &El{
		Tag:      tag,
		Attrs:    NewAttrs(),
		Style:    NewStyle(),
		Handlers: NewHandlerManager(),
	}
}

// Node wraps the element in a VNode.
func (e *El) Node() *VNode {
	return &VNode{Kind: KindElement, El: e}
}

// Handle returns the live node, or nil if the element is virtual.
func (e *El) Handle() dom.Node {
	return e.node
}

// SetHandle binds the element to a live node. Passing nil detaches it.
func (e *El) SetHandle(n dom.Node) {
	e.node = n
}

// TakeHandle clears and returns the live node.
func (e *El) TakeHandle() dom.Node {
	n := e.node
	e.node = nil
	return n
}

// Node wraps the text in a VNode.
func (t *Text) Node() *VNode {
	return &VNode{Kind: KindText, Text: t}
}

// Handle returns the live node, or nil if the text is virtual.
func (t *Text) Handle() dom.Node {
	return t.node
}

// SetHandle binds the text to a live node. Passing nil detaches it.
func (t *Text) SetHandle(n dom.Node) {
	t.node = n
}

// TakeHandle clears and returns the live node.
func (t *Text) TakeHandle() dom.Node {
	n := t.node
	t.node = nil
	return n
}

// IsEmpty reports whether the node is the Empty placeholder.
func (v *VNode) IsEmpty() bool {
	return v == nil || v.Kind == KindEmpty
}

// Handle returns the live node behind v, if any.
func (v *VNode) Handle() dom.Node {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindElement:
		return v.El.node
	case KindText:
		return v.Text.node
	}
	return nil
}

// ElKey returns the explicit key of an element node.
func (v *VNode) ElKey() (string, bool) {
	if v == nil || v.Kind != KindElement {
		return "", false
	}
	return v.El.Key, v.El.HasKey
}

// HasKey reports whether v is an element with an explicit key.
func (v *VNode) HasKey() bool {
	_, ok := v.ElKey()
	return ok
}

// IsAttached reports whether v or any of its descendants hold a live node.
func (v *VNode) IsAttached() bool {
	if v.Handle() != nil {
		return true
	}
	if v != nil && v.Kind == KindElement {
		for _, child := range v.El.Children {
			if child.IsAttached() {
				return true
			}
		}
	}
	return false
}

// StripHandles detaches v and all of its descendants from their live nodes
// without touching the host.
func (v *VNode) StripHandles() {
	if v == nil {
		return
	}
	switch v.Kind {
	case KindElement:
		v.El.node = nil
		for _, child := range v.El.Children {
			child.StripHandles()
		}
	case KindText:
		v.Text.node = nil
	}
}

// Clone returns a structurally identical, fully virtual copy of v.
// Event handler lists and refs are shared; live listeners are not copied.
func (v *VNode) Clone() *VNode {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindElement:
		e := v.El
		c := &El{
			Tag:       e.Tag,
			Namespace: e.Namespace,
			Attrs:     e.Attrs.Clone(),
			Style:     e.Style.Clone(),
			Handlers:  e.Handlers.Clone(),
			Key:       e.Key,
			HasKey:    e.HasKey,
			Custom:    e.Custom,
			Refs:      e.Refs,
		}
		if len(e.Children) > 0 {
			c.Children = make([]*VNode, len(e.Children))
			for i, child := range e.Children {
				c.Children[i] = child.Clone()
			}
		}
		return c.Node()
	case KindText:
		return NewText(v.Text.Content)
	case KindNoChange:
		return NoChange()
	default:
		return Empty()
	}
}

// TextContent concatenates the content of the direct text children.
func (e *El) TextContent() string {
	var b strings.Builder
	for _, child := range e.Children {
		if child != nil && child.Kind == KindText {
			b.WriteString(child.Text.Content)
		}
	}
	return b.String()
}

// String renders a short description of the node for logs and test output.
func (v *VNode) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case KindElement:
		var b strings.Builder
		b.WriteByte('<')
		if v.El.Namespace != "" {
			b.WriteString(v.El.Namespace.Prefix())
			b.WriteByte(':')
		}
		b.WriteString(v.El.Tag)
		if v.El.HasKey {
			b.WriteString(" key=")
			b.WriteString(v.El.Key)
		}
		b.WriteByte('>')
		return b.String()
	case KindText:
		return "text(" + v.Text.Content + ")"
	case KindNoChange:
		return "nochange"
	default:
		return "empty"
	}
}
