package dom

import "errors"

// ErrNotChild is wrapped by hosts when a node passed as the child of
// RemoveChild, or as the ref of InsertBefore, is not a child of parent.
// The reconciler treats it as a broken invariant: its view of the live tree
// no longer matches the host's.
var ErrNotChild = errors.New("dom: node is not a child of parent")

// Node is an opaque handle to a live node owned by a Host.
//
// The engine never inspects a Node; it only passes it back to the Host that
// produced it. A nil Node means "no live node".
type Node interface{}

// Event is the platform event value delivered to listeners.
type Event interface{}

// Listener is an opaque token returned by AddEventListener and required to
// remove that listener again.
type Listener interface{}

// EventFunc is invoked by the host each time a listened event fires.
type EventFunc func(Event)

// Host is the capability set the reconciler needs from a rendering surface.
// Any platform implementing it can host the engine.
//
// All methods are called from a single goroutine during a reconcile pass.
type Host interface {
	// CreateElement creates a detached element. An empty namespace creates
	// a plain (HTML) element.
	CreateElement(tag, namespace string) (Node, error)

	// CreateText creates a detached text node.
	CreateText(content string) (Node, error)

	// InsertBefore inserts child into parent immediately before ref.
	// A nil ref appends child as the last child. A ref that is not a child
	// of parent fails with an error wrapping ErrNotChild.
	InsertBefore(parent, child, ref Node) error

	// RemoveChild detaches child from parent, or fails with an error
	// wrapping ErrNotChild.
	RemoveChild(parent, child Node) error

	// SetAttribute sets an attribute on an element.
	SetAttribute(el Node, name, value string) error

	// RemoveAttribute removes an attribute from an element.
	RemoveAttribute(el Node, name string) error

	// SetTextContent replaces the content of a text node.
	SetTextContent(node Node, content string) error

	// AddEventListener registers fn for trigger on target.
	AddEventListener(target Node, trigger string, fn EventFunc) (Listener, error)

	// RemoveEventListener unregisters a listener returned by AddEventListener.
	RemoveEventListener(target Node, trigger string, l Listener) error
}

// PropertyHost is implemented by hosts that expose live element state that
// is not reflected by attributes, such as an input's current value.
type PropertyHost interface {
	SetProperty(el Node, name string, value any) error
	Focus(el Node) error
}
