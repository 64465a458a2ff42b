//go:build js && wasm

// Package jsdom is a dom.Host over the browser DOM, for programs compiled
// to WebAssembly.
//
//	doc := jsdom.New()
//	mount, err := doc.Query("#app")
//	if err != nil {
//	    panic(err)
//	}
//	p := patch.New(doc)
//	p.Mount(ctx, view(), mount)
package jsdom

import (
	"errors"
	"fmt"
	"syscall/js"

	"github.com/vango-dev/reconcile/pkg/dom"
)

// Errors returned by Document.
var (
	ErrForeignNode     = errors.New("jsdom: not a jsdom node")
	ErrNotFound        = errors.New("jsdom: no element matches selector")
	ErrUnknownListener = errors.New("jsdom: unknown listener")
	ErrNotChild        = fmt.Errorf("jsdom: %w", dom.ErrNotChild)
)

// Node wraps a DOM node. js.Value is not comparable, so handles are
// pointers.
type Node struct {
	v js.Value
}

// Value returns the underlying DOM node.
func (n *Node) Value() js.Value {
	return n.v
}

type listener struct {
	trigger string
	fn      js.Func
}

// Document is a dom.Host writing to a browser document.
type Document struct {
	doc js.Value
}

// New returns a host for the global document.
func New() *Document {
	return &Document{doc: js.Global().Get("document")}
}

// Query returns the first element matching selector.
func (d *Document) Query(selector string) (*Node, error) {
	var el js.Value
	err := guard(func() { el = d.doc.Call("querySelector", selector) })
	if err != nil {
		return nil, err
	}
	if el.IsNull() {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return &Node{v: el}, nil
}

// guard turns a JavaScript exception thrown during fn into an error.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			jsErr, ok := r.(js.Error)
			if !ok {
				panic(r)
			}
			err = jsErr
		}
	}()
	fn()
	return nil
}

func value(n dom.Node) (js.Value, error) {
	jn, ok := n.(*Node)
	if !ok || jn == nil {
		return js.Value{}, fmt.Errorf("%w: %T", ErrForeignNode, n)
	}
	return jn.v, nil
}

// CreateElement implements dom.Host.
func (d *Document) CreateElement(tag, namespace string) (dom.Node, error) {
	var el js.Value
	err := guard(func() {
		if namespace == "" {
			el = d.doc.Call("createElement", tag)
		} else {
			el = d.doc.Call("createElementNS", namespace, tag)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Node{v: el}, nil
}

// CreateText implements dom.Host.
func (d *Document) CreateText(content string) (dom.Node, error) {
	var t js.Value
	if err := guard(func() { t = d.doc.Call("createTextNode", content) }); err != nil {
		return nil, err
	}
	return &Node{v: t}, nil
}

// InsertBefore implements dom.Host.
func (d *Document) InsertBefore(parent, child, ref dom.Node) error {
	p, err := value(parent)
	if err != nil {
		return err
	}
	c, err := value(child)
	if err != nil {
		return err
	}
	r := js.Null()
	if ref != nil {
		if r, err = value(ref); err != nil {
			return err
		}
		if !r.Get("parentNode").Equal(p) {
			return ErrNotChild
		}
	}
	return guard(func() { p.Call("insertBefore", c, r) })
}

// RemoveChild implements dom.Host.
func (d *Document) RemoveChild(parent, child dom.Node) error {
	p, err := value(parent)
	if err != nil {
		return err
	}
	c, err := value(child)
	if err != nil {
		return err
	}
	if !c.Get("parentNode").Equal(p) {
		return ErrNotChild
	}
	return guard(func() { p.Call("removeChild", c) })
}

// SetAttribute implements dom.Host.
func (d *Document) SetAttribute(el dom.Node, name, val string) error {
	e, err := value(el)
	if err != nil {
		return err
	}
	return guard(func() { e.Call("setAttribute", name, val) })
}

// RemoveAttribute implements dom.Host.
func (d *Document) RemoveAttribute(el dom.Node, name string) error {
	e, err := value(el)
	if err != nil {
		return err
	}
	return guard(func() { e.Call("removeAttribute", name) })
}

// SetTextContent implements dom.Host.
func (d *Document) SetTextContent(node dom.Node, content string) error {
	n, err := value(node)
	if err != nil {
		return err
	}
	return guard(func() { n.Set("textContent", content) })
}

// AddEventListener implements dom.Host. fn receives the DOM event as a
// js.Value.
func (d *Document) AddEventListener(target dom.Node, trigger string, fn dom.EventFunc) (dom.Listener, error) {
	t, err := value(target)
	if err != nil {
		return nil, err
	}
	l := &listener{trigger: trigger}
	l.fn = js.FuncOf(func(this js.Value, args []js.Value) any {
		var ev js.Value
		if len(args) > 0 {
			ev = args[0]
		}
		fn(ev)
		return nil
	})
	if err := guard(func() { t.Call("addEventListener", trigger, l.fn) }); err != nil {
		l.fn.Release()
		return nil, err
	}
	return l, nil
}

// RemoveEventListener implements dom.Host and releases the Go callback.
func (d *Document) RemoveEventListener(target dom.Node, trigger string, token dom.Listener) error {
	t, err := value(target)
	if err != nil {
		return err
	}
	l, ok := token.(*listener)
	if !ok || l.trigger != trigger {
		return ErrUnknownListener
	}
	err = guard(func() { t.Call("removeEventListener", trigger, l.fn) })
	l.fn.Release()
	return err
}

// SetProperty implements dom.PropertyHost.
func (d *Document) SetProperty(el dom.Node, name string, val any) error {
	e, err := value(el)
	if err != nil {
		return err
	}
	return guard(func() { e.Set(name, val) })
}

// Focus implements dom.PropertyHost.
func (d *Document) Focus(el dom.Node) error {
	e, err := value(el)
	if err != nil {
		return err
	}
	return guard(func() { e.Call("focus") })
}

var (
	_ dom.Host         = (*Document)(nil)
	_ dom.PropertyHost = (*Document)(nil)
)
