package htmldom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/reconcile/pkg/dom"
)

// Errors returned by Document. They reach callers of the patcher wrapped
// in platform errors.
var (
	ErrForeignNode      = errors.New("htmldom: node does not belong to this document")
	ErrNotElement       = errors.New("htmldom: node is not an element")
	ErrNotChild         = fmt.Errorf("htmldom: %w", dom.ErrNotChild)
	ErrInvalidAttribute = errors.New("htmldom: invalid attribute name")
	ErrUnknownListener  = errors.New("htmldom: unknown listener")
)

// namespaces maps namespace URIs to the short names x/net/html stores in
// Node.Namespace.
var namespaces = map[string]string{
	"http://www.w3.org/1999/xhtml":       "",
	"http://www.w3.org/2000/svg":         "svg",
	"http://www.w3.org/1998/mathml":      "math",
	"http://www.w3.org/1998/Math/MathML": "math",
}

type listener struct {
	trigger string
	fn      dom.EventFunc
}

// Document is an in-memory dom.Host. Live nodes are *html.Node values
// under a single root element.
type Document struct {
	root      *html.Node
	listeners map[*html.Node][]*listener
	props     map[*html.Node]map[string]any
	focused   *html.Node
}

// New returns a document whose root is an empty <body> element.
func New() *Document {
	return &Document{
		root:      &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body},
		listeners: make(map[*html.Node][]*listener),
		props:     make(map[*html.Node]map[string]any),
	}
}

// Root returns the mount point of the document.
func (d *Document) Root() *html.Node {
	return d.root
}

func asNode(n dom.Node) (*html.Node, error) {
	h, ok := n.(*html.Node)
	if !ok || h == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignNode, n)
	}
	return h, nil
}

func asElement(n dom.Node) (*html.Node, error) {
	h, err := asNode(n)
	if err != nil {
		return nil, err
	}
	if h.Type != html.ElementNode {
		return nil, fmt.Errorf("%w: %q", ErrNotElement, h.Data)
	}
	return h, nil
}

// CreateElement implements dom.Host.
func (d *Document) CreateElement(tag, namespace string) (dom.Node, error) {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	if ns, ok := namespaces[namespace]; ok {
		n.Namespace = ns
	} else {
		n.Namespace = namespace
	}
	if n.Namespace == "" {
		n.DataAtom = atom.Lookup([]byte(tag))
	}
	return n, nil
}

// CreateText implements dom.Host.
func (d *Document) CreateText(content string) (dom.Node, error) {
	return &html.Node{Type: html.TextNode, Data: content}, nil
}

// InsertBefore implements dom.Host. A child that already has a parent is
// moved.
func (d *Document) InsertBefore(parent, child, ref dom.Node) error {
	p, err := asElement(parent)
	if err != nil {
		return err
	}
	c, err := asNode(child)
	if err != nil {
		return err
	}
	var r *html.Node
	if ref != nil {
		if r, err = asNode(ref); err != nil {
			return err
		}
		if r.Parent != p {
			return ErrNotChild
		}
	}
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	p.InsertBefore(c, r)
	return nil
}

// RemoveChild implements dom.Host.
func (d *Document) RemoveChild(parent, child dom.Node) error {
	p, err := asNode(parent)
	if err != nil {
		return err
	}
	c, err := asNode(child)
	if err != nil {
		return err
	}
	if c.Parent != p {
		return ErrNotChild
	}
	p.RemoveChild(c)
	if d.focused == c {
		d.focused = nil
	}
	return nil
}

// validAttrName follows the HTML attribute name production: no controls,
// whitespace, quotes, '>', '/' or '='.
func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r <= ' ' || r == 0x7f {
			return false
		}
		if strings.ContainsRune("\"'>/=", r) {
			return false
		}
	}
	return true
}

// SetAttribute implements dom.Host.
func (d *Document) SetAttribute(el dom.Node, name, value string) error {
	n, err := asElement(el)
	if err != nil {
		return err
	}
	if !validAttrName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidAttribute, name)
	}
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return nil
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

// RemoveAttribute implements dom.Host. Removing a missing attribute is not
// an error.
func (d *Document) RemoveAttribute(el dom.Node, name string) error {
	n, err := asElement(el)
	if err != nil {
		return err
	}
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == name
	})
	return nil
}

// Attribute returns the value of an attribute of n.
func Attribute(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetTextContent implements dom.Host. On an element it replaces all
// children with a single text node.
func (d *Document) SetTextContent(node dom.Node, content string) error {
	n, err := asNode(node)
	if err != nil {
		return err
	}
	if n.Type == html.TextNode {
		n.Data = content
		return nil
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: content})
	return nil
}

// AddEventListener implements dom.Host.
func (d *Document) AddEventListener(target dom.Node, trigger string, fn dom.EventFunc) (dom.Listener, error) {
	n, err := asElement(target)
	if err != nil {
		return nil, err
	}
	l := &listener{trigger: trigger, fn: fn}
	d.listeners[n] = append(d.listeners[n], l)
	return l, nil
}

// RemoveEventListener implements dom.Host.
func (d *Document) RemoveEventListener(target dom.Node, trigger string, token dom.Listener) error {
	n, err := asNode(target)
	if err != nil {
		return err
	}
	l, ok := token.(*listener)
	if !ok {
		return ErrUnknownListener
	}
	ls := d.listeners[n]
	i := slices.Index(ls, l)
	if i < 0 || l.trigger != trigger {
		return ErrUnknownListener
	}
	ls = slices.Delete(ls, i, i+1)
	if len(ls) == 0 {
		delete(d.listeners, n)
	} else {
		d.listeners[n] = ls
	}
	return nil
}

// Listeners returns the number of listeners registered for trigger on n.
func (d *Document) Listeners(n *html.Node, trigger string) int {
	count := 0
	for _, l := range d.listeners[n] {
		if l.trigger == trigger {
			count++
		}
	}
	return count
}

// ListenerCount returns the number of listeners in the whole document.
func (d *Document) ListenerCount() int {
	count := 0
	for _, ls := range d.listeners {
		count += len(ls)
	}
	return count
}

// Dispatch fires the listeners for trigger registered on target and
// returns how many ran. Events do not bubble.
func (d *Document) Dispatch(target *html.Node, trigger string, ev dom.Event) int {
	ls := slices.Clone(d.listeners[target])
	fired := 0
	for _, l := range ls {
		if l.trigger == trigger {
			l.fn(ev)
			fired++
		}
	}
	return fired
}

// SetProperty implements dom.PropertyHost.
func (d *Document) SetProperty(el dom.Node, name string, value any) error {
	n, err := asElement(el)
	if err != nil {
		return err
	}
	m, ok := d.props[n]
	if !ok {
		m = make(map[string]any)
		d.props[n] = m
	}
	m[name] = value
	return nil
}

// Property returns a live property set through SetProperty.
func (d *Document) Property(n *html.Node, name string) (any, bool) {
	v, ok := d.props[n][name]
	return v, ok
}

// Focus implements dom.PropertyHost.
func (d *Document) Focus(el dom.Node) error {
	n, err := asElement(el)
	if err != nil {
		return err
	}
	d.focused = n
	return nil
}

// Focused returns the focused element, or nil.
func (d *Document) Focused() *html.Node {
	return d.focused
}

// Render writes n and its subtree as HTML.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// String renders the children of the document root, ignoring errors.
func (d *Document) String() string {
	s, _ := InnerHTML(d.root)
	return s
}

var (
	_ dom.Host         = (*Document)(nil)
	_ dom.PropertyHost = (*Document)(nil)
)
