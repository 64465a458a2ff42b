package remote

import (
	"errors"
	"fmt"

	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/protocol"
)

// Errors returned by Document.
var (
	ErrForeignNode     = errors.New("remote: node does not belong to this document")
	ErrNotElement      = errors.New("remote: node is not an element")
	ErrNotChild        = fmt.Errorf("remote: %w", dom.ErrNotChild)
	ErrUnknownListener = errors.New("remote: unknown listener")
)

// Node is a live node of a remote document. It stands in for the node with
// the same id on the client.
type Node struct {
	doc    *Document
	id     protocol.NodeID
	tag    string
	text   bool
	parent *Node
}

// ID returns the client-side id of n.
func (n *Node) ID() protocol.NodeID {
	return n.id
}

// Parent returns the node n was last inserted into, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) String() string {
	if n.text {
		return fmt.Sprintf("#%d text", n.id)
	}
	return fmt.Sprintf("#%d %s", n.id, n.tag)
}

type listener struct {
	id      uint64
	target  *Node
	trigger string
	fn      dom.EventFunc
}

// Document is a dom.Host whose nodes live on a client. Every host call
// is recorded as a protocol op; Flush hands the ops recorded since the
// last flush out as one batch.
//
// A Document is not safe for concurrent use. Passes and Dispatch must be
// serialized by the caller.
type Document struct {
	root      *Node
	nextID    protocol.NodeID
	nextL     uint64
	seq       uint64
	ops       []protocol.Op
	listeners map[uint64]*listener
}

// New returns an empty document. Its root is protocol.RootID.
func New() *Document {
	d := &Document{
		nextID:    protocol.RootID + 1,
		nextL:     1,
		listeners: make(map[uint64]*listener),
	}
	d.root = &Node{doc: d, id: protocol.RootID, tag: "body"}
	return d
}

// Root returns the mount point.
func (d *Document) Root() *Node {
	return d.root
}

func (d *Document) node(n dom.Node) (*Node, error) {
	rn, ok := n.(*Node)
	if !ok || rn == nil || rn.doc != d {
		return nil, fmt.Errorf("%w: %T", ErrForeignNode, n)
	}
	return rn, nil
}

func (d *Document) element(n dom.Node) (*Node, error) {
	rn, err := d.node(n)
	if err != nil {
		return nil, err
	}
	if rn.text {
		return nil, fmt.Errorf("%w: %s", ErrNotElement, rn)
	}
	return rn, nil
}

func (d *Document) newNode(tag string, text bool) *Node {
	n := &Node{doc: d, id: d.nextID, tag: tag, text: text}
	d.nextID++
	return n
}

func (d *Document) record(op protocol.Op) {
	d.ops = append(d.ops, op)
}

// CreateElement implements dom.Host.
func (d *Document) CreateElement(tag, namespace string) (dom.Node, error) {
	n := d.newNode(tag, false)
	d.record(protocol.Op{Code: protocol.OpCreateElement, ID: n.id, Name: tag, Value: namespace})
	return n, nil
}

// CreateText implements dom.Host.
func (d *Document) CreateText(content string) (dom.Node, error) {
	n := d.newNode("", true)
	d.record(protocol.Op{Code: protocol.OpCreateText, ID: n.id, Value: content})
	return n, nil
}

// InsertBefore implements dom.Host.
func (d *Document) InsertBefore(parent, child, ref dom.Node) error {
	p, err := d.element(parent)
	if err != nil {
		return err
	}
	c, err := d.node(child)
	if err != nil {
		return err
	}
	op := protocol.Op{Code: protocol.OpInsertBefore, ID: p.id, Child: c.id}
	if ref != nil {
		r, err := d.node(ref)
		if err != nil {
			return err
		}
		if r.parent != p {
			return fmt.Errorf("%w: %s in %s", ErrNotChild, r, p)
		}
		op.Ref = r.id
	}
	c.parent = p
	d.record(op)
	return nil
}

// RemoveChild implements dom.Host.
func (d *Document) RemoveChild(parent, child dom.Node) error {
	p, err := d.node(parent)
	if err != nil {
		return err
	}
	c, err := d.node(child)
	if err != nil {
		return err
	}
	if c.parent != p {
		return fmt.Errorf("%w: %s in %s", ErrNotChild, c, p)
	}
	c.parent = nil
	d.record(protocol.Op{Code: protocol.OpRemoveChild, ID: p.id, Child: c.id})
	return nil
}

// SetAttribute implements dom.Host.
func (d *Document) SetAttribute(el dom.Node, name, value string) error {
	n, err := d.element(el)
	if err != nil {
		return err
	}
	d.record(protocol.Op{Code: protocol.OpSetAttr, ID: n.id, Name: name, Value: value})
	return nil
}

// RemoveAttribute implements dom.Host.
func (d *Document) RemoveAttribute(el dom.Node, name string) error {
	n, err := d.element(el)
	if err != nil {
		return err
	}
	d.record(protocol.Op{Code: protocol.OpRemoveAttr, ID: n.id, Name: name})
	return nil
}

// SetTextContent implements dom.Host.
func (d *Document) SetTextContent(node dom.Node, content string) error {
	n, err := d.node(node)
	if err != nil {
		return err
	}
	d.record(protocol.Op{Code: protocol.OpSetText, ID: n.id, Value: content})
	return nil
}

// AddEventListener implements dom.Host. The returned token is the
// listener id clients address events to.
func (d *Document) AddEventListener(target dom.Node, trigger string, fn dom.EventFunc) (dom.Listener, error) {
	n, err := d.element(target)
	if err != nil {
		return nil, err
	}
	l := &listener{id: d.nextL, target: n, trigger: trigger, fn: fn}
	d.nextL++
	d.listeners[l.id] = l
	d.record(protocol.Op{Code: protocol.OpListen, ID: n.id, Name: trigger, Listener: l.id})
	return l.id, nil
}

// RemoveEventListener implements dom.Host.
func (d *Document) RemoveEventListener(target dom.Node, trigger string, token dom.Listener) error {
	n, err := d.node(target)
	if err != nil {
		return err
	}
	id, _ := token.(uint64)
	l, ok := d.listeners[id]
	if !ok || l.target != n || l.trigger != trigger {
		return fmt.Errorf("%w: %v", ErrUnknownListener, token)
	}
	delete(d.listeners, id)
	d.record(protocol.Op{Code: protocol.OpUnlisten, ID: n.id, Name: trigger, Listener: id})
	return nil
}

// SetProperty implements dom.PropertyHost. Only string and bool values
// have a wire form.
func (d *Document) SetProperty(el dom.Node, name string, value any) error {
	n, err := d.element(el)
	if err != nil {
		return err
	}
	switch value.(type) {
	case string, bool:
	default:
		return fmt.Errorf("%w: %T", protocol.ErrInvalidProperty, value)
	}
	d.record(protocol.Op{Code: protocol.OpSetProperty, ID: n.id, Name: name, Prop: value})
	return nil
}

// Focus implements dom.PropertyHost.
func (d *Document) Focus(el dom.Node) error {
	n, err := d.element(el)
	if err != nil {
		return err
	}
	d.record(protocol.Op{Code: protocol.OpFocus, ID: n.id})
	return nil
}

// Pending returns the number of ops recorded since the last Flush.
func (d *Document) Pending() int {
	return len(d.ops)
}

// Flush returns the recorded ops as the next batch and starts a new one.
// Sequence numbers start at 1 and grow by one per call, so an empty pass
// still produces a batch.
func (d *Document) Flush() *protocol.Batch {
	d.seq++
	b := &protocol.Batch{Seq: d.seq, Ops: d.ops}
	d.ops = nil
	return b
}

// NextSeq returns the sequence number the next Flush will use.
func (d *Document) NextSeq() uint64 {
	return d.seq + 1
}

// Dispatch delivers a client event to the listener it names. The listener
// function receives ev itself.
func (d *Document) Dispatch(ev *protocol.Event) error {
	fn, err := d.Listener(ev)
	if err != nil {
		return err
	}
	fn(ev)
	return nil
}

// Listener returns the function registered for the listener ev names.
// Callers that serialize access to the document can look the function up
// under their lock and call it after releasing it.
func (d *Document) Listener(ev *protocol.Event) (dom.EventFunc, error) {
	l, ok := d.listeners[ev.Listener]
	if !ok || l.trigger != ev.Trigger {
		return nil, fmt.Errorf("%w: %d %s", ErrUnknownListener, ev.Listener, ev.Trigger)
	}
	return l.fn, nil
}

// Listeners returns the number of live listeners.
func (d *Document) Listeners() int {
	return len(d.listeners)
}

var (
	_ dom.Host         = (*Document)(nil)
	_ dom.PropertyHost = (*Document)(nil)
)
