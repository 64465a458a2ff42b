package vtest

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Call is one recorded host call.
type Call struct {
	Op   string   // Host method name, e.g. "SetAttribute"
	Node string   // Description of the node the call acts on
	Args []string // Remaining arguments, already described
}

// String renders the call as "Op node args...".
func (c Call) String() string {
	s := c.Op + " " + c.Node
	if len(c.Args) > 0 {
		s += " " + strings.Join(c.Args, " ")
	}
	return s
}

// Recorder is a dom.Host that logs every call before forwarding it to an
// inner host. It always implements dom.PropertyHost; property calls are
// forwarded only when the inner host supports them.
type Recorder struct {
	inner dom.Host
	props dom.PropertyHost
	calls []Call

	// Fail, if set, is consulted before each call is forwarded. A non-nil
	// result is returned to the caller and the inner host is not called.
	Fail func(Call) error
}

// NewRecorder wraps inner.
func NewRecorder(inner dom.Host) *Recorder {
	r := &Recorder{inner: inner}
	r.props, _ = inner.(dom.PropertyHost)
	return r
}

// Calls returns the recorded calls.
func (r *Recorder) Calls() []Call {
	return r.calls
}

// Strings returns the recorded calls rendered with Call.String.
func (r *Recorder) Strings() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.String()
	}
	return out
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Mutations returns the recorded calls other than SetProperty and Focus.
func (r *Recorder) Mutations() []string {
	var out []string
	for _, c := range r.calls {
		if c.Op == "SetProperty" || c.Op == "Focus" {
			continue
		}
		out = append(out, c.String())
	}
	return out
}

// Reset clears the log.
func (r *Recorder) Reset() {
	r.calls = nil
}

func (r *Recorder) record(op string, node string, args ...string) error {
	c := Call{Op: op, Node: node, Args: args}
	r.calls = append(r.calls, c)
	if r.Fail != nil {
		return r.Fail(c)
	}
	return nil
}

// Describe renders a live node for the call log: "tag#id" for elements,
// the quoted content for text nodes.
func Describe(n dom.Node) string {
	h, ok := n.(*html.Node)
	if !ok || h == nil {
		if n == nil {
			return "<nil>"
		}
		return fmt.Sprint(n)
	}
	switch h.Type {
	case html.TextNode:
		return strconv.Quote(h.Data)
	case html.ElementNode:
		s := h.Data
		if h.Namespace != "" {
			s = h.Namespace + ":" + s
		}
		for _, a := range h.Attr {
			if a.Key == "id" {
				s += "#" + a.Val
			}
		}
		return s
	default:
		return fmt.Sprintf("node(%d)", h.Type)
	}
}

// CreateElement implements dom.Host.
func (r *Recorder) CreateElement(tag, namespace string) (dom.Node, error) {
	name := tag
	if namespace != "" {
		name = vdom.Namespace(namespace).Prefix() + ":" + tag
	}
	if err := r.record("CreateElement", name); err != nil {
		return nil, err
	}
	return r.inner.CreateElement(tag, namespace)
}

// CreateText implements dom.Host.
func (r *Recorder) CreateText(content string) (dom.Node, error) {
	if err := r.record("CreateText", strconv.Quote(content)); err != nil {
		return nil, err
	}
	return r.inner.CreateText(content)
}

// InsertBefore implements dom.Host.
func (r *Recorder) InsertBefore(parent, child, ref dom.Node) error {
	args := []string{"in", Describe(parent)}
	if ref != nil {
		args = append(args, "before", Describe(ref))
	}
	if err := r.record("InsertBefore", Describe(child), args...); err != nil {
		return err
	}
	return r.inner.InsertBefore(parent, child, ref)
}

// RemoveChild implements dom.Host.
func (r *Recorder) RemoveChild(parent, child dom.Node) error {
	if err := r.record("RemoveChild", Describe(child), "from", Describe(parent)); err != nil {
		return err
	}
	return r.inner.RemoveChild(parent, child)
}

// SetAttribute implements dom.Host.
func (r *Recorder) SetAttribute(el dom.Node, name, value string) error {
	if err := r.record("SetAttribute", Describe(el), name+"="+strconv.Quote(value)); err != nil {
		return err
	}
	return r.inner.SetAttribute(el, name, value)
}

// RemoveAttribute implements dom.Host.
func (r *Recorder) RemoveAttribute(el dom.Node, name string) error {
	if err := r.record("RemoveAttribute", Describe(el), name); err != nil {
		return err
	}
	return r.inner.RemoveAttribute(el, name)
}

// SetTextContent implements dom.Host.
func (r *Recorder) SetTextContent(node dom.Node, content string) error {
	if err := r.record("SetTextContent", Describe(node), strconv.Quote(content)); err != nil {
		return err
	}
	return r.inner.SetTextContent(node, content)
}

// AddEventListener implements dom.Host.
func (r *Recorder) AddEventListener(target dom.Node, trigger string, fn dom.EventFunc) (dom.Listener, error) {
	if err := r.record("AddEventListener", Describe(target), trigger); err != nil {
		return nil, err
	}
	return r.inner.AddEventListener(target, trigger, fn)
}

// RemoveEventListener implements dom.Host.
func (r *Recorder) RemoveEventListener(target dom.Node, trigger string, l dom.Listener) error {
	if err := r.record("RemoveEventListener", Describe(target), trigger); err != nil {
		return err
	}
	return r.inner.RemoveEventListener(target, trigger, l)
}

// SetProperty implements dom.PropertyHost.
func (r *Recorder) SetProperty(el dom.Node, name string, value any) error {
	if err := r.record("SetProperty", Describe(el), fmt.Sprintf("%s=%v", name, value)); err != nil {
		return err
	}
	if r.props == nil {
		return nil
	}
	return r.props.SetProperty(el, name, value)
}

// Focus implements dom.PropertyHost.
func (r *Recorder) Focus(el dom.Node) error {
	if err := r.record("Focus", Describe(el)); err != nil {
		return err
	}
	if r.props == nil {
		return nil
	}
	return r.props.Focus(el)
}

var (
	_ dom.Host         = (*Recorder)(nil)
	_ dom.PropertyHost = (*Recorder)(nil)
)
