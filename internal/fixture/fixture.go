package fixture

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// HandlerFunc is called when an event fires on a fixture element. path
// identifies the element, as in "ul>li[1]".
type HandlerFunc func(path, trigger string, ev dom.Event)

// Decoder turns fixture documents into virtual trees.
type Decoder struct {
	file    string
	handler HandlerFunc
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithFile names the input in error locations.
func WithFile(name string) Option {
	return func(d *Decoder) {
		d.file = name
	}
}

// WithHandler sets the function behind every "on" trigger. Without it
// handlers do nothing.
func WithHandler(fn HandlerFunc) Option {
	return func(d *Decoder) {
		d.handler = fn
	}
}

// NewDecoder returns a decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{file: "<input>"}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Parse decodes a fixture with default options.
func Parse(data []byte, opts ...Option) (*vdom.VNode, error) {
	return NewDecoder(opts...).Decode(data)
}

// ParseFile reads and decodes a fixture file.
func ParseFile(path string, opts ...Option) (*vdom.VNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E140").
				WithDetail("No fixture at " + path).
				WithSuggestion("Check the path, or pass '-' to read from stdin")
		}
		return nil, errors.New("E140").Wrap(err)
	}
	return Parse(data, append([]Option{WithFile(path)}, opts...)...)
}

// Decode parses one fixture document. An empty document is an Empty node.
func (d *Decoder) Decode(data []byte) (*vdom.VNode, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.New("E180").
			WithDetail(err.Error()).
			WithLocationFromError(d.file, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return vdom.Empty(), nil
	}
	return d.node(doc.Content[0], "")
}

func (d *Decoder) fail(code string, n *yaml.Node, format string, args ...any) error {
	return errors.New(code).
		WithDetail(fmt.Sprintf(format, args...)).
		WithLocation(d.file, n.Line, n.Column)
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// node decodes a scalar, null or mapping into a VNode.
func (d *Decoder) node(n *yaml.Node, path string) (*vdom.VNode, error) {
	switch {
	case n.Kind == yaml.AliasNode:
		return d.node(n.Alias, path)
	case isNull(n):
		return vdom.Empty(), nil
	case n.Kind == yaml.ScalarNode:
		return vdom.NewText(n.Value), nil
	case n.Kind != yaml.MappingNode:
		return nil, d.fail("E181", n, "expected a string, null or mapping, got %s", kindName(n))
	}

	var (
		tag, text, key, ns         *yaml.Node
		attrs, style, on, children *yaml.Node
		empty, custom              bool
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch k.Value {
		case "tag":
			tag = v
		case "text":
			text = v
		case "empty":
			if err := v.Decode(&empty); err != nil {
				return nil, d.fail("E181", v, "empty must be a boolean")
			}
		case "key":
			key = v
		case "namespace", "ns":
			ns = v
		case "custom":
			if err := v.Decode(&custom); err != nil {
				return nil, d.fail("E181", v, "custom must be a boolean")
			}
		case "attrs":
			attrs = v
		case "style":
			style = v
		case "on":
			on = v
		case "children":
			children = v
		default:
			return nil, d.fail("E181", k, "unknown field %q", k.Value)
		}
	}

	switch {
	case text != nil:
		if tag != nil || empty {
			return nil, d.fail("E181", n, "a text node takes no other fields")
		}
		if text.Kind != yaml.ScalarNode {
			return nil, d.fail("E181", text, "text must be a scalar")
		}
		return vdom.NewText(text.Value), nil
	case empty:
		return vdom.Empty(), nil
	case tag == nil || tag.Kind != yaml.ScalarNode || tag.Value == "":
		return nil, d.fail("E181", n, "element has no tag")
	}

	el := vdom.NewEl(tag.Value)
	if path == "" {
		path = tag.Value
	}
	if key != nil {
		if key.Kind != yaml.ScalarNode || isNull(key) {
			return nil, d.fail("E181", key, "key must be a scalar")
		}
		el.Key, el.HasKey = key.Value, true
	}
	if ns != nil {
		el.Namespace = vdom.NamespaceFromPrefix(ns.Value)
	}
	el.Custom = custom

	if err := d.attrs(el, attrs); err != nil {
		return nil, err
	}
	if err := d.style(el, style); err != nil {
		return nil, err
	}
	if err := d.handlers(el, on, path); err != nil {
		return nil, err
	}

	if children != nil {
		if children.Kind != yaml.SequenceNode {
			return nil, d.fail("E181", children, "children must be a list")
		}
		for i, c := range children.Content {
			child, err := d.node(c, childPath(path, c, i))
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		}
	}
	return el.Node(), nil
}

// attrs decodes an ordered mapping: strings and numbers set the attribute,
// true makes it present, false or null ignore it.
func (d *Decoder) attrs(el *vdom.El, n *yaml.Node) error {
	if n == nil {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return d.fail("E182", n, "attrs must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return d.fail("E182", v, "attribute %q must be a scalar", k.Value)
		}
		switch v.Tag {
		case "!!null":
			el.Attrs.Set(k.Value, vdom.AtIgnored())
		case "!!bool":
			var b bool
			if err := v.Decode(&b); err != nil {
				return d.fail("E182", v, "attribute %q: %v", k.Value, err)
			}
			el.Attrs.Set(k.Value, vdom.AtBool(b))
		default:
			el.Attrs.Set(k.Value, vdom.AtString(v.Value))
		}
	}
	return nil
}

// style decodes an ordered mapping of CSS properties; null ignores one.
func (d *Decoder) style(el *vdom.El, n *yaml.Node) error {
	if n == nil {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return d.fail("E182", n, "style must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch {
		case isNull(v):
			el.Style.Set(k.Value, vdom.CSSIgnored())
		case v.Kind == yaml.ScalarNode:
			el.Style.Set(k.Value, vdom.CSS(v.Value))
		default:
			return d.fail("E182", v, "style %q must be a scalar", k.Value)
		}
	}
	return nil
}

// handlers decodes a trigger or list of triggers.
func (d *Decoder) handlers(el *vdom.El, n *yaml.Node, path string) error {
	if n == nil {
		return nil
	}
	var triggers []string
	switch n.Kind {
	case yaml.ScalarNode:
		triggers = []string{n.Value}
	case yaml.SequenceNode:
		if err := n.Decode(&triggers); err != nil {
			return d.fail("E181", n, "on must list event names")
		}
	default:
		return d.fail("E181", n, "on must list event names")
	}
	for _, trigger := range triggers {
		el.Handlers.Add(vdom.On(trigger, d.callback(path, trigger)))
	}
	return nil
}

func (d *Decoder) callback(path, trigger string) func(dom.Event) {
	fn := d.handler
	return func(ev dom.Event) {
		if fn != nil {
			fn(path, trigger, ev)
		}
	}
}

// childPath names the i-th child: its key when it has one, its index
// otherwise.
func childPath(parent string, n *yaml.Node, i int) string {
	tag, key, keyed := "#", "", false
	if n.Kind == yaml.MappingNode {
		for j := 0; j+1 < len(n.Content); j += 2 {
			switch n.Content[j].Value {
			case "tag":
				tag = n.Content[j+1].Value
			case "key":
				key, keyed = n.Content[j+1].Value, true
			}
		}
	}
	if keyed {
		return fmt.Sprintf("%s>%s[key=%s]", parent, tag, key)
	}
	return fmt.Sprintf("%s>%s[%d]", parent, tag, i)
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "a list"
	case yaml.DocumentNode:
		return "a document"
	default:
		return strings.TrimPrefix(n.Tag, "!!")
	}
}
