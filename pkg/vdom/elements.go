package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Key sets the reconciliation key of an element.
type Key string

// Ref binds r to the live node of the element.
func Ref(r *ElRef) *ElRef { return r }

// customFlag marks an element as custom; see Custom.
type customFlag struct{}

// Custom marks the element as always rebuilt instead of patched.
func Custom() any { return customFlag{} }

// createElement creates a new element VNode with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, Key, StyleProp, []StyleProp,
// EventHandler, []EventHandler, Namespace, Custom(), *ElRef, *VNode,
// []*VNode and string (shorthand for a text child). Anything else panics.
func createElement(ns Namespace, tag string, args []any) *VNode {
	el := NewEl(tag)
	el.Namespace = ns

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional arguments)
			continue

		case Attr:
			el.Attrs.Merge(attrsOf(v))

		case []Attr:
			el.Attrs.Merge(attrsOf(v...))

		case Key:
			el.Key, el.HasKey = string(v), true

		case StyleProp:
			el.Style.Set(v.Name, v.Value)

		case []StyleProp:
			for _, p := range v {
				el.Style.Set(p.Name, p.Value)
			}

		case EventHandler:
			el.Handlers.Add(v)

		case []EventHandler:
			el.Handlers.Add(v...)

		case Namespace:
			el.Namespace = v

		case customFlag:
			el.Custom = true

		case *ElRef:
			if v != nil {
				el.Refs = append(el.Refs, v)
			}

		case *VNode:
			if v != nil {
				el.Children = append(el.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					el.Children = append(el.Children, child)
				}
			}

		case string:
			el.Children = append(el.Children, NewText(v))

		default:
			panic("vdom: unsupported element argument type")
		}
	}

	return el.Node()
}

// H creates an element with an arbitrary tag.
func H(tag string, args ...any) *VNode { return createElement("", tag, args) }

// NS creates an element in namespace ns.
func NS(ns Namespace, tag string, args ...any) *VNode { return createElement(ns, tag, args) }

// Document structure elements

func Html(args ...any) *VNode  { return createElement("", "html", args) }
func Head(args ...any) *VNode  { return createElement("", "head", args) }
func Body(args ...any) *VNode  { return createElement("", "body", args) }
func Title(args ...any) *VNode { return createElement("", "title", args) }

// Content sectioning elements

func Header(args ...any) *VNode  { return createElement("", "header", args) }
func Footer(args ...any) *VNode  { return createElement("", "footer", args) }
func Main(args ...any) *VNode    { return createElement("", "main", args) }
func Nav(args ...any) *VNode     { return createElement("", "nav", args) }
func Section(args ...any) *VNode { return createElement("", "section", args) }
func Article(args ...any) *VNode { return createElement("", "article", args) }
func H1(args ...any) *VNode      { return createElement("", "h1", args) }
func H2(args ...any) *VNode      { return createElement("", "h2", args) }
func H3(args ...any) *VNode      { return createElement("", "h3", args) }

// Text content elements

func Div(args ...any) *VNode  { return createElement("", "div", args) }
func P(args ...any) *VNode    { return createElement("", "p", args) }
func Span(args ...any) *VNode { return createElement("", "span", args) }
func Pre(args ...any) *VNode  { return createElement("", "pre", args) }
func Ul(args ...any) *VNode   { return createElement("", "ul", args) }
func Ol(args ...any) *VNode   { return createElement("", "ol", args) }
func Li(args ...any) *VNode   { return createElement("", "li", args) }
func Hr(args ...any) *VNode   { return createElement("", "hr", args) }

// Inline text semantics

func A(args ...any) *VNode      { return createElement("", "a", args) }
func Strong(args ...any) *VNode { return createElement("", "strong", args) }
func Em(args ...any) *VNode     { return createElement("", "em", args) }
func Code(args ...any) *VNode   { return createElement("", "code", args) }
func Br(args ...any) *VNode     { return createElement("", "br", args) }

// Form elements

func Form(args ...any) *VNode     { return createElement("", "form", args) }
func Input(args ...any) *VNode    { return createElement("", "input", args) }
func Textarea(args ...any) *VNode { return createElement("", "textarea", args) }
func Select(args ...any) *VNode   { return createElement("", "select", args) }
func Option(args ...any) *VNode   { return createElement("", "option", args) }
func Button(args ...any) *VNode   { return createElement("", "button", args) }
func Label(args ...any) *VNode    { return createElement("", "label", args) }

// Table elements

func Table(args ...any) *VNode { return createElement("", "table", args) }
func Tbody(args ...any) *VNode { return createElement("", "tbody", args) }
func Tr(args ...any) *VNode    { return createElement("", "tr", args) }
func Td(args ...any) *VNode    { return createElement("", "td", args) }

// Media elements

func Img(args ...any) *VNode    { return createElement("", "img", args) }
func Canvas(args ...any) *VNode { return createElement("", "canvas", args) }

// SVG elements

func Svg(args ...any) *VNode    { return createElement(NamespaceSVG, "svg", args) }
func G(args ...any) *VNode      { return createElement(NamespaceSVG, "g", args) }
func Circle(args ...any) *VNode { return createElement(NamespaceSVG, "circle", args) }
func Rect(args ...any) *VNode   { return createElement(NamespaceSVG, "rect", args) }
func Path(args ...any) *VNode   { return createElement(NamespaceSVG, "path", args) }

// Math creates a MathML root element.
func Math(args ...any) *VNode { return createElement(NamespaceMathML, "math", args) }

// CustomElement creates an element with a custom tag name. Unlike H, the
// element is marked Custom and is rebuilt on every update.
func CustomElement(tag string, args ...any) *VNode {
	n := createElement("", tag, args)
	n.El.Custom = true
	return n
}
