package vdom

// Namespace is an XML namespace URI for elements created with
// createElementNS. The zero value means "no namespace".
type Namespace string

// Common namespaces.
const (
	NamespaceHTML   Namespace = "http://www.w3.org/1999/xhtml"
	NamespaceSVG    Namespace = "http://www.w3.org/2000/svg"
	NamespaceMathML Namespace = "http://www.w3.org/1998/mathml"
	NamespaceXUL    Namespace = "http://www.mozilla.org/keymaster/gatekeeper/there.is.only.xul"
	NamespaceXBL    Namespace = "http://www.mozilla.org/xbl"
)

// Prefix returns a short name for well-known namespaces and the URI itself
// otherwise.
func (ns Namespace) Prefix() string {
	switch ns {
	case NamespaceHTML:
		return "html"
	case NamespaceSVG:
		return "svg"
	case NamespaceMathML:
		return "math"
	case NamespaceXUL:
		return "xul"
	case NamespaceXBL:
		return "xbl"
	default:
		return string(ns)
	}
}

// NamespaceFromPrefix maps the short names returned by Prefix back to
// namespace URIs. Unknown values are taken as URIs.
func NamespaceFromPrefix(s string) Namespace {
	switch s {
	case "":
		return ""
	case "html":
		return NamespaceHTML
	case "svg":
		return NamespaceSVG
	case "math", "mathml":
		return NamespaceMathML
	case "xul":
		return NamespaceXUL
	case "xbl":
		return NamespaceXBL
	default:
		return Namespace(s)
	}
}
