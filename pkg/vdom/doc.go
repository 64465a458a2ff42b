// Package vdom provides the virtual DOM node model and the child-list diff.
//
// # Core Types
//
// VNode is the fundamental building block: an Empty placeholder, an element
// (El) or a text node (Text). Elements carry ordered attributes (Attrs), an
// ordered inline style (Style), event handlers grouped by trigger
// (HandlerManager) and children. A node is either purely virtual or bound to
// one live node of a dom.Host.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Ul(Class("list"),
//	    Li(Key("a"), "First"),
//	    Li(Key("b"), "Second", OnClick(handler)),
//	)
//
// # Diffing
//
// PatchGen compares two child lists and lazily yields Commands. Children are
// paired by position until a keyed element shows up; after that they are
// matched by PatchKey (namespace, tag and key). Applying the commands to a
// live tree is the job of package patch.
package vdom
