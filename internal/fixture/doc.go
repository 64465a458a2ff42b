// Package fixture reads virtual trees from YAML or JSON documents, for the
// vdiff command and the render endpoint.
//
// A document is a single node. A string is a text node and null is an
// empty node. An element is a mapping:
//
//	tag: ul
//	key: list
//	attrs: {id: items, hidden: false, disabled: true}
//	style: {color: red}
//	on: [click]
//	children:
//	  - {tag: li, key: a, children: [first]}
//	  - text: second
//	  - null
//
// Mapping order is kept, so attrs and style come out in the order written.
// Errors carry the line and column of the offending node.
package fixture
