// Package htmldom implements dom.Host on an in-memory tree of
// golang.org/x/net/html nodes.
//
// It backs server-side rendering, the vdiff CLI and most tests:
//
//	doc := htmldom.New()
//	p := patch.New(doc)
//	p.Mount(ctx, tree, doc.Root())
//	fmt.Println(doc.String())
//
// Listeners never fire on their own; call Dispatch to simulate an event.
package htmldom
