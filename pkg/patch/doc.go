// Package patch applies virtual trees to a live rendering surface.
//
// A Patcher consumes the previous tree and a freshly built one and issues
// the host calls that bring the live nodes in line with the new tree.
// Live handles move from the old tree into the new one; the old tree is
// spent after the pass.
//
//	doc := htmldom.New()
//	p := patch.New(doc, patch.WithLogger(logger))
//
//	tree := view(state)
//	p.Mount(ctx, tree, doc.Root())
//	...
//	next := view(state)
//	p.Reconcile(ctx, tree, next, doc.Root(), nil)
//	tree = next
//
// # Failures
//
// Broken bookkeeping, such as an old node without a live node, panics with
// an invariant error. Host failures are returned as platform errors:
// attribute, text, listener and property failures are collected while the
// pass goes on, and a failed create, insert or remove ends the pass.
//
// # Observability
//
// WithMetrics records Prometheus counters for commands, passes and host
// failures. Reconcile opens one OpenTelemetry span per pass.
package patch
