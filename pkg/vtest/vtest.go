package vtest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Harness keeps an in-memory document in step with successive trees.
type Harness struct {
	t       testing.TB
	Doc     *htmldom.Document
	Rec     *Recorder
	Patcher *patch.Patcher
	tree    *vdom.VNode
}

// New returns a harness with an empty document. Logs are discarded unless
// opts sets a logger.
func New(t testing.TB, opts ...patch.Option) *Harness {
	t.Helper()
	doc := htmldom.New()
	rec := NewRecorder(doc)
	opts = append([]patch.Option{patch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return &Harness{
		t:       t,
		Doc:     doc,
		Rec:     rec,
		Patcher: patch.New(rec, opts...),
		tree:    vdom.Empty(),
	}
}

// Render reconciles the document to tree and clears the call log first,
// so Rec holds exactly the calls of this pass.
func (h *Harness) Render(tree *vdom.VNode) error {
	h.t.Helper()
	h.Rec.Reset()
	_, err := h.Patcher.Reconcile(context.Background(), h.tree, tree, h.Doc.Root(), nil)
	h.tree = tree
	return err
}

// MustRender is Render failing the test on error.
func (h *Harness) MustRender(tree *vdom.VNode) {
	h.t.Helper()
	if err := h.Render(tree); err != nil {
		h.t.Fatalf("Render(%v) error = %v", tree, err)
	}
}

// Tree returns the last rendered tree.
func (h *Harness) Tree() *vdom.VNode {
	return h.tree
}

// HTML renders the document.
func (h *Harness) HTML() string {
	return h.Doc.String()
}

// Live returns the live node behind v as an *html.Node.
func Live(v *vdom.VNode) *html.Node {
	n, _ := v.Handle().(*html.Node)
	return n
}

// RenderToString mounts node into a fresh document and returns its HTML.
//
// Example:
//
//	html := vtest.RenderToString(Card("hello"))
//	if !strings.Contains(html, "hello") {
//	    t.Error("missing title")
//	}
func RenderToString(node *vdom.VNode) string {
	doc := htmldom.New()
	p := patch.New(doc, patch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if _, err := p.Mount(context.Background(), node, doc.Root()); err != nil {
		return ""
	}
	return doc.String()
}

// ExpectContains asserts that rendered output contains expected substring.
func ExpectContains(t *testing.T, node *vdom.VNode, expected string) {
	t.Helper()
	out := RenderToString(node)
	if !strings.Contains(out, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(out, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t *testing.T, node *vdom.VNode, unexpected string) {
	t.Helper()
	out := RenderToString(node)
	if strings.Contains(out, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(out, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
//
// Example:
//
//	vtest.ExpectAttribute(t, Button(Class("btn")), "class", "btn")
func ExpectAttribute(t *testing.T, node *vdom.VNode, attr, value string) {
	t.Helper()
	out := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(out, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(out, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
