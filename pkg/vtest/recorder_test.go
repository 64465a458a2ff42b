package vtest_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/vdom"
	"github.com/vango-dev/reconcile/pkg/vtest"
)

func TestRecorderForwards(t *testing.T) {
	doc := htmldom.New()
	rec := vtest.NewRecorder(doc)

	el, _ := rec.CreateElement("p", "")
	_ = rec.SetAttribute(el, "id", "x")
	txt, _ := rec.CreateText("hi")
	_ = rec.InsertBefore(el, txt, nil)
	_ = rec.InsertBefore(doc.Root(), el, nil)
	l, _ := rec.AddEventListener(el, "click", func(dom.Event) {})
	_ = rec.RemoveEventListener(el, "click", l)
	_ = rec.SetProperty(el, "value", 3)
	_ = rec.Focus(el)
	_ = rec.RemoveAttribute(el, "id")
	_ = rec.SetTextContent(txt, "bye")
	_ = rec.RemoveChild(doc.Root(), el)

	want := []string{
		`CreateElement p`,
		`SetAttribute p id="x"`,
		`CreateText "hi"`,
		`InsertBefore "hi" in p#x`,
		`InsertBefore p#x in body`,
		`AddEventListener p#x click`,
		`RemoveEventListener p#x click`,
		`SetProperty p#x value=3`,
		`Focus p#x`,
		`RemoveAttribute p#x id`,
		`SetTextContent "hi" "bye"`,
		`RemoveChild p from body`,
	}
	if diff := cmp.Diff(want, rec.Strings()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if got := len(rec.Mutations()); got != len(want)-2 {
		t.Errorf("len(Mutations()) = %d, want %d", got, len(want)-2)
	}
	if rec.Count("InsertBefore") != 2 {
		t.Errorf("Count(InsertBefore) = %d, want 2", rec.Count("InsertBefore"))
	}
	if doc.String() != "" {
		t.Errorf("document = %q, want empty", doc.String())
	}

	rec.Reset()
	if len(rec.Calls()) != 0 {
		t.Error("Reset() should clear the log")
	}
}

func TestRecorderFail(t *testing.T) {
	doc := htmldom.New()
	rec := vtest.NewRecorder(doc)
	boom := errors.New("boom")
	rec.Fail = func(c vtest.Call) error {
		if c.Op == "CreateText" {
			return boom
		}
		return nil
	}

	if _, err := rec.CreateText("x"); !errors.Is(err, boom) {
		t.Errorf("CreateText() error = %v, want boom", err)
	}
	if _, err := rec.CreateElement("svg", string(vdom.NamespaceSVG)); err != nil {
		t.Errorf("CreateElement() error = %v", err)
	}
	if diff := cmp.Diff([]string{`CreateText "x"`, `CreateElement svg:svg`}, rec.Strings()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestHarness(t *testing.T) {
	h := vtest.New(t)
	h.MustRender(vdom.Ul(vdom.Li(vdom.Key("a"), "a")))
	h.MustRender(vdom.Ul(vdom.Li(vdom.Key("b"), "b"), vdom.Li(vdom.Key("a"), "a")))

	if got, want := h.HTML(), "<ul><li>b</li><li>a</li></ul>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if h.Rec.Count("CreateElement") != 1 {
		t.Errorf("second pass created %d elements, want 1", h.Rec.Count("CreateElement"))
	}
}

func TestRenderAssertions(t *testing.T) {
	card := vdom.Div(vdom.Class("card"), vdom.H1("Welcome"))

	if got, want := vtest.RenderToString(card), `<div class="card"><h1>Welcome</h1></div>`; got != want {
		t.Errorf("RenderToString() = %q, want %q", got, want)
	}
	vtest.ExpectContains(t, vdom.Div(vdom.H1("Welcome")), "Welcome")
	vtest.ExpectNotContains(t, vdom.Div(vdom.H1("Welcome")), "Login")
	vtest.ExpectAttribute(t, vdom.Div(vdom.Class("card")), "class", "card")
}
