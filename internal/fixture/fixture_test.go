package fixture_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/internal/fixture"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
	"github.com/vango-dev/reconcile/pkg/vtest"
)

const listYAML = `
tag: ul
key: list
attrs:
  z: "1"
  a: "2"
  hidden: false
  disabled: true
  n: 3
style:
  margin: "0"
  color: red
children:
  - tag: li
    key: ""
    children: [a]
  - text: b
  - null
  - {empty: true}
`

const listJSON = `{
  "tag": "ul", "key": "list",
  "attrs": {"z": "1", "a": "2", "hidden": false, "disabled": true, "n": 3},
  "style": {"margin": "0", "color": "red"},
  "children": [{"tag": "li", "key": "", "children": ["a"]}, {"text": "b"}, null, {"empty": true}]
}`

func TestParsePreservesOrder(t *testing.T) {
	v, err := fixture.Parse([]byte(listYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	el := v.El
	if el.Tag != "ul" || el.Key != "list" || !el.HasKey {
		t.Errorf("root = %s, want <ul key=list>", v)
	}
	if diff := cmp.Diff([]string{"z", "a", "hidden", "disabled", "n"}, el.Attrs.Keys()); diff != "" {
		t.Errorf("attribute order mismatch (-want +got):\n%s", diff)
	}
	if a, _ := el.Attrs.Get("hidden"); !a.IsIgnored() {
		t.Errorf("hidden = %v, want ignored", a)
	}
	if a, _ := el.Attrs.Get("disabled"); !a.IsPresent() {
		t.Errorf("disabled = %v, want present", a)
	}
	if got := el.Style.String(); got != "margin:0;color:red" {
		t.Errorf("Style = %q, want margin:0;color:red", got)
	}

	if len(el.Children) != 4 {
		t.Fatalf("len(Children) = %d, want 4", len(el.Children))
	}
	li := el.Children[0].El
	if li == nil || !li.HasKey || li.Key != "" {
		t.Errorf("first child = %s, want <li> with the empty key", el.Children[0])
	}
	kinds := []vdom.VKind{el.Children[1].Kind, el.Children[2].Kind, el.Children[3].Kind}
	if diff := cmp.Diff([]vdom.VKind{vdom.KindText, vdom.KindEmpty, vdom.KindEmpty}, kinds); diff != "" {
		t.Errorf("child kinds mismatch (-want +got):\n%s", diff)
	}

	want := `<ul z="1" a="2" disabled="" n="3" style="margin:0;color:red"><li>a</li>b</ul>`
	if got := vtest.RenderToString(v); got != want {
		t.Errorf("rendered YAML = %q, want %q", got, want)
	}

	j, err := fixture.Parse([]byte(listJSON))
	if err != nil {
		t.Fatalf("Parse(JSON) error = %v", err)
	}
	if got := vtest.RenderToString(j); got != want {
		t.Errorf("rendered JSON = %q, want %q", got, want)
	}
}

func TestParseScalarsAndEmpty(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"document", "", "empty"},
		{"null", "null", "empty"},
		{"text", "hello", "text(hello)"},
		{"text_field", "text: hi", "text(hi)"},
		{"svg", "{tag: circle, ns: svg, key: c}", "<svg:circle key=c>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := fixture.Parse([]byte(tc.in))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := v.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}

	v, _ := fixture.Parse([]byte("{tag: my-widget, custom: true}"))
	if !v.El.Custom {
		t.Error("custom: true should mark the element custom")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code string
		line int
	}{
		{"syntax", "tag: [ul", "E180", 0},
		{"unknown_field", "tag: ul\ncolour: red", "E181", 2},
		{"no_tag", "attrs: {a: b}", "E181", 1},
		{"list_root", "[a, b]", "E181", 1},
		{"attrs_list", "tag: ul\nattrs: [a]", "E182", 2},
		{"attr_mapping", "tag: ul\nattrs:\n  a: {b: c}", "E182", 3},
		{"children_mapping", "tag: ul\nchildren: {a: b}", "E181", 2},
		{"null_key", "tag: ul\nkey: null", "E181", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fixture.Parse([]byte(tc.in), fixture.WithFile("t.yaml"))
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			if !errors.Is(err, errors.CategoryFixture) {
				t.Errorf("Parse() error = %v, want a fixture error", err)
			}
			ve := err.(*errors.VangoError)
			if ve.Code != tc.code {
				t.Errorf("Code = %s, want %s", ve.Code, tc.code)
			}
			if tc.line > 0 && (ve.Location == nil || ve.Location.Line != tc.line) {
				t.Errorf("Location = %v, want line %d", ve.Location, tc.line)
			}
		})
	}
}

func TestHandlers(t *testing.T) {
	var fired []string
	v, err := fixture.Parse([]byte(`
tag: div
children:
  - {tag: button, on: [click, input]}
  - {tag: a, key: k, on: click}
`), fixture.WithHandler(func(path, trigger string, ev dom.Event) {
		fired = append(fired, path+" "+trigger)
	}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	h := vtest.New(t)
	h.MustRender(v)
	if n := h.Rec.Count("AddEventListener"); n != 3 {
		t.Errorf("AddEventListener calls = %d, want 3", n)
	}
	h.Doc.Dispatch(vtest.Live(v.El.Children[0]), "click", nil)
	h.Doc.Dispatch(vtest.Live(v.El.Children[1]), "click", nil)

	want := []string{"div>button[0] click", "div>a[key=k] click"}
	if diff := cmp.Diff(want, fired); diff != "" {
		t.Errorf("fired mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	if err := os.WriteFile(path, []byte("tag: p\nchildren: [x]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := fixture.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if got := vtest.RenderToString(v); got != "<p>x</p>" {
		t.Errorf("rendered = %q, want <p>x</p>", got)
	}

	_, err = fixture.ParseFile(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, errors.CategoryCLI) {
		t.Errorf("ParseFile(missing) error = %v, want a CLI error", err)
	}
}
