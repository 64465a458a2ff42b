package vdom

import "testing"

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindEmpty, "Empty"},
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindNoChange, "NoChange"},
		{VKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("VKind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVNodeString(t *testing.T) {
	tests := []struct {
		name string
		node *VNode
		want string
	}{
		{"nil", nil, "<nil>"},
		{"empty", Empty(), "empty"},
		{"text", NewText("hi"), "text(hi)"},
		{"nochange", NoChange(), "nochange"},
		{"element", Div(), "<div>"},
		{"keyed", Li(Key("a")), "<li key=a>"},
		{"namespaced", Circle(Key("c")), "<svg:circle key=c>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestElKey(t *testing.T) {
	if _, ok := Div().ElKey(); ok {
		t.Error("unkeyed element reported a key")
	}
	if k, ok := Div(Key("")).ElKey(); !ok || k != "" {
		t.Errorf("ElKey() = %q, %v, want \"\", true", k, ok)
	}
	if NewText("x").HasKey() {
		t.Error("text node reported a key")
	}
	if Empty().HasKey() {
		t.Error("empty node reported a key")
	}
}

func TestIsAttached(t *testing.T) {
	tree := Div(Span("a"), "b")
	if tree.IsAttached() {
		t.Fatal("fresh tree is attached")
	}

	tree.El.Children[0].El.Children[0].Text.SetHandle("leaf")
	if !tree.IsAttached() {
		t.Error("IsAttached() = false with an attached descendant, want true")
	}

	tree.StripHandles()
	if tree.IsAttached() {
		t.Error("IsAttached() = true after StripHandles, want false")
	}
}

func TestCloneIsVirtual(t *testing.T) {
	orig := Div(Key("k"), Class("card"), Css("color", "red"), OnClick(nil), Span("x"))
	orig.El.SetHandle("live")
	orig.El.Children[0].El.SetHandle("live-span")

	c := orig.Clone()
	if c.IsAttached() {
		t.Error("clone holds a live node")
	}
	if c.El == orig.El {
		t.Error("clone shares the El payload")
	}
	if !c.El.HasKey || c.El.Key != "k" {
		t.Errorf("clone key = %q, %v, want k, true", c.El.Key, c.El.HasKey)
	}
	if !c.El.Attrs.Equal(orig.El.Attrs) {
		t.Errorf("clone attrs = %v, want %v", c.El.Attrs, orig.El.Attrs)
	}
	if !c.El.Style.Equal(orig.El.Style) {
		t.Errorf("clone style = %v, want %v", c.El.Style, orig.El.Style)
	}
	if got := c.El.Handlers.Triggers(); len(got) != 1 || got[0] != "click" {
		t.Errorf("clone triggers = %v, want [click]", got)
	}

	c.El.Attrs.Set("id", AtString("changed"))
	if _, ok := orig.El.Attrs.Get("id"); ok {
		t.Error("mutating the clone changed the original")
	}
}

func TestTakeHandle(t *testing.T) {
	txt := NewText("x")
	txt.Text.SetHandle("n1")
	if got := txt.Text.TakeHandle(); got != "n1" {
		t.Errorf("TakeHandle() = %v, want n1", got)
	}
	if txt.Handle() != nil {
		t.Errorf("Handle() = %v after TakeHandle, want nil", txt.Handle())
	}
}

func TestNamespacePrefix(t *testing.T) {
	for _, ns := range []Namespace{NamespaceHTML, NamespaceSVG, NamespaceMathML, NamespaceXUL, NamespaceXBL} {
		if got := NamespaceFromPrefix(ns.Prefix()); got != ns {
			t.Errorf("NamespaceFromPrefix(%q) = %q, want %q", ns.Prefix(), got, ns)
		}
	}
	if got := NamespaceFromPrefix("urn:x"); got != "urn:x" {
		t.Errorf("NamespaceFromPrefix(urn:x) = %q, want urn:x", got)
	}
}

func TestRefArgument(t *testing.T) {
	r := NewElRef()
	v := Div(Ref(r), Ref(nil))
	if len(v.El.Refs) != 1 || v.El.Refs[0] != r {
		t.Fatalf("Refs = %v, want [%p]", v.El.Refs, r)
	}
	if c := v.Clone(); len(c.El.Refs) != 1 || c.El.Refs[0] != r {
		t.Errorf("clone Refs = %v, want the same ref", c.El.Refs)
	}

	r.Set("live")
	if got := r.Get(); got != "live" {
		t.Errorf("Get() = %v, want live", got)
	}
}

func TestNoChange(t *testing.T) {
	v := NoChange()
	if !v.IsNoChange() || v.IsEmpty() {
		t.Errorf("NoChange() IsNoChange = %v, IsEmpty = %v, want true, false", v.IsNoChange(), v.IsEmpty())
	}
	if Empty().IsNoChange() {
		t.Error("Empty() reported NoChange")
	}
	if _, ok := PatchKeyOf(v); ok {
		t.Error("NoChange has a patch key")
	}
	if c := v.Clone(); !c.IsNoChange() {
		t.Errorf("Clone() = %v, want nochange", c)
	}
}
