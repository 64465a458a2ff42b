package vdom

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// label names a node in test output: key when keyed, tag otherwise, and
// the content for text.
func label(v *VNode) string {
	switch {
	case v.IsEmpty():
		return "empty"
	case v.Kind == KindText:
		return "'" + v.Text.Content + "'"
	case v.El.HasKey:
		return v.El.Key
	default:
		return v.El.Tag
	}
}

// attach gives every node of the list a fake live node named after it.
func attach(nodes ...*VNode) []*VNode {
	for _, n := range nodes {
		switch {
		case n.IsEmpty():
		case n.Kind == KindText:
			n.Text.SetHandle("h:" + label(n))
		default:
			n.El.SetHandle("h:" + label(n))
			attach(n.El.Children...)
		}
	}
	return nodes
}

func describe(c Command) string {
	var old, new string
	switch {
	case c.OldEl != nil:
		old = label(c.OldEl.Node())
	case c.OldText != nil:
		old = label(&VNode{Kind: KindText, Text: c.OldText})
	}
	switch {
	case c.NewEl != nil:
		new = label(c.NewEl.Node())
	case c.NewText != nil:
		new = label(&VNode{Kind: KindText, Text: c.NewText})
	}

	switch c.Op {
	case CmdAppendEl, CmdAppendText:
		return fmt.Sprintf("%v %s", c.Op, new)
	case CmdInsertEl, CmdInsertText:
		return fmt.Sprintf("%v %s before %v", c.Op, new, c.Before)
	case CmdRemoveEl, CmdRemoveText:
		return fmt.Sprintf("%v %s", c.Op, old)
	default:
		return fmt.Sprintf("%v %s -> %s", c.Op, old, new)
	}
}

func run(old, new []*VNode) []string {
	var got []string
	for cmd := range NewPatchGen(old, new).All() {
		got = append(got, describe(cmd))
	}
	return got
}

func li(key string) *VNode { return Li(Key(key)) }

func TestPatchGen(t *testing.T) {
	tests := []struct {
		name string
		old  []*VNode
		new  []*VNode
		want []string
	}{
		{
			name: "both empty lists",
		},
		{
			name: "first render",
			new:  []*VNode{Div(), NewText("x")},
			want: []string{"AppendEl div", "AppendText 'x'"},
		},
		{
			name: "clear",
			old:  attach(Div(), NewText("x")),
			want: []string{"RemoveEl div", "RemoveText 'x'"},
		},
		{
			name: "positional patch",
			old:  attach(NewText("a"), Span()),
			new:  []*VNode{NewText("b"), Span()},
			want: []string{"PatchText 'a' -> 'b'", "PatchEl span -> span"},
		},
		{
			name: "append surplus",
			old:  attach(Div()),
			new:  []*VNode{Div(), Span()},
			want: []string{"PatchEl div -> div", "AppendEl span"},
		},
		{
			name: "remove surplus",
			old:  attach(Div(), Span()),
			new:  []*VNode{Div()},
			want: []string{"PatchEl div -> div", "RemoveEl span"},
		},
		{
			name: "tag change replaces",
			old:  attach(Div()),
			new:  []*VNode{Span()},
			want: []string{"ReplaceElByEl div -> span"},
		},
		{
			name: "namespace change replaces",
			old:  attach(H("circle")),
			new:  []*VNode{Circle()},
			want: []string{"ReplaceElByEl circle -> circle"},
		},
		{
			name: "custom element never patched",
			old:  attach(CustomElement("x-chart")),
			new:  []*VNode{CustomElement("x-chart")},
			want: []string{"ReplaceElByEl x-chart -> x-chart"},
		},
		{
			name: "element to text",
			old:  attach(Div()),
			new:  []*VNode{NewText("t")},
			want: []string{"ReplaceElByText div -> 't'"},
		},
		{
			name: "text to element",
			old:  attach(NewText("t")),
			new:  []*VNode{Div()},
			want: []string{"ReplaceTextByEl 't' -> div"},
		},
		{
			name: "empty slots skipped",
			old:  attach(Empty(), Div()),
			new:  []*VNode{Empty(), Div()},
			want: []string{"PatchEl div -> div"},
		},
		{
			name: "element becomes empty",
			old:  attach(Div(), Span()),
			new:  []*VNode{Empty(), Span()},
			want: []string{"RemoveEl div", "PatchEl span -> span"},
		},
		{
			name: "text becomes empty",
			old:  attach(NewText("t")),
			new:  []*VNode{Empty()},
			want: []string{"RemoveText 't'"},
		},
		{
			name: "empty slot filled before next live sibling",
			old:  attach(Empty(), Empty(), Div()),
			new:  []*VNode{P(), Empty(), Div()},
			want: []string{"InsertEl p before h:div", "PatchEl div -> div"},
		},
		{
			name: "empty slot filled at the end",
			old:  attach(Div(), Empty()),
			new:  []*VNode{Div(), NewText("x")},
			want: []string{"PatchEl div -> div", "AppendText 'x'"},
		},
		{
			name: "nil children behave as empty",
			old:  attach(Div()),
			new:  []*VNode{nil, Div()},
			want: []string{"RemoveEl div", "AppendEl div"},
		},
		{
			name: "keyed identical",
			old:  attach(li("a"), li("b")),
			new:  []*VNode{li("a"), li("b")},
			want: []string{"PatchEl a -> a", "PatchEl b -> b"},
		},
		{
			name: "keyed insert in the middle",
			old:  attach(li("first"), li("last")),
			new:  []*VNode{li("first"), li("middle"), li("last")},
			want: []string{
				"PatchEl first -> first",
				"InsertEl middle before h:last",
				"PatchEl last -> last",
			},
		},
		{
			name: "keyed replace by key",
			old:  attach(li("first"), li("A"), li("last")),
			new:  []*VNode{li("first"), li("B"), li("last")},
			want: []string{
				"PatchEl first -> first",
				"ReplaceElByEl A -> B",
				"PatchEl last -> last",
			},
		},
		{
			name: "keyed rotate right",
			old:  attach(li("a"), li("b"), li("c")),
			new:  []*VNode{li("c"), li("a"), li("b")},
			want: []string{
				"InsertEl c before h:a",
				"PatchEl a -> a",
				"PatchEl b -> b",
				"RemoveEl c",
			},
		},
		{
			name: "keyed swap",
			old:  attach(li("a"), li("b")),
			new:  []*VNode{li("b"), li("a")},
			want: []string{
				"InsertEl b before h:a",
				"PatchEl a -> a",
				"RemoveEl b",
			},
		},
		{
			name: "keyed moves, replacement and tail",
			old:  attach(li("a"), li("b"), li("c"), li("d"), li("e"), li("f"), li("g"), li("h")),
			new:  []*VNode{li("a"), li("d"), li("e"), li("b"), li("c"), li("x"), li("f"), li("y")},
			want: []string{
				"PatchEl a -> a",
				"InsertEl d before h:b",
				"InsertEl e before h:b",
				"PatchEl b -> b",
				"PatchEl c -> c",
				"ReplaceElByEl d -> x",
				"RemoveEl e",
				"PatchEl f -> f",
				"ReplaceElByEl g -> y",
				"RemoveEl h",
			},
		},
		{
			name: "keyed remove first",
			old:  attach(li("a"), li("b"), li("c")),
			new:  []*VNode{li("b"), li("c")},
			want: []string{
				"RemoveEl a",
				"PatchEl b -> b",
				"PatchEl c -> c",
			},
		},
		{
			name: "keyed after empty old slot",
			old:  attach(Empty(), li("x")),
			new:  []*VNode{li("x")},
			want: []string{"PatchEl x -> x"},
		},
		{
			name: "keyed and text siblings",
			old:  attach(li("a"), NewText("one")),
			new:  []*VNode{li("a"), NewText("two")},
			want: []string{"PatchEl a -> a", "PatchText 'one' -> 'two'"},
		},
		{
			name: "keyed with no shared key",
			old:  attach(li("a"), li("b")),
			new:  []*VNode{li("c")},
			want: []string{"ReplaceElByEl a -> c", "RemoveEl b"},
		},
		{
			name: "keyed new tail appended",
			old:  attach(li("a")),
			new:  []*VNode{li("a"), li("b"), NewText("t")},
			want: []string{"PatchEl a -> a", "AppendEl b", "AppendText 't'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(tt.old, tt.new)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("commands mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPatchGenExhausted(t *testing.T) {
	g := NewPatchGen(attach(Div()), nil)
	if _, ok := g.Next(); !ok {
		t.Fatal("Next() = false, want the remove command")
	}
	for i := 0; i < 3; i++ {
		if cmd, ok := g.Next(); ok {
			t.Fatalf("Next() after exhaustion = %v, want false", cmd)
		}
	}
}

func TestPatchGenIsLazy(t *testing.T) {
	old := attach(Div(), Div(), Div())
	g := NewPatchGen(old, []*VNode{Div(), Div(), Div()})
	if _, ok := g.Next(); !ok {
		t.Fatal("Next() = false")
	}
	if g.oldPos != 1 || g.newPos != 1 {
		t.Errorf("consumed old=%d new=%d after one command, want 1, 1", g.oldPos, g.newPos)
	}
}

func TestPatchGenMissingHandlePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unattached keyed match")
		}
	}()
	// Old "b" is never attached, yet "a" must be inserted before it.
	run([]*VNode{li("b")}, []*VNode{li("a"), li("b")})
}

func TestPatchKeyOf(t *testing.T) {
	if _, ok := PatchKeyOf(Empty()); ok {
		t.Error("Empty node has a patch key")
	}
	t1, _ := PatchKeyOf(NewText("a"))
	t2, _ := PatchKeyOf(NewText("b"))
	if t1 != t2 {
		t.Errorf("text keys differ: %v vs %v", t1, t2)
	}
	k1, _ := PatchKeyOf(Li(Key("")))
	k2, _ := PatchKeyOf(Li())
	if k1 == k2 {
		t.Error("empty key equals no key")
	}
	k3, _ := PatchKeyOf(NS(NamespaceSVG, "li"))
	if k3 == k2 {
		t.Error("namespace ignored by patch key")
	}
}

func TestCanPatch(t *testing.T) {
	tests := []struct {
		name     string
		old, new *VNode
		want     bool
	}{
		{"same tag", Div(), Div(), true},
		{"different tag", Div(), Span(), false},
		{"same key", Li(Key("a")), Li(Key("a")), true},
		{"different key", Li(Key("a")), Li(Key("b")), false},
		{"key vs no key", Li(Key("")), Li(), false},
		{"different namespace", H("a"), NS(NamespaceSVG, "a"), false},
		{"custom new", Div(), H("div", Custom()), false},
		{"custom old only", H("div", Custom()), Div(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanPatch(tt.old.El, tt.new.El); got != tt.want {
				t.Errorf("CanPatch() = %v, want %v", got, tt.want)
			}
		})
	}
}
