package vdom

import (
	"errors"
	"testing"

	"github.com/vango-dev/reconcile/pkg/dom"
)

// listenerHost implements only the listener half of dom.Host.
type listenerHost struct {
	dom.Host
	added   []string
	removed []string
	fns     map[string]dom.EventFunc
	fail    bool
}

func (h *listenerHost) AddEventListener(_ dom.Node, trigger string, fn dom.EventFunc) (dom.Listener, error) {
	if h.fail {
		return nil, errors.New("boom")
	}
	if h.fns == nil {
		h.fns = make(map[string]dom.EventFunc)
	}
	h.added = append(h.added, trigger)
	h.fns[trigger] = fn
	return trigger, nil
}

func (h *listenerHost) RemoveEventListener(_ dom.Node, trigger string, l dom.Listener) error {
	if l != trigger {
		return errors.New("wrong listener token")
	}
	h.removed = append(h.removed, trigger)
	delete(h.fns, trigger)
	return nil
}

func TestHandlerManagerGroupsByTrigger(t *testing.T) {
	m := NewHandlerManager()
	m.Add(OnClick(nil), OnInput(nil), OnClick(nil))

	if got := m.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if got := len(m.Handlers("click")); got != 2 {
		t.Errorf("len(Handlers(click)) = %d, want 2", got)
	}
	if got := m.Triggers(); len(got) != 2 || got[0] != "click" || got[1] != "input" {
		t.Errorf("Triggers() = %v, want [click input]", got)
	}
}

func TestAttachListenersOnePerTrigger(t *testing.T) {
	var calls []string
	m := NewHandlerManager()
	m.Add(
		OnClick(func(dom.Event) { calls = append(calls, "first") }),
		OnClick(func(dom.Event) { calls = append(calls, "second") }),
	)

	host := &listenerHost{}
	if err := m.AttachListeners(host, "el", nil); err != nil {
		t.Fatalf("AttachListeners() error = %v", err)
	}
	if len(host.added) != 1 {
		t.Fatalf("added = %v, want one listener", host.added)
	}

	host.fns["click"](nil)
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("calls = %v, want [first second]", calls)
	}
}

func TestAttachListenersReuse(t *testing.T) {
	var got string
	old := NewHandlerManager()
	old.Add(OnClick(func(dom.Event) { got = "old" }), OnInput(nil))

	host := &listenerHost{}
	if err := old.AttachListeners(host, "el", nil); err != nil {
		t.Fatal(err)
	}
	host.added = nil

	next := NewHandlerManager()
	next.Add(OnClick(func(dom.Event) { got = "new" }), OnKeyDown(nil))
	if err := next.AttachListeners(host, "el", old); err != nil {
		t.Fatal(err)
	}
	if err := old.ReleaseListeners(host); err != nil {
		t.Fatal(err)
	}

	if len(host.added) != 1 || host.added[0] != "keydown" {
		t.Errorf("added = %v, want [keydown]", host.added)
	}
	if len(host.removed) != 1 || host.removed[0] != "input" {
		t.Errorf("removed = %v, want [input]", host.removed)
	}
	if !next.HasListener("click") || old.HasListener("click") {
		t.Error("click listener was not moved to the new manager")
	}

	host.fns["click"](nil)
	if got != "new" {
		t.Errorf("dispatch reached %q handler, want new", got)
	}
}

func TestAddAfterAttachUpdatesCell(t *testing.T) {
	n := 0
	m := NewHandlerManager()
	m.Add(OnClick(func(dom.Event) { n++ }))
	host := &listenerHost{}
	if err := m.AttachListeners(host, "el", nil); err != nil {
		t.Fatal(err)
	}

	m.Add(OnClick(func(dom.Event) { n += 10 }))
	m.Cell("click").Fire(nil)
	if n != 11 {
		t.Errorf("n = %d, want 11", n)
	}
}

func TestAttachListenersError(t *testing.T) {
	m := NewHandlerManager()
	m.Add(OnClick(nil))
	err := m.AttachListeners(&listenerHost{fail: true}, "el", nil)
	if err == nil {
		t.Fatal("AttachListeners() error = nil, want failure")
	}
	if m.HasListener("click") {
		t.Error("failed listener recorded as live")
	}
}

func TestReleaseListeners(t *testing.T) {
	m := NewHandlerManager()
	m.Add(OnClick(nil), OnBlur(nil))
	host := &listenerHost{}
	if err := m.AttachListeners(host, "el", nil); err != nil {
		t.Fatal(err)
	}
	if err := m.ReleaseListeners(host); err != nil {
		t.Fatal(err)
	}
	if len(host.removed) != 2 {
		t.Errorf("removed = %v, want 2 listeners", host.removed)
	}
	if m.HasListener("click") || m.HasListener("blur") {
		t.Error("listeners still live after release")
	}
	// Releasing twice is a no-op.
	if err := m.ReleaseListeners(host); err != nil || len(host.removed) != 2 {
		t.Errorf("second release removed = %v, err = %v", host.removed, err)
	}
}
