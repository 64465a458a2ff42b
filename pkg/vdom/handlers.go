package vdom

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/vango-dev/reconcile/pkg/dom"
)

// EventHandler is called by the element's live listener for Trigger.
type EventHandler struct {
	Trigger  string // "click", "input", etc.
	Callback func(dom.Event)
}

// HandlerCell is the indirection between a live listener and the handlers
// it calls. The listener reads the cell on every event; the patcher is the
// only writer and swaps the list when an element survives an update, so the
// listener itself is never re-registered.
type HandlerCell struct {
	handlers []EventHandler
}

// Handlers returns the current handler list.
func (c *HandlerCell) Handlers() []EventHandler {
	return c.handlers
}

// Fire calls every current handler in registration order.
func (c *HandlerCell) Fire(ev dom.Event) {
	for _, h := range c.handlers {
		if h.Callback != nil {
			h.Callback(ev)
		}
	}
}

// listener is an attached platform listener.
type listener struct {
	trigger string
	target  dom.Node
	token   dom.Listener
	cell    *HandlerCell
}

// group is the set of handlers for one trigger plus its listener, if the
// owning element is attached.
type group struct {
	handlers []EventHandler
	listener *listener
}

// HandlerManager manages the event handlers and live listeners of one
// element: one listener per trigger, however many handlers.
type HandlerManager struct {
	groups map[string]*group
}

// NewHandlerManager returns an empty manager.
func NewHandlerManager() *HandlerManager {
	return &HandlerManager{groups: make(map[string]*group)}
}

// Add registers handlers. Listeners are not created until AttachListeners.
func (m *HandlerManager) Add(handlers ...EventHandler) {
	if m.groups == nil {
		m.groups = make(map[string]*group)
	}
	for _, h := range handlers {
		g, ok := m.groups[h.Trigger]
		if !ok {
			g = &group{}
			m.groups[h.Trigger] = g
		}
		g.handlers = append(g.handlers, h)
		if g.listener != nil {
			g.listener.cell.handlers = g.handlers
		}
	}
}

// Triggers returns the registered triggers in sorted order.
func (m *HandlerManager) Triggers() []string {
	if m == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(m.groups))
}

// Handlers returns the handlers registered for trigger.
func (m *HandlerManager) Handlers(trigger string) []EventHandler {
	if m == nil {
		return nil
	}
	if g, ok := m.groups[trigger]; ok {
		return g.handlers
	}
	return nil
}

// Len returns the number of triggers.
func (m *HandlerManager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.groups)
}

// HasListener reports whether a live listener exists for trigger.
func (m *HandlerManager) HasListener(trigger string) bool {
	if m == nil {
		return false
	}
	g, ok := m.groups[trigger]
	return ok && g.listener != nil
}

// Cell returns the handler cell of the live listener for trigger, or nil.
func (m *HandlerManager) Cell(trigger string) *HandlerCell {
	if m == nil {
		return nil
	}
	if g, ok := m.groups[trigger]; ok && g.listener != nil {
		return g.listener.cell
	}
	return nil
}

// Clone copies the handler lists. Listeners are bound to one live element
// and are never copied.
func (m *HandlerManager) Clone() *HandlerManager {
	c := NewHandlerManager()
	if m == nil {
		return c
	}
	for trigger, g := range m.groups {
		c.groups[trigger] = &group{handlers: slices.Clone(g.handlers)}
	}
	return c
}

// AttachListeners makes sure every trigger has a live listener on target.
// Listeners still held by old for the same trigger are moved over and
// pointed at the new handler lists; only new triggers reach the host.
// Call old.ReleaseListeners afterwards to drop triggers that went away.
func (m *HandlerManager) AttachListeners(host dom.Host, target dom.Node, old *HandlerManager) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, trigger := range m.Triggers() {
		g := m.groups[trigger]
		if g.listener != nil {
			continue
		}
		if l := old.takeListener(trigger); l != nil {
			l.cell.handlers = g.handlers
			g.listener = l
			continue
		}
		cell := &HandlerCell{handlers: g.handlers}
		token, err := host.AddEventListener(target, trigger, cell.Fire)
		if err != nil {
			errs = append(errs, fmt.Errorf("add %q listener: %w", trigger, err))
			continue
		}
		g.listener = &listener{trigger: trigger, target: target, token: token, cell: cell}
	}
	return errors.Join(errs...)
}

// ReleaseListeners removes every live listener still held by m.
func (m *HandlerManager) ReleaseListeners(host dom.Host) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, trigger := range m.Triggers() {
		g := m.groups[trigger]
		if g.listener == nil {
			continue
		}
		l := g.listener
		g.listener = nil
		if err := host.RemoveEventListener(l.target, l.trigger, l.token); err != nil {
			errs = append(errs, fmt.Errorf("remove %q listener: %w", trigger, err))
		}
	}
	return errors.Join(errs...)
}

// takeListener detaches and returns the listener for trigger.
func (m *HandlerManager) takeListener(trigger string) *listener {
	if m == nil {
		return nil
	}
	g, ok := m.groups[trigger]
	if !ok || g.listener == nil {
		return nil
	}
	l := g.listener
	g.listener = nil
	return l
}
