package vdom

import "github.com/vango-dev/reconcile/pkg/dom"

// On creates an EventHandler for an arbitrary trigger.
func On(trigger string, fn func(dom.Event)) EventHandler {
	return EventHandler{Trigger: trigger, Callback: fn}
}

// Mouse events

// OnClick handles click events.
func OnClick(fn func(dom.Event)) EventHandler { return On("click", fn) }

// OnDblClick handles double-click events.
func OnDblClick(fn func(dom.Event)) EventHandler { return On("dblclick", fn) }

// OnMouseDown handles mousedown events.
func OnMouseDown(fn func(dom.Event)) EventHandler { return On("mousedown", fn) }

// OnMouseUp handles mouseup events.
func OnMouseUp(fn func(dom.Event)) EventHandler { return On("mouseup", fn) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(fn func(dom.Event)) EventHandler { return On("mouseenter", fn) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(fn func(dom.Event)) EventHandler { return On("mouseleave", fn) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(fn func(dom.Event)) EventHandler { return On("keydown", fn) }

// OnKeyUp handles keyup events.
func OnKeyUp(fn func(dom.Event)) EventHandler { return On("keyup", fn) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(fn func(dom.Event)) EventHandler { return On("input", fn) }

// OnChange handles change events (fired when value is committed).
func OnChange(fn func(dom.Event)) EventHandler { return On("change", fn) }

// OnSubmit handles form submit events.
func OnSubmit(fn func(dom.Event)) EventHandler { return On("submit", fn) }

// OnFocus handles focus events.
func OnFocus(fn func(dom.Event)) EventHandler { return On("focus", fn) }

// OnBlur handles blur events.
func OnBlur(fn func(dom.Event)) EventHandler { return On("blur", fn) }

// Scroll events

// OnScroll handles scroll events.
func OnScroll(fn func(dom.Event)) EventHandler { return On("scroll", fn) }
