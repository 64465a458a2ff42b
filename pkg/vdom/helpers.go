package vdom

import "fmt"

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return NewText(fmt.Sprintf(format, args...))
}

// If returns the node if condition is true and an Empty node otherwise, so
// the child keeps its slot in the list either way.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return Empty()
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return Empty()
}

// Range maps a slice to nodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Repeat calls fn n times.
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	result := make([]*VNode, 0, n)
	for i := 0; i < n; i++ {
		if node := fn(i); node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Nothing returns an Empty node.
func Nothing() *VNode {
	return Empty()
}
