// Package vtest provides testing helpers for code that builds and patches
// virtual trees.
//
// # Harness
//
// A Harness owns an in-memory htmldom document, a Recorder in front of it
// and a Patcher. Each Render reconciles the document against the previous
// tree and leaves exactly that pass's host calls in the recorder:
//
//	h := vtest.New(t)
//	h.MustRender(vdom.Ul(vdom.Li(vdom.Key("a"), "a")))
//	h.MustRender(vdom.Ul(vdom.Li(vdom.Key("b"), "b"), vdom.Li(vdom.Key("a"), "a")))
//	fmt.Println(h.Rec.Strings())
//
// # Recorder
//
// Recorder wraps any dom.Host and logs each call as a Call. Setting Fail
// injects host errors, which is how the platform error paths are tested.
//
// # Render Assertions
//
//	vtest.ExpectContains(t, Card("hi"), "hi")
//	vtest.ExpectAttribute(t, Button(Class("btn")), "class", "btn")
package vtest
