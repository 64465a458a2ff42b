// Package dom defines the rendering surface the reconciler drives.
//
// The reconciler in package patch treats a Host as a capability set:
// create nodes, insert and remove them, set attributes and text, and
// manage event listeners. Sub-packages provide hosts:
//
//   - htmldom: an in-memory document built on golang.org/x/net/html,
//     used for tests, server-side rendering and the vdiff CLI.
//   - jsdom: the browser DOM through syscall/js (js/wasm builds only).
//   - remote: a recording host that encodes every call as a protocol
//     mutation so a thin client can replay it.
package dom
