// Package errors provides structured, coded errors for the reconciler and
// its tools.
//
// # Error Categories
//
// Errors are organized into categories:
//   - invariant: the reconciler's own bookkeeping is inconsistent; raised
//     with panic and never recovered inside the engine
//   - platform: a rendering host rejected an operation; returned to the
//     caller of the patch pass
//   - protocol: wire protocol errors (invalid frames, unknown listeners)
//   - fixture: malformed JSON/YAML tree fixtures
//   - config, cli: tool configuration and command-line usage
//
// # Error Codes
//
// Each error has a unique code (e.g., "E320") that maps to a short message
// and a detailed explanation.
//
// # Usage
//
//	err := errors.Platform("E323", "SetAttribute", hostErr)
//	if errors.Is(err, errors.CategoryPlatform) { ... }
//
//	fmt.Println(errors.New("E180").
//	    WithLocationFromError("tree.yaml", yamlErr).
//	    WithSuggestion("Indent children under the children key").
//	    Format())
package errors
